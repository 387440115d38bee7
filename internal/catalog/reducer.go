package catalog

import "strings"

// MatchesStatus reports whether r passes the status filter. Comparison is
// exact and case-sensitive.
func MatchesStatus(r Record, filter Filter) bool {
	return filter == FilterAll || string(r.Status) == string(filter)
}

// MatchesSearch reports whether the lower-cased search text is a substring
// of the record's name, type and notes. An empty search matches everything.
func MatchesSearch(r Record, search string) bool {
	return strings.Contains(r.haystack(), strings.ToLower(search))
}

// FilterRecords returns the records passing both predicates, in input order.
// The input slice is not modified.
func FilterRecords(records []Record, filter Filter, search string) []Record {
	needle := strings.ToLower(search)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !MatchesStatus(r, filter) {
			continue
		}
		if !strings.Contains(r.haystack(), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Count computes the aggregate counters over the full collection.
func Count(records []Record) Counts {
	c := Counts{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusOnline:
			c.Online++
		case StatusOffline:
			c.Offline++
		case StatusMaintenance:
			c.Maintenance++
		}
	}
	return c
}

// Reduce derives the filtered records and the counts. Counts always cover
// the unfiltered collection.
func Reduce(records []Record, filter Filter, search string) View {
	return View{
		Records: FilterRecords(records, filter, search),
		Counts:  Count(records),
	}
}
