// Package catalog holds the service record model and the pure view reducer
// that derives filtered results and aggregate counts from it.
package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Status is the coarse health label attached to a service record.
// Values outside the known set are kept verbatim.
type Status string

const (
	StatusOnline      Status = "online"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

// Known reports whether s is one of the three recognised statuses.
func (s Status) Known() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusMaintenance:
		return true
	default:
		return false
	}
}

// ID identifies a record within a collection. The wire format may be a JSON
// number or a JSON string; both are held as their textual form.
type ID string

// UnmarshalJSON implements json.Unmarshaler for ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID(scalarText(data))
	return nil
}

// Record is one dashboard entry representing a device or application.
type Record struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	URL    string `json:"url,omitempty"`
	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// UnmarshalJSON decodes a record without validating its shape. Scalar
// fields of any JSON type become text; an element that is not an object
// decodes to the zero Record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*r = Record{}
		return nil
	}

	*r = Record{
		ID:     ID(scalarText(fields["id"])),
		Name:   scalarText(fields["name"]),
		Type:   scalarText(fields["type"]),
		URL:    scalarText(fields["url"]),
		Status: Status(scalarText(fields["status"])),
		Notes:  scalarText(fields["notes"]),
	}
	return nil
}

// scalarText renders a JSON scalar as display text. Strings are unquoted,
// numbers and booleans keep their literal form. Null, objects, arrays and
// missing values are empty.
func scalarText(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return ""
	}

	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// haystack is the lower-cased text the search box matches against.
func (r Record) haystack() string {
	return strings.ToLower(r.Name + " " + r.Type + " " + r.Notes)
}

// Filter is the user-selected status category.
type Filter string

const (
	FilterAll         Filter = "all"
	FilterOnline      Filter = "online"
	FilterOffline     Filter = "offline"
	FilterMaintenance Filter = "maintenance"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterOnline, FilterOffline, FilterMaintenance}

// ParseFilter maps user input onto a Filter. Empty or unknown values map to
// FilterAll.
func ParseFilter(s string) Filter {
	for _, f := range Filters {
		if string(f) == s {
			return f
		}
	}
	return FilterAll
}

// Label returns the button caption for the filter.
func (f Filter) Label() string {
	switch f {
	case FilterOnline:
		return "Online"
	case FilterOffline:
		return "Offline"
	case FilterMaintenance:
		return "Maintenance"
	default:
		return "All"
	}
}

// Counts are aggregates over the whole loaded collection.
type Counts struct {
	Total       int `json:"total"`
	Online      int `json:"online"`
	Offline     int `json:"offline"`
	Maintenance int `json:"maintenance"`
}

// View is the reducer output.
type View struct {
	Records []Record
	Counts  Counts
}
