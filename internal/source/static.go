package source

import (
	"context"

	"github.com/homelabdash/homelabdash/internal/catalog"
)

// StaticSourceName identifies the bundled source.
const StaticSourceName = "static"

// DefaultRecords is the collection bundled with the binary.
func DefaultRecords() []catalog.Record {
	return []catalog.Record{
		{
			ID:     "1",
			Name:   "Router",
			Type:   "Network",
			URL:    "http://192.168.1.1",
			Status: catalog.StatusOnline,
			Notes:  "Main lab router",
		},
		{
			ID:     "2",
			Name:   "NAS",
			Type:   "Storage",
			URL:    "http://192.168.1.20:5000",
			Status: catalog.StatusOnline,
			Notes:  "Media and backups",
		},
		{
			ID:     "3",
			Name:   "Proxmox",
			Type:   "Hypervisor",
			URL:    "https://192.168.1.30:8006",
			Status: catalog.StatusOnline,
		},
		{
			ID:     "4",
			Name:   "Home Assistant",
			Type:   "Automation",
			URL:    "http://192.168.1.40:8123",
			Status: catalog.StatusMaintenance,
			Notes:  "Migrating to new hardware",
		},
		{
			ID:     "5",
			Name:   "Pi-hole",
			Type:   "DNS",
			Status: catalog.StatusOffline,
			Notes:  "Ad blocking DNS, currently down",
		},
	}
}

// Static serves a fixed collection. It never fails.
type Static struct {
	records []catalog.Record
}

// NewStatic creates a static source. A nil slice selects DefaultRecords.
func NewStatic(records []catalog.Record) *Static {
	if records == nil {
		records = DefaultRecords()
	}
	return &Static{records: records}
}

// Name implements Source.
func (s *Static) Name() string {
	return StaticSourceName
}

// Load implements Source.
func (s *Static) Load(_ context.Context) ([]catalog.Record, error) {
	out := make([]catalog.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

var _ Source = (*Static)(nil)
