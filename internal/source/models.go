// Package source loads the service collection for the dashboard and tracks
// the load as a small state machine: Loading, then Loaded or Failed.
package source

import (
	"context"
	"errors"

	"github.com/homelabdash/homelabdash/internal/catalog"
)

// FailureMessage is the user-facing text shown when loading fails. The
// underlying error is only logged.
const FailureMessage = "Could not load services.json. Check the file path and JSON format."

// ResourcePath is where the fetched variant finds the services document.
const ResourcePath = "/config/services.json"

// Source errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrDecode           = errors.New("decode services document")
)

// Source produces the record collection once.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Load returns the records. Implementations return a non-nil error only
	// when the collection could not be obtained at all.
	Load(ctx context.Context) ([]catalog.Record, error)
}

// Phase is the coarse position in the load state machine.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// LoadState is the current outcome of loading the collection.
type LoadState struct {
	Phase   Phase
	Message string
	records []catalog.Record
}

// Loading is the initial state.
func Loading() LoadState {
	return LoadState{Phase: PhaseLoading}
}

// Loaded is the terminal success state.
func Loaded(records []catalog.Record) LoadState {
	if records == nil {
		records = []catalog.Record{}
	}
	return LoadState{Phase: PhaseLoaded, records: records}
}

// Failed is the terminal failure state.
func Failed(message string) LoadState {
	return LoadState{Phase: PhaseFailed, Message: message}
}

// Records returns the loaded collection. It is empty unless the state is
// Loaded. Callers must not modify the returned slice.
func (s LoadState) Records() []catalog.Record {
	if s.Phase != PhaseLoaded {
		return nil
	}
	return s.records
}

// Terminal reports whether the state is Loaded or Failed.
func (s LoadState) Terminal() bool {
	return s.Phase == PhaseLoaded || s.Phase == PhaseFailed
}
