package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/homelabdash/homelabdash/internal/catalog"
	"github.com/homelabdash/homelabdash/internal/source/resilience"
)

// FetchedSourceName identifies the HTTP source.
const FetchedSourceName = "services-json"

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchedConfig holds configuration for the HTTP source.
type FetchedConfig struct {
	// BaseURL is prefixed to ResourcePath, e.g. "http://localhost:8080".
	BaseURL string

	// HTTPClient executes the request. If nil, a resilient client
	// is created and registered in Registry.
	HTTPClient HTTPDoer

	// Registry receives the default client's health. Optional.
	Registry *resilience.Registry
}

// Fetched loads the collection with a single GET of the services document.
type Fetched struct {
	url        string
	httpClient HTTPDoer
}

// NewFetched creates an HTTP source.
func NewFetched(cfg FetchedConfig) *Fetched {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(FetchedSourceName)
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Fetched{
		url:        strings.TrimSuffix(cfg.BaseURL, "/") + ResourcePath,
		httpClient: httpClient,
	}
}

// Name implements Source.
func (f *Fetched) Name() string {
	return FetchedSourceName
}

// URL returns the resource address the source requests.
func (f *Fetched) URL() string {
	return f.url
}

// Load implements Source. A document that is valid JSON but not an array
// yields an empty collection rather than an error.
func (f *Fetched) Load(ctx context.Context) ([]catalog.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return DecodeRecords(body)
}

// DecodeRecords parses a services document. Anything other than a JSON array
// at the top level decodes to an empty collection; invalid JSON is an error.
// Array elements are not validated, see catalog.Record.UnmarshalJSON.
func DecodeRecords(data []byte) ([]catalog.Record, error) {
	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if !bytes.HasPrefix(bytes.TrimSpace(doc), []byte("[")) {
		return []catalog.Record{}, nil
	}

	var records []catalog.Record
	if err := json.Unmarshal(doc, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return records, nil
}

var _ Source = (*Fetched)(nil)
