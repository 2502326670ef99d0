// Package search holds the IOC search page state: the active filters,
// the current result page, and bulk lookup for threat hunting.
package search

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// searchClient is the slice of the API client the view uses.
type searchClient interface {
	SearchIOCs(ctx context.Context, filters api.SearchFilters) (api.Page[api.IOC], error)
	BulkLookup(ctx context.Context, values []string) ([]api.IOC, error)
}

// DefaultFilters returns the initial search state.
func DefaultFilters() api.SearchFilters {
	return api.SearchFilters{
		Page:      1,
		PageSize:  50,
		SortBy:    "last_seen",
		SortOrder: "desc",
	}
}

// View is the search page state. The last successful result stays visible
// while a new search is in flight or after one fails.
type View struct {
	mu      sync.RWMutex
	data    *api.Page[api.IOC]
	filters api.SearchFilters
	loading bool
	errMsg  string

	client searchClient
	logger *zap.Logger
}

// NewView creates a search view with default filters.
func NewView(client searchClient, logger *zap.Logger) *View {
	return &View{
		filters: DefaultFilters(),
		client:  client,
		logger:  logger,
	}
}

// Search runs a search with the given filters, storing the result or an
// error string for display.
func (v *View) Search(ctx context.Context, filters api.SearchFilters) error {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = DefaultFilters().PageSize
	}

	v.mu.Lock()
	v.loading = true
	v.errMsg = ""
	v.filters = filters
	v.mu.Unlock()

	result, err := v.client.SearchIOCs(ctx, filters)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.errMsg = err.Error()
		return err
	}
	v.data = &result
	return nil
}

// LoadPage re-runs the current search on a different page.
func (v *View) LoadPage(ctx context.Context, page int) error {
	v.mu.RLock()
	filters := v.filters
	v.mu.RUnlock()

	filters.Page = page
	return v.Search(ctx, filters)
}

// Result returns the last successful page, nil before the first search.
func (v *View) Result() *api.Page[api.IOC] {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.data
}

// Filters returns the active filters.
func (v *View) Filters() api.SearchFilters {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filters
}

// Loading reports whether a search is in flight.
func (v *View) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// Err returns the last search error message, "" on success.
func (v *View) Err() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.errMsg
}

// ParseBulkInput splits pasted hunting input into lookup values: one per
// line, trimmed, blank lines dropped.
func ParseBulkInput(input string) []string {
	var values []string
	for _, line := range strings.Split(input, "\n") {
		if v := strings.TrimSpace(line); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// BulkLookup resolves pasted indicators against the platform.
func (v *View) BulkLookup(ctx context.Context, input string) ([]api.IOC, error) {
	values := ParseBulkInput(input)
	if len(values) == 0 {
		return nil, nil
	}
	return v.client.BulkLookup(ctx, values)
}
