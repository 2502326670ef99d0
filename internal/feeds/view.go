// Package feeds provides the feed management view: client-side filtering
// and sorting over the feed collection, derived stats, the guarded delete
// flow, and the mutation-then-reload lifecycle.
package feeds

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// SortKey selects the list ordering.
type SortKey string

const (
	SortByName     SortKey = "name"      // locale-aware ascending
	SortByIOCCount SortKey = "ioc_count" // descending
	SortByLastSync SortKey = "last_sync" // descending, never-synced last
)

// Filter holds the three filter dimensions. Zero values mean "no filter";
// dimensions compose with AND.
type Filter struct {
	Query  string // case-insensitive substring over name, slug, description
	Type   string // exact feed_type match
	Status string // exact last_sync_status match
}

func (f Filter) matches(feed api.FeedSource) bool {
	if f.Type != "" && feed.FeedType != f.Type {
		return false
	}
	if f.Status != "" && feed.LastSyncStatus != f.Status {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(feed.Name), q) &&
			!strings.Contains(strings.ToLower(feed.Slug), q) &&
			!strings.Contains(strings.ToLower(feed.Description), q) {
			return false
		}
	}
	return true
}

// Apply filters and sorts the collection for rendering. The input slice is
// not modified.
func Apply(feeds []api.FeedSource, filter Filter, sortKey SortKey) []api.FeedSource {
	out := make([]api.FeedSource, 0, len(feeds))
	for _, feed := range feeds {
		if filter.matches(feed) {
			out = append(out, feed)
		}
	}

	switch sortKey {
	case SortByIOCCount:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].IOCCount > out[j].IOCCount
		})
	case SortByLastSync:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].LastSyncAt, out[j].LastSyncAt
			// A feed that never synced sorts after every synced feed,
			// regardless of direction.
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.After(*b)
			}
		})
	default:
		// feed names come from operators, not locale negotiation; English
		// collation matches the browser-default behavior the console
		// replaces. A Collator mutates internal buffers on every comparison
		// and Apply runs concurrently from the request pool, so each sort
		// gets its own.
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	}

	return out
}

// Stats are the aggregate counters shown above the list.
type Stats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Healthy     int `json:"healthy"`
	Failed      int `json:"failed"`
	MaxIOCCount int `json:"max_ioc_count"`
}

// Summarize derives the aggregate counters from the full (unfiltered)
// collection.
func Summarize(feeds []api.FeedSource) Stats {
	var s Stats
	s.Total = len(feeds)
	for _, feed := range feeds {
		if feed.IsEnabled {
			s.Active++
		}
		switch feed.LastSyncStatus {
		case "success":
			s.Healthy++
		case "failed":
			s.Failed++
		}
		if feed.IOCCount > s.MaxIOCCount {
			s.MaxIOCCount = feed.IOCCount
		}
	}
	return s
}

// BarWidth scales an IOC count against the collection maximum into a
// 0-100 percentage for the volume bars.
func BarWidth(count, maxCount int) int {
	if maxCount <= 0 || count <= 0 {
		return 0
	}
	return count * 100 / maxCount
}
