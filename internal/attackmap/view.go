package attackmap

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

const detailCacheSize = 128

// heatmapClient is the slice of the API client the view needs.
type heatmapClient interface {
	AttackHeatmap(ctx context.Context, minScore int) ([]api.HeatmapEntry, error)
	AttackTechnique(ctx context.Context, id string) (api.TechniqueDetail, error)
}

// View holds the ATT&CK map page state: the current matrix, the minimum
// score filter, and the selected technique. The min-score filter is a
// request parameter — changing it re-fetches, it never re-filters data
// already in hand.
type View struct {
	mu       sync.RWMutex
	matrix   Matrix
	minScore int
	loaded   bool
	errMsg   string

	selected *Cell
	detail   *api.TechniqueDetail

	client  heatmapClient
	details *lru.Cache[string, api.TechniqueDetail]
	logger  *zap.Logger
}

// NewView creates an ATT&CK map view.
func NewView(client heatmapClient, logger *zap.Logger) *View {
	details, _ := lru.New[string, api.TechniqueDetail](detailCacheSize)
	return &View{
		client:  client,
		details: details,
		logger:  logger,
	}
}

// Load fetches the heatmap for the current min-score filter. On failure
// the previous matrix stays visible and the error message is recorded.
func (v *View) Load(ctx context.Context) error {
	v.mu.RLock()
	minScore := v.minScore
	v.mu.RUnlock()

	entries, err := v.client.AttackHeatmap(ctx, minScore)
	if err != nil {
		v.mu.Lock()
		v.errMsg = err.Error()
		v.mu.Unlock()
		return err
	}

	cells := make([]Entry, len(entries))
	for i, e := range entries {
		cells[i] = Entry{
			TechniqueID:   e.TechniqueID,
			TechniqueName: e.TechniqueName,
			Tactic:        e.Tactic,
			IOCCount:      e.IOCCount,
			Intensity:     e.Intensity,
		}
	}

	v.mu.Lock()
	v.matrix = Group(cells)
	v.loaded = true
	v.errMsg = ""
	v.mu.Unlock()
	return nil
}

// SetMinScore updates the filter and re-fetches.
func (v *View) SetMinScore(ctx context.Context, minScore int) error {
	v.mu.Lock()
	v.minScore = minScore
	v.mu.Unlock()
	return v.Load(ctx)
}

// MinScore returns the current filter value.
func (v *View) MinScore() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.minScore
}

// Matrix returns the current grouped heatmap.
func (v *View) Matrix() Matrix {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.matrix
}

// Err returns the last load error message, "" when the last load succeeded.
func (v *View) Err() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.errMsg
}

// Select marks a technique as selected. Techniques with associated IOCs
// trigger the secondary detail fetch (memoized); empty cells show summary
// fields only, avoiding a wasted call.
func (v *View) Select(ctx context.Context, cell Cell) {
	v.mu.Lock()
	c := cell
	v.selected = &c
	v.detail = nil
	v.mu.Unlock()

	if cell.IOCCount == 0 {
		return
	}

	if cached, ok := v.details.Get(cell.TechniqueID); ok {
		v.setDetail(cell.TechniqueID, cached)
		return
	}

	detail, err := v.client.AttackTechnique(ctx, cell.TechniqueID)
	if err != nil {
		// Detail is supplementary; the summary card still renders.
		v.logger.Debug("technique detail fetch failed",
			zap.String("technique", cell.TechniqueID), zap.Error(err))
		return
	}

	v.details.Add(cell.TechniqueID, detail)
	v.setDetail(cell.TechniqueID, detail)
}

// setDetail attaches a detail only if the selection has not moved on.
func (v *View) setDetail(techniqueID string, detail api.TechniqueDetail) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected != nil && v.selected.TechniqueID == techniqueID {
		v.detail = &detail
	}
}

// Selection returns the selected cell and its detail, either may be nil.
func (v *View) Selection() (*Cell, *api.TechniqueDetail) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selected, v.detail
}

// ClearSelection deselects the current technique.
func (v *View) ClearSelection() {
	v.mu.Lock()
	v.selected = nil
	v.detail = nil
	v.mu.Unlock()
}
