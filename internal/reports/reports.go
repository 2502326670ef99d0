// Package reports provides the reports page view: listing, generation,
// the daily brief, and plain-text download. Report content is backend-
// shaped JSON and is only shape-checked before rendering.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// reportClient is the slice of the API client the view uses.
type reportClient interface {
	ListReports(ctx context.Context) (api.Page[api.Report], error)
	GenerateReport(ctx context.Context, params map[string]any) (api.Report, error)
	DailyBrief(ctx context.Context) (api.Report, error)
	AIReport(ctx context.Context) (api.Report, error)
	DownloadReport(ctx context.Context, id string) ([]byte, error)
}

// View is the reports page state.
type View struct {
	mu      sync.RWMutex
	reports []api.Report
	errMsg  string

	client reportClient
	logger *zap.Logger
}

// NewView creates a reports view.
func NewView(client reportClient, logger *zap.Logger) *View {
	return &View{client: client, logger: logger}
}

// Load fetches the report list.
func (v *View) Load(ctx context.Context) error {
	page, err := v.client.ListReports(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.errMsg = err.Error()
		return err
	}
	v.reports = page.Items
	v.errMsg = ""
	return nil
}

// Reports returns the loaded list.
func (v *View) Reports() []api.Report {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]api.Report, len(v.reports))
	copy(out, v.reports)
	return out
}

// Err returns the last list error, "" on success.
func (v *View) Err() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.errMsg
}

// Generate creates a custom report and reloads the list.
func (v *View) Generate(ctx context.Context, params map[string]any) (api.Report, error) {
	report, err := v.client.GenerateReport(ctx, params)
	if err != nil {
		return api.Report{}, fmt.Errorf("generating report: %w", err)
	}
	if err := v.Load(ctx); err != nil {
		// The report exists; a failed list refresh only delays its appearance.
		v.logger.Debug("report list refresh failed", zap.Error(err))
	}
	return report, nil
}

// DailyBrief fetches (generating if needed) today's brief.
func (v *View) DailyBrief(ctx context.Context) (api.Report, error) {
	return v.client.DailyBrief(ctx)
}

// AIReport generates an AI insight report and reloads the list.
func (v *View) AIReport(ctx context.Context) (api.Report, error) {
	report, err := v.client.AIReport(ctx)
	if err != nil {
		return api.Report{}, fmt.Errorf("generating AI report: %w", err)
	}
	if err := v.Load(ctx); err != nil {
		v.logger.Debug("report list refresh failed", zap.Error(err))
	}
	return report, nil
}

// Download returns the rendered report text.
func (v *View) Download(ctx context.Context, id string) ([]byte, error) {
	return v.client.DownloadReport(ctx, id)
}

// ContentSections decodes a report's opaque content as a JSON object.
// Anything else (array, scalar, malformed) renders as empty rather than
// crashing the page.
func ContentSections(report api.Report) map[string]json.RawMessage {
	if len(report.Content) == 0 {
		return nil
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(report.Content, &sections); err != nil {
		return nil
	}
	return sections
}
