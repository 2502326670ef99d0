package feeds

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// fakeFeedClient implements feedClient against an in-memory collection.
type fakeFeedClient struct {
	feeds     []api.FeedSource
	listErr   error
	deleteErr error

	deleteCalls []string
	syncCalls   []string
	updateCalls []string
}

func (f *fakeFeedClient) ListFeeds(ctx context.Context) ([]api.FeedSource, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]api.FeedSource, len(f.feeds))
	copy(out, f.feeds)
	return out, nil
}

func (f *fakeFeedClient) CreateFeed(ctx context.Context, feed api.FeedCreate) (api.FeedSource, error) {
	created := api.FeedSource{ID: "new", Name: feed.Name, Slug: feed.Slug, FeedType: feed.FeedType}
	f.feeds = append(f.feeds, created)
	return created, nil
}

func (f *fakeFeedClient) UpdateFeed(ctx context.Context, id string, update api.FeedUpdate) (api.FeedSource, error) {
	f.updateCalls = append(f.updateCalls, id)
	for i := range f.feeds {
		if f.feeds[i].ID == id {
			if update.IsEnabled != nil {
				f.feeds[i].IsEnabled = *update.IsEnabled
			}
			return f.feeds[i], nil
		}
	}
	return api.FeedSource{}, errors.New("not found")
}

func (f *fakeFeedClient) DeleteFeed(ctx context.Context, id string) error {
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.feeds[:0]
	for _, feed := range f.feeds {
		if feed.ID != id {
			kept = append(kept, feed)
		}
	}
	f.feeds = kept
	return nil
}

func (f *fakeFeedClient) TriggerFeedSync(ctx context.Context, id string) error {
	f.syncCalls = append(f.syncCalls, id)
	return nil
}

func (f *fakeFeedClient) FeedLogs(ctx context.Context, id string) (api.FeedLogs, error) {
	return api.FeedLogs{FeedID: id, FeedName: "stub"}, nil
}

func newTestManager(t *testing.T) (*Manager, *fakeFeedClient) {
	t.Helper()
	client := &fakeFeedClient{feeds: []api.FeedSource{
		{ID: "f1", Name: "OTX", Slug: "otx", FeedType: "api", IsEnabled: true},
		{ID: "f2", Name: "Internal", Slug: "internal", FeedType: "csv", IsEnabled: false},
	}}
	mgr := NewManager(client, zaptest.NewLogger(t))
	if err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	return mgr, client
}

// =============================================================================
// Delete Confirmation Tests
// =============================================================================

// TestConfirmDelete_NotArmed verifies a confirm without a prior arm is
// rejected and never reaches the API.
func TestConfirmDelete_NotArmed(t *testing.T) {
	mgr, client := newTestManager(t)

	err := mgr.ConfirmDelete(context.Background())
	if !errors.Is(err, ErrNotArmed) {
		t.Fatalf("expected ErrNotArmed, got %v", err)
	}
	if len(client.deleteCalls) != 0 {
		t.Errorf("unarmed confirm must not call the API, got %v", client.deleteCalls)
	}
}

// TestConfirmDelete_ArmedOnce verifies arm + confirm deletes exactly the
// armed feed and disarms afterward.
func TestConfirmDelete_ArmedOnce(t *testing.T) {
	mgr, client := newTestManager(t)

	mgr.Delete.Arm("f1")
	if !mgr.Delete.Armed("f1") {
		t.Fatal("f1 should be armed")
	}

	if err := mgr.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("ConfirmDelete should succeed: %v", err)
	}

	if len(client.deleteCalls) != 1 || client.deleteCalls[0] != "f1" {
		t.Errorf("expected exactly one delete of f1, got %v", client.deleteCalls)
	}
	if mgr.Delete.Armed("f1") {
		t.Error("confirm should disarm the machine")
	}

	// The collection reloaded without the deleted feed.
	if _, err := mgr.Get("f1"); !errors.Is(err, ErrFeedNotFound) {
		t.Error("deleted feed should be gone after reload")
	}

	// A second stray confirm is a harmless no-op.
	if err := mgr.ConfirmDelete(context.Background()); !errors.Is(err, ErrNotArmed) {
		t.Errorf("second confirm should be ErrNotArmed, got %v", err)
	}
	if len(client.deleteCalls) != 1 {
		t.Errorf("stray confirm must not delete again, got %v", client.deleteCalls)
	}
}

// TestConfirmDelete_ReArmReplacesTarget verifies arming a second feed
// replaces the pending target instead of stacking.
func TestConfirmDelete_ReArmReplacesTarget(t *testing.T) {
	mgr, client := newTestManager(t)

	mgr.Delete.Arm("f1")
	mgr.Delete.Arm("f2")

	if mgr.Delete.Armed("f1") {
		t.Error("f1 should no longer be armed after re-arm")
	}
	if err := mgr.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("ConfirmDelete should succeed: %v", err)
	}
	if len(client.deleteCalls) != 1 || client.deleteCalls[0] != "f2" {
		t.Errorf("only the replacement target should be deleted, got %v", client.deleteCalls)
	}
}

// TestDeleteCancel verifies cancel disarms without any API traffic.
func TestDeleteCancel(t *testing.T) {
	mgr, client := newTestManager(t)

	mgr.Delete.Arm("f1")
	mgr.Delete.Cancel()

	if mgr.Delete.Armed("f1") {
		t.Error("cancel should disarm")
	}
	if err := mgr.ConfirmDelete(context.Background()); !errors.Is(err, ErrNotArmed) {
		t.Errorf("confirm after cancel should be ErrNotArmed, got %v", err)
	}
	if len(client.deleteCalls) != 0 {
		t.Errorf("cancel path must not call the API, got %v", client.deleteCalls)
	}
}

// TestConfirmDelete_APIFailureDisarms verifies a failed delete surfaces the
// error and still returns the machine to idle.
func TestConfirmDelete_APIFailureDisarms(t *testing.T) {
	mgr, client := newTestManager(t)
	client.deleteErr = errors.New("backend down")

	mgr.Delete.Arm("f1")
	if err := mgr.ConfirmDelete(context.Background()); err == nil {
		t.Fatal("ConfirmDelete should surface the API error")
	}

	if mgr.Delete.Armed("f1") {
		t.Error("machine should return to idle after a failed delete")
	}
}

// =============================================================================
// Mutation Tests
// =============================================================================

// TestCreate_ValidationRejectsBadForm verifies client-side validation stops
// invalid forms before any API call.
func TestCreate_ValidationRejectsBadForm(t *testing.T) {
	mgr, client := newTestManager(t)
	before := len(client.feeds)

	cases := []api.FeedCreate{
		{Slug: "x", FeedType: "api"},                              // missing name
		{Name: "X", Slug: "x", FeedType: "rss"},                   // bad type
		{Name: "X", Slug: "x", FeedType: "api", URL: "not a url"}, // bad URL
		{Name: "X", Slug: "x", FeedType: "api", SyncFrequency: 5}, // below minimum
		{Name: "X", Slug: "Hello World!", FeedType: "api"},        // slug not URL-safe
		{Name: "X", Slug: "UPPER-Case", FeedType: "api"},          // slug not lowercase
		{Name: "X", Slug: "double--dash", FeedType: "api"},        // malformed separator
	}

	for i, form := range cases {
		if err := mgr.Create(context.Background(), form); err == nil {
			t.Errorf("case %d: invalid form should be rejected", i)
		}
	}
	if len(client.feeds) != before {
		t.Error("rejected forms must not reach the API")
	}
}

// TestCreate_ValidForm verifies a valid form creates and reloads.
func TestCreate_ValidForm(t *testing.T) {
	mgr, _ := newTestManager(t)

	form := api.FeedCreate{
		Name: "PhishTank", Slug: "phishtank", FeedType: "api",
		URL: "https://phishtank.org/feed", SyncFrequency: 3600,
	}
	if err := mgr.Create(context.Background(), form); err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}

	if _, err := mgr.Get("new"); err != nil {
		t.Error("created feed should appear after reload")
	}
}

// TestToggle verifies the enabled flag flips through the API and reloads.
func TestToggle(t *testing.T) {
	mgr, client := newTestManager(t)

	if err := mgr.Toggle(context.Background(), "f2"); err != nil {
		t.Fatalf("Toggle should succeed: %v", err)
	}

	feed, err := mgr.Get("f2")
	if err != nil {
		t.Fatalf("Get after toggle: %v", err)
	}
	if !feed.IsEnabled {
		t.Error("f2 should be enabled after toggle")
	}
	if len(client.updateCalls) != 1 {
		t.Errorf("expected 1 update call, got %d", len(client.updateCalls))
	}
}

// TestSync_DisabledFeed verifies syncing a disabled feed is refused without
// an API call.
func TestSync_DisabledFeed(t *testing.T) {
	mgr, client := newTestManager(t)

	if err := mgr.Sync(context.Background(), "f2"); !errors.Is(err, ErrSyncDisabled) {
		t.Fatalf("expected ErrSyncDisabled, got %v", err)
	}
	if len(client.syncCalls) != 0 {
		t.Errorf("disabled feed sync must not reach the API, got %v", client.syncCalls)
	}

	if err := mgr.Sync(context.Background(), "f1"); err != nil {
		t.Fatalf("enabled feed sync should succeed: %v", err)
	}
	if len(client.syncCalls) != 1 || client.syncCalls[0] != "f1" {
		t.Errorf("expected sync of f1, got %v", client.syncCalls)
	}
}

// TestGet_Unknown verifies lookups outside the collection fail cleanly.
func TestGet_Unknown(t *testing.T) {
	mgr, _ := newTestManager(t)

	if _, err := mgr.Get("nope"); !errors.Is(err, ErrFeedNotFound) {
		t.Errorf("expected ErrFeedNotFound, got %v", err)
	}
}
