package feeds

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// Common errors.
var (
	ErrFeedNotFound = errors.New("feed not found")
	ErrNotArmed     = errors.New("delete not armed")
	ErrSyncDisabled = errors.New("feed is disabled")
)

// slugPattern accepts lowercase alphanumerics with single hyphen separators,
// the form the API uses in feed URLs.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
	return v
}

// feedClient is the slice of the API client the manager uses.
type feedClient interface {
	ListFeeds(ctx context.Context) ([]api.FeedSource, error)
	CreateFeed(ctx context.Context, feed api.FeedCreate) (api.FeedSource, error)
	UpdateFeed(ctx context.Context, id string, update api.FeedUpdate) (api.FeedSource, error)
	DeleteFeed(ctx context.Context, id string) error
	TriggerFeedSync(ctx context.Context, id string) error
	FeedLogs(ctx context.Context, id string) (api.FeedLogs, error)
}

// Manager owns the feed collection state. Mutations call the API and then
// reload the full list; there is no optimistic local patch, so the list is
// transiently stale until the reload lands.
type Manager struct {
	mu    sync.RWMutex
	feeds []api.FeedSource

	Delete DeleteConfirm

	client feedClient
	logger *zap.Logger
}

// NewManager creates a feed manager.
func NewManager(client feedClient, logger *zap.Logger) *Manager {
	return &Manager{client: client, logger: logger}
}

// Load fetches the full feed collection.
func (m *Manager) Load(ctx context.Context) error {
	feeds, err := m.client.ListFeeds(ctx)
	if err != nil {
		return fmt.Errorf("loading feeds: %w", err)
	}

	m.mu.Lock()
	m.feeds = feeds
	m.mu.Unlock()
	return nil
}

// Feeds returns the current collection.
func (m *Manager) Feeds() []api.FeedSource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]api.FeedSource, len(m.feeds))
	copy(out, m.feeds)
	return out
}

// Get finds a feed by ID in the loaded collection.
func (m *Manager) Get(id string) (api.FeedSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, feed := range m.feeds {
		if feed.ID == id {
			return feed, nil
		}
	}
	return api.FeedSource{}, ErrFeedNotFound
}

// Create validates the form client-side, creates the feed, and reloads.
func (m *Manager) Create(ctx context.Context, form api.FeedCreate) error {
	if err := validate.Struct(form); err != nil {
		return fmt.Errorf("feed form invalid: %w", err)
	}
	if _, err := m.client.CreateFeed(ctx, form); err != nil {
		return fmt.Errorf("creating feed: %w", err)
	}
	return m.Load(ctx)
}

// Toggle flips a feed's enabled flag and reloads.
func (m *Manager) Toggle(ctx context.Context, id string) error {
	feed, err := m.Get(id)
	if err != nil {
		return err
	}

	enabled := !feed.IsEnabled
	if _, err := m.client.UpdateFeed(ctx, id, api.FeedUpdate{IsEnabled: &enabled}); err != nil {
		return fmt.Errorf("updating feed %s: %w", id, err)
	}
	return m.Load(ctx)
}

// Sync triggers a manual sync for an enabled feed and reloads.
func (m *Manager) Sync(ctx context.Context, id string) error {
	feed, err := m.Get(id)
	if err != nil {
		return err
	}
	if !feed.IsEnabled {
		return ErrSyncDisabled
	}

	if err := m.client.TriggerFeedSync(ctx, id); err != nil {
		return fmt.Errorf("triggering sync for %s: %w", id, err)
	}
	return m.Load(ctx)
}

// ConfirmDelete executes a previously armed delete. Calling it without
// arming first returns ErrNotArmed and never reaches the API.
func (m *Manager) ConfirmDelete(ctx context.Context) error {
	id, ok := m.Delete.confirm()
	if !ok {
		return ErrNotArmed
	}
	defer m.Delete.finish()

	if err := m.client.DeleteFeed(ctx, id); err != nil {
		return fmt.Errorf("deleting feed %s: %w", id, err)
	}
	m.logger.Info("feed deleted", zap.String("feed_id", id))
	return m.Load(ctx)
}

// Logs fetches a feed's sync history. Best effort: callers render an empty
// history on error rather than surfacing it.
func (m *Manager) Logs(ctx context.Context, id string) (api.FeedLogs, error) {
	logs, err := m.client.FeedLogs(ctx, id)
	if err != nil {
		m.logger.Debug("feed log fetch failed", zap.String("feed_id", id), zap.Error(err))
		return api.FeedLogs{FeedID: id}, err
	}
	return logs, nil
}
