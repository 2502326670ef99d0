package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/api"
	"github.com/lvonguyen/sentinel-console/internal/assistant"
	"github.com/lvonguyen/sentinel-console/internal/attackmap"
	"github.com/lvonguyen/sentinel-console/internal/auth"
	"github.com/lvonguyen/sentinel-console/internal/feeds"
	"github.com/lvonguyen/sentinel-console/internal/reports"
	"github.com/lvonguyen/sentinel-console/internal/score"
)

var (
	errInvalidMinScore  = errors.New("min_score must be an integer between 0 and 100")
	errInvalidPage      = errors.New("page must be a positive integer")
	errNotLoggedIn      = errors.New("authentication required")
	errTechniqueUnknown = errors.New("technique not present in the current heatmap")
	errEmptyMessage     = errors.New("message content is required")
)

// routes registers the console's page and action routes. Page routes
// return presentation-ready JSON view models; action routes perform a
// mutation and return the refreshed state.
func (a *app) routes(r chi.Router) {
	r.Get("/dashboard", a.handleDashboard)
	r.Get("/dashboard/trends", a.handleTrends)

	r.Route("/ioc", func(r chi.Router) {
		r.Post("/search", a.handleIOCSearch)
		r.Get("/page/{page}", a.handleIOCPage)
		r.Get("/{id}", a.handleIOCDetail)
		r.Put("/{id}/tags", a.handleIOCTags)
		r.Get("/{id}/relationships", a.handleIOCRelationships)
		r.Post("/{id}/enrich", a.handleIOCEnrich)
		r.Post("/{id}/analyze", a.handleIOCAnalyze)
	})

	r.Post("/hunting/lookup", a.handleBulkLookup)

	r.Route("/feeds", func(r chi.Router) {
		r.Get("/", a.handleFeedList)
		r.Post("/", a.handleFeedCreate)
		r.Post("/{id}/toggle", a.handleFeedToggle)
		r.Post("/{id}/sync", a.handleFeedSync)
		r.Post("/{id}/delete/arm", a.handleFeedDeleteArm)
		r.Post("/{id}/delete/cancel", a.handleFeedDeleteCancel)
		r.Post("/delete/confirm", a.handleFeedDeleteConfirm)
		r.Get("/{id}/logs", a.handleFeedLogs)
	})

	r.Route("/attack-map", func(r chi.Router) {
		r.Get("/", a.handleAttackMap)
		r.Get("/matrix", a.handleAttackMatrix)
		r.Post("/select/{id}", a.handleAttackSelect)
		r.Post("/deselect", a.handleAttackDeselect)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", a.handleReportList)
		r.Post("/generate", a.handleReportGenerate)
		r.Post("/ai", a.handleAIReport)
		r.Get("/daily-brief", a.handleDailyBrief)
		r.Get("/{id}/download", a.handleReportDownload)
	})

	r.Route("/ai-assistant", func(r chi.Router) {
		r.Get("/", a.handleChatHistory)
		r.Get("/status", a.handleAIStatus)
		r.Post("/send", a.handleChatSend)
		r.Post("/clear", a.handleChatClear)
	})

	r.Post("/login", a.handleLogin)
	r.Post("/register", a.handleRegister)
	r.Post("/logout", a.handleLogout)
	r.Get("/profile", a.handleProfile)
	r.Put("/profile", a.handleProfileUpdate)
}

func (a *app) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Debug("response encoding failed", zap.Error(err))
	}
}

func (a *app) respondErr(w http.ResponseWriter, status int, err error) {
	a.respond(w, status, map[string]string{"error": err.Error()})
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	upstream := "ok"
	if err := a.client.Health(r.Context()); err != nil {
		upstream = "unreachable"
	}
	a.respond(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"version":  Version,
		"upstream": upstream,
	})
}

// Dashboard

func (a *app) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		a.aggregator.Refresh(r.Context(), "manual")
	}

	snap := a.aggregator.Snapshot()

	health := make([]map[string]any, len(snap.FeedHealth.Data))
	for i, feed := range snap.FeedHealth.Data {
		health[i] = map[string]any{
			"feed":      feed,
			"color":     score.HealthColor(feed.Health),
			"last_sync": score.FormatTimestamp(feed.LastSyncAt),
		}
	}

	view := map[string]any{
		"stats":          snap.Stats.Data,
		"stats_loaded":   snap.Stats.Loaded,
		"timeline":       snap.Timeline.Data,
		"top_threats":    snap.TopThreats.Data,
		"feed_health":    health,
		"geo":            snap.Geo.Data,
		"notifications":  snap.Notifications.Data,
		"avg_score_band": score.Categorize(int(snap.Stats.Data.AvgThreatScore)),
		"refreshing":     snap.Refreshing,
		"last_refresh":   snap.LastRefresh,
	}
	if snap.Error != "" {
		view["error"] = snap.Error
	}
	a.respond(w, http.StatusOK, view)
}

func (a *app) handleTrends(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}

	trends, err := a.client.Trends(r.Context(), days)
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"trends": trends, "days": days})
}

// IOCs

func (a *app) handleIOCSearch(w http.ResponseWriter, r *http.Request) {
	var filters api.SearchFilters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}

	if err := a.searchView.Search(r.Context(), filters); err != nil {
		// Search errors are shown inline with a retry affordance.
		a.respond(w, http.StatusOK, map[string]any{"error": a.searchView.Err()})
		return
	}
	a.respond(w, http.StatusOK, a.searchView.Result())
}

// handleIOCPage pages through the active search without resubmitting filters.
func (a *app) handleIOCPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		a.respondErr(w, http.StatusBadRequest, errInvalidPage)
		return
	}

	if err := a.searchView.LoadPage(r.Context(), page); err != nil {
		a.respond(w, http.StatusOK, map[string]any{"error": a.searchView.Err()})
		return
	}
	a.respond(w, http.StatusOK, map[string]any{
		"result":  a.searchView.Result(),
		"filters": a.searchView.Filters(),
	})
}

func (a *app) handleIOCDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := a.client.GetIOC(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}

	a.respond(w, http.StatusOK, map[string]any{
		"ioc":        detail,
		"category":   score.Categorize(detail.ThreatScore),
		"color":      score.Color(detail.ThreatScore),
		"type_icon":  score.TypeIcon(string(detail.Type)),
		"first_seen": score.FormatDate(detail.FirstSeen),
		"last_seen":  score.FormatTimestamp(detail.LastSeen),
	})
}

func (a *app) handleIOCTags(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}

	ioc, err := a.client.UpdateIOCTags(r.Context(), chi.URLParam(r, "id"), body.Tags)
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, ioc)
}

func (a *app) handleIOCRelationships(w http.ResponseWriter, r *http.Request) {
	related, err := a.client.GetIOCRelationships(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"relationships": related})
}

// handleIOCEnrich queues a re-enrichment and returns whatever enrichment
// data is already on record.
func (a *app) handleIOCEnrich(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.client.TriggerEnrichment(r.Context(), id); err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}

	enrichments, err := a.client.GetIOCEnrichment(r.Context(), id)
	if err != nil {
		// Enrichment runs async; the trigger succeeded either way.
		a.logger.Debug("enrichment readback failed", zap.String("ioc_id", id), zap.Error(err))
	}
	a.respond(w, http.StatusAccepted, map[string]any{"queued": true, "enrichments": enrichments})
}

func (a *app) handleIOCAnalyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := a.chat.AnalyzeIOC(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, analysis)
}

func (a *app) handleBulkLookup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}

	results, err := a.searchView.BulkLookup(r.Context(), body.Input)
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

// Feeds

// feedListView renders the filtered list plus aggregate counters.
func (a *app) feedListView(r *http.Request) map[string]any {
	filter := feeds.Filter{
		Query:  r.URL.Query().Get("q"),
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}
	sortKey := feeds.SortKey(r.URL.Query().Get("sort"))
	if sortKey == "" {
		sortKey = feeds.SortByName
	}

	all := a.feedMgr.Feeds()
	stats := feeds.Summarize(all)
	list := feeds.Apply(all, filter, sortKey)

	rows := make([]map[string]any, len(list))
	for i, feed := range list {
		rows[i] = map[string]any{
			"feed":         feed,
			"summary":      score.Truncate(feed.Description, 80),
			"bar_width":    feeds.BarWidth(feed.IOCCount, stats.MaxIOCCount),
			"ioc_label":    score.FormatNumber(feed.IOCCount),
			"last_sync":    score.FormatTimestamp(feed.LastSyncAt),
			"delete_armed": a.feedMgr.Delete.Armed(feed.ID),
		}
	}

	return map[string]any{"feeds": rows, "stats": stats}
}

func (a *app) handleFeedList(w http.ResponseWriter, r *http.Request) {
	if err := a.feedMgr.Load(r.Context()); err != nil {
		// Degrade to the empty state rather than a raw error page.
		a.logger.Debug("feed list load failed", zap.Error(err))
	}
	a.respond(w, http.StatusOK, a.feedListView(r))
}

func (a *app) handleFeedCreate(w http.ResponseWriter, r *http.Request) {
	var form api.FeedCreate
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}
	if err := a.feedMgr.Create(r.Context(), form); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}
	a.respond(w, http.StatusCreated, a.feedListView(r))
}

func (a *app) handleFeedToggle(w http.ResponseWriter, r *http.Request) {
	if err := a.feedMgr.Toggle(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, a.feedListView(r))
}

func (a *app) handleFeedSync(w http.ResponseWriter, r *http.Request) {
	if err := a.feedMgr.Sync(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, a.feedListView(r))
}

func (a *app) handleFeedDeleteArm(w http.ResponseWriter, r *http.Request) {
	a.feedMgr.Delete.Arm(chi.URLParam(r, "id"))
	a.respond(w, http.StatusOK, map[string]string{"status": "armed"})
}

func (a *app) handleFeedDeleteCancel(w http.ResponseWriter, r *http.Request) {
	a.feedMgr.Delete.Cancel()
	a.respond(w, http.StatusOK, map[string]string{"status": "idle"})
}

func (a *app) handleFeedDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	if err := a.feedMgr.ConfirmDelete(r.Context()); err != nil {
		status := http.StatusBadGateway
		if err == feeds.ErrNotArmed {
			status = http.StatusConflict
		}
		a.respondErr(w, status, err)
		return
	}
	a.respond(w, http.StatusOK, a.feedListView(r))
}

func (a *app) handleFeedLogs(w http.ResponseWriter, r *http.Request) {
	// Sync history is best-effort; an unreachable backend yields an
	// empty history rather than an error page.
	logs, _ := a.feedMgr.Logs(r.Context(), chi.URLParam(r, "id"))
	a.respond(w, http.StatusOK, logs)
}

// ATT&CK map

func (a *app) handleAttackMap(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		minScore, err := strconv.Atoi(raw)
		if err != nil || minScore < 0 || minScore > 100 {
			a.respondErr(w, http.StatusBadRequest, errInvalidMinScore)
			return
		}
		if err := a.attackView.SetMinScore(r.Context(), minScore); err != nil {
			a.logger.Debug("heatmap fetch failed", zap.Error(err))
		}
	} else if err := a.attackView.Load(r.Context()); err != nil {
		a.logger.Debug("heatmap fetch failed", zap.Error(err))
	}

	selected, detail := a.attackView.Selection()
	view := map[string]any{
		"matrix":    a.attackView.Matrix(),
		"min_score": a.attackView.MinScore(),
		"selected":  selected,
		"detail":    detail,
	}
	if msg := a.attackView.Err(); msg != "" {
		view["error"] = msg
	}
	a.respond(w, http.StatusOK, view)
}

// handleAttackMatrix serves the static technique matrix used by the grid
// layout, independent of the IOC-driven heatmap.
func (a *app) handleAttackMatrix(w http.ResponseWriter, r *http.Request) {
	matrix, err := a.client.AttackMatrix(r.Context())
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, matrix)
}

func (a *app) handleAttackSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// A technique can sit under more than one tactic; the first column in
	// display order wins.
	var target *attackmap.Cell
search:
	for _, col := range a.attackView.Matrix().Columns {
		for _, cell := range col.Techniques {
			if cell.TechniqueID == id {
				c := cell
				target = &c
				break search
			}
		}
	}
	if target == nil {
		a.respondErr(w, http.StatusNotFound, errTechniqueUnknown)
		return
	}

	a.attackView.Select(r.Context(), *target)
	selected, detail := a.attackView.Selection()
	a.respond(w, http.StatusOK, map[string]any{"selected": selected, "detail": detail})
}

func (a *app) handleAttackDeselect(w http.ResponseWriter, r *http.Request) {
	a.attackView.ClearSelection()
	a.respond(w, http.StatusOK, map[string]string{"status": "deselected"})
}

// Reports

func (a *app) handleReportList(w http.ResponseWriter, r *http.Request) {
	if err := a.reportView.Load(r.Context()); err != nil {
		a.respond(w, http.StatusOK, map[string]any{"error": a.reportView.Err()})
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"reports": a.reportView.Reports()})
}

func (a *app) handleReportGenerate(w http.ResponseWriter, r *http.Request) {
	var params map[string]any
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}
	report, err := a.reportView.Generate(r.Context(), params)
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusCreated, report)
}

func (a *app) handleAIReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.reportView.AIReport(r.Context())
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusCreated, report)
}

func (a *app) handleDailyBrief(w http.ResponseWriter, r *http.Request) {
	brief, err := a.reportView.DailyBrief(r.Context())
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{
		"report":   brief,
		"sections": reports.ContentSections(brief),
	})
}

func (a *app) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	data, err := a.reportView.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// AI assistant

func (a *app) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	a.respond(w, http.StatusOK, map[string]any{
		"messages":      a.chat.Messages(),
		"busy":          a.chat.Busy(),
		"quick_prompts": assistant.QuickPrompts,
	})
}

func (a *app) handleAIStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.client.AIStatus(r.Context())
	if err != nil {
		// An unreachable inference backend is a normal state; the FAQ
		// fallback covers it.
		a.respond(w, http.StatusOK, api.AIStatus{Available: false})
		return
	}
	a.respond(w, http.StatusOK, status)
}

func (a *app) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
		a.respondErr(w, http.StatusBadRequest, errEmptyMessage)
		return
	}

	reply, err := a.chat.Send(r.Context(), body.Content)
	if err != nil {
		a.respondErr(w, http.StatusConflict, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{
		"reply":    reply,
		"messages": a.chat.Messages(),
	})
}

func (a *app) handleChatClear(w http.ResponseWriter, r *http.Request) {
	a.chat.Clear()
	a.respond(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Auth

func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}
	if err := auth.ValidateLogin(req); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}

	token, err := a.client.Login(r.Context(), req)
	if err != nil {
		a.respondErr(w, http.StatusUnauthorized, err)
		return
	}

	a.session.Login(token.AccessToken, token.User)
	a.respond(w, http.StatusOK, map[string]any{"user": token.User})
}

func (a *app) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}
	if err := auth.ValidateRegister(req); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}

	token, err := a.client.Register(r.Context(), req)
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}

	a.session.Login(token.AccessToken, token.User)
	a.respond(w, http.StatusCreated, map[string]any{"user": token.User})
}

func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.session.Logout()
	a.respond(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (a *app) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := a.session.User()
	if user == nil {
		a.respond(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
}

func (a *app) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	user := a.session.User()
	if user == nil {
		a.respondErr(w, http.StatusUnauthorized, errNotLoggedIn)
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		a.respondErr(w, http.StatusBadRequest, err)
		return
	}

	updated, err := a.client.UpdateUser(r.Context(), user.ID, fields)
	if err != nil {
		a.respondErr(w, http.StatusBadGateway, err)
		return
	}

	// Refresh session state with the new profile under the same token.
	a.session.Login(a.session.Token(), updated)
	a.respond(w, http.StatusOK, map[string]any{"user": updated})
}
