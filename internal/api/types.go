package api

import (
	"encoding/json"
	"time"
)

// IOCType identifies the kind of indicator.
type IOCType string

const (
	IOCTypeIP     IOCType = "ip"
	IOCTypeDomain IOCType = "domain"
	IOCTypeHash   IOCType = "hash"
	IOCTypeURL    IOCType = "url"
	IOCTypeEmail  IOCType = "email"
	IOCTypeCVE    IOCType = "cve"
)

// IOC is an indicator of compromise as reported by the platform.
type IOC struct {
	ID              string          `json:"id"`
	Type            IOCType         `json:"type"`
	Value           string          `json:"value"`
	ThreatScore     int             `json:"threat_score"`
	Confidence      float64         `json:"confidence"`
	FirstSeen       *time.Time      `json:"first_seen"`
	LastSeen        *time.Time      `json:"last_seen"`
	SightingCount   int             `json:"sighting_count"`
	Tags            []string        `json:"tags"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	MITRETechniques []string        `json:"mitre_techniques"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IOCDetail is the expanded single-IOC view with enrichment context.
type IOCDetail struct {
	IOC
	Enrichments   []EnrichmentData  `json:"enrichments"`
	Sources       []IOCSourceInfo   `json:"sources"`
	Relationships []IOCRelationship `json:"relationships"`
}

// EnrichmentData is one enrichment source's contribution. The payload is
// backend-controlled free-form JSON and stays opaque at this boundary.
type EnrichmentData struct {
	Source     string          `json:"source"`
	Data       json.RawMessage `json:"data"`
	EnrichedAt time.Time       `json:"enriched_at"`
}

// IOCSourceInfo records which feed contributed an IOC.
type IOCSourceInfo struct {
	FeedName   string     `json:"feed_name"`
	FeedSlug   string     `json:"feed_slug"`
	IngestedAt *time.Time `json:"ingested_at"`
}

// IOCRelationship links a related indicator.
type IOCRelationship struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	Value            string `json:"value"`
	ThreatScore      int    `json:"threat_score"`
	RelationshipType string `json:"relationship_type"`
	Direction        string `json:"direction"`
}

// Page is the platform's pagination envelope.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// SearchFilters is the request body for POST /iocs/search.
type SearchFilters struct {
	Query     string   `json:"query,omitempty"`
	IOCType   string   `json:"ioc_type,omitempty"`
	MinScore  *int     `json:"min_score,omitempty"`
	MaxScore  *int     `json:"max_score,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	DateFrom  string   `json:"date_from,omitempty"`
	DateTo    string   `json:"date_to,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`
	SortOrder string   `json:"sort_order,omitempty"`
	Page      int      `json:"page"`
	PageSize  int      `json:"page_size"`
}

// FeedSource is a configured threat intelligence feed.
type FeedSource struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description"`
	FeedType       string          `json:"feed_type"`
	URL            string          `json:"url"`
	APIKeyEnv      string          `json:"api_key_env"`
	IsEnabled      bool            `json:"is_enabled"`
	SyncFrequency  int             `json:"sync_frequency"`
	LastSyncAt     *time.Time      `json:"last_sync_at"`
	LastSyncStatus string          `json:"last_sync_status"`
	IOCCount       int             `json:"ioc_count"`
	Config         json.RawMessage `json:"config,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// FeedCreate is the request body for POST /feeds.
type FeedCreate struct {
	Name          string `json:"name" validate:"required"`
	Slug          string `json:"slug" validate:"required,slug,max=64"`
	Description   string `json:"description,omitempty"`
	FeedType      string `json:"feed_type" validate:"required,oneof=api csv stix custom"`
	URL           string `json:"url,omitempty" validate:"omitempty,url"`
	APIKeyEnv     string `json:"api_key_env,omitempty"`
	SyncFrequency int    `json:"sync_frequency,omitempty" validate:"omitempty,min=60"`
}

// FeedUpdate carries partial feed mutations (currently the enable toggle).
type FeedUpdate struct {
	IsEnabled *bool `json:"is_enabled,omitempty"`
}

// FeedLogEntry is one sync attempt from the feed's log.
type FeedLogEntry struct {
	Timestamp    *time.Time `json:"timestamp"`
	Status       string     `json:"status"`
	IOCsIngested int        `json:"iocs_ingested"`
}

// FeedLogs is the response from GET /feeds/{id}/logs.
type FeedLogs struct {
	FeedID   string         `json:"feed_id"`
	FeedName string         `json:"feed_name"`
	Logs     []FeedLogEntry `json:"logs"`
}

// FeedHealth is the dashboard's per-feed health summary.
type FeedHealth struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	IsEnabled      bool       `json:"is_enabled"`
	LastSyncAt     *time.Time `json:"last_sync_at"`
	LastSyncStatus string     `json:"last_sync_status"`
	IOCCount       int        `json:"ioc_count"`
	Health         string     `json:"health"`
}

// DashboardStats is the headline stats block.
type DashboardStats struct {
	TotalIOCs       int          `json:"total_iocs"`
	New24h          int          `json:"new_24h"`
	DeltaPct        float64      `json:"delta_pct"`
	CriticalThreats int          `json:"critical_threats"`
	AvgThreatScore  float64      `json:"avg_threat_score"`
	ActiveFeeds     int          `json:"active_feeds"`
	TotalFeeds      int          `json:"total_feeds"`
	Trends          []TrendPoint `json:"trends"`
}

// TrendPoint is a single ingest-trend sample.
type TrendPoint struct {
	Date     string `json:"date"`
	Count    int    `json:"count"`
	Total    int    `json:"total,omitempty"`
	Critical int    `json:"critical,omitempty"`
}

// TopThreat is one entry from the top-threats list.
type TopThreat struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Value         string     `json:"value"`
	ThreatScore   int        `json:"threat_score"`
	Tags          []string   `json:"tags"`
	FirstSeen     *time.Time `json:"first_seen"`
	LastSeen      *time.Time `json:"last_seen"`
	SightingCount int        `json:"sighting_count"`
}

// TimelineEntry is one recent-activity row.
type TimelineEntry struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Value       string     `json:"value"`
	ThreatScore int        `json:"threat_score"`
	Tags        []string   `json:"tags"`
	CreatedAt   *time.Time `json:"created_at"`
	FirstSeen   *time.Time `json:"first_seen"`
}

// GeoPoint is a per-country IOC aggregate.
type GeoPoint struct {
	Country  string  `json:"country"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// Notification is a dashboard alert item.
type Notification struct {
	ID          string    `json:"id"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	IOCType     string    `json:"ioc_type"`
	IOCValue    string    `json:"ioc_value"`
	ThreatScore int       `json:"threat_score"`
	Timestamp   time.Time `json:"timestamp"`
}

// HeatmapEntry is one technique cell of the ATT&CK heatmap.
type HeatmapEntry struct {
	TechniqueID   string  `json:"technique_id"`
	TechniqueName string  `json:"technique_name"`
	Tactic        string  `json:"tactic"`
	IOCCount      int     `json:"ioc_count"`
	Intensity     float64 `json:"intensity"`
}

// TechniqueDetail is the secondary detail fetch for a selected technique.
type TechniqueDetail struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Tactic         string   `json:"tactic"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	DataSources    []string `json:"data_sources"`
	AssociatedIOCs []IOC    `json:"associated_iocs"`
}

// AttackMatrix groups techniques by tactic name.
type AttackMatrix map[string][]struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Tactic   string `json:"tactic"`
	IOCCount int    `json:"ioc_count"`
	URL      string `json:"url"`
}

// Report is a generated intelligence report. Content is backend-shaped JSON
// and is validated only for structure before rendering.
type Report struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	ReportType  string          `json:"report_type"`
	Summary     string          `json:"summary"`
	Content     json.RawMessage `json:"content"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// UserProfile is the authenticated user record.
type UserProfile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserProfile `json:"user"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries registration fields.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=admin analyst viewer"`
}

// ChatMessage is one turn of the AI conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the AI chat reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// AIAnalysis is the per-IOC AI assessment.
type AIAnalysis struct {
	Analysis        string   `json:"analysis"`
	Summary         string   `json:"summary"`
	RiskLevel       string   `json:"risk_level"`
	Recommendations []string `json:"recommendations"`
}

// AIStatus reports inference backend availability.
type AIStatus struct {
	Available bool   `json:"available"`
	Model     string `json:"model"`
}
