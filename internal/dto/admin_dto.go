package dto

import "time"

// --- Auth ---

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Cache operations ---

type CacheClearResponse struct {
	Removed int `json:"removed"`
}

// --- Index operations ---

type RebuildIndexRequest struct {
	MetadataPath string `json:"metadata_path,omitempty"`
}

type RebuildIndexResponse struct {
	Lines       int   `json:"lines"`
	Departments int   `json:"departments"`
	Labels      int   `json:"labels"`
	Names       int   `json:"names"`
	DurationMs  int64 `json:"duration_ms"`
}

type RebuildVectorRequest struct {
	DocsDir string `json:"docs_dir,omitempty"`
}

type RebuildVectorResponse struct {
	Documents  int   `json:"documents"`
	Chunks     int   `json:"chunks"`
	DurationMs int64 `json:"duration_ms"`
}

// --- Dashboard ---

type CacheStatsResponse struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
}

type IndexStatsResponse struct {
	Enabled     bool  `json:"enabled"`
	Lines       int   `json:"lines"`
	Departments int   `json:"departments"`
	Labels      int   `json:"labels"`
	Names       int   `json:"names"`
	LastBuildMs int64 `json:"last_build_ms"`
}

type VectorStatsResponse struct {
	Backend string `json:"backend"`
	Loaded  bool   `json:"loaded"`
	Chunks  int    `json:"chunks"`
}

type CorpusStatsResponse struct {
	Loaded bool   `json:"loaded"`
	Path   string `json:"path,omitempty"`
	Bytes  int    `json:"bytes"`
}

type SourceUsageResponse struct {
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MinMs   float64 `json:"min_ms"`
	MaxMs   float64 `json:"max_ms"`
}

type RecentQuestionResponse struct {
	RequestId    string    `json:"request_id"`
	Query        string    `json:"query"`
	Source       string    `json:"source"`
	CacheHit     bool      `json:"cache_hit"`
	ResponseTime float64   `json:"response_time"`
	At           time.Time `json:"at"`
}

type DashboardResponse struct {
	Cache           CacheStatsResponse             `json:"cache"`
	StructuredIndex IndexStatsResponse             `json:"structured_index"`
	Vector          VectorStatsResponse            `json:"vector"`
	Corpus          CorpusStatsResponse            `json:"corpus"`
	TotalQueries    int64                          `json:"total_queries"`
	UsageBySource   map[string]SourceUsageResponse `json:"usage_by_source"`
	RecentQuestions []RecentQuestionResponse       `json:"recent_questions"`
}
