package dto

type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type AskResponse struct {
	RequestId    string  `json:"request_id"`
	Answer       string  `json:"answer"`
	Source       string  `json:"source"`
	Confidence   float64 `json:"confidence"`
	ResponseTime float64 `json:"response_time"` // seconds
}

type ComponentHealthResponse struct {
	Loaded     bool  `json:"loaded"`
	LastLoadMs int64 `json:"last_load_ms"`
}

type HealthResponse struct {
	Status        string                             `json:"status"`
	Components    map[string]ComponentHealthResponse `json:"components"`
	UptimeSeconds float64                            `json:"uptime_seconds"`
}
