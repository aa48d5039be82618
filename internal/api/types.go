package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Analysis describes a stored analysis in a transport-friendly format.
type Analysis struct {
	ID            int64   `json:"id"`
	UUID          string  `json:"uuid"`
	Filename      string  `json:"filename"`
	MediaType     string  `json:"mediaType"`
	SizeBytes     int64   `json:"sizeBytes"`
	Status        string  `json:"status"`
	ExifFound     bool    `json:"exifFound"`
	DeviceMake    string  `json:"deviceMake,omitempty"`
	DeviceModel   string  `json:"deviceModel,omitempty"`
	DeviceDisplay string  `json:"deviceDisplay,omitempty"`
	Scored        bool    `json:"scored"`
	Likelihood    float64 `json:"likelihood"`
	Verdict       string  `json:"verdict,omitempty"`
	Rationale     string  `json:"rationale,omitempty"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

// AnalysisResponse wraps a single analysis.
type AnalysisResponse struct {
	Analysis Analysis `json:"analysis"`
}

// AnalysisListResponse wraps a collection of analyses.
type AnalysisListResponse struct {
	Analyses []Analysis `json:"analyses"`
}

// ClearResponse reports how many analyses a clear request removed.
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"databasePath"`
	LockFilePath string         `json:"lockFilePath"`
	StagingDir   string         `json:"stagingDir"`
	Counts       map[string]int `json:"counts"`
}

// HealthResponse reports component readiness.
type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Scoring string `json:"scoring"`
}

// ErrorResponse carries a transport-level failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
