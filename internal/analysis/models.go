package analysis

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an analysis record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExtracting Status = "extracting"
	StatusScoring    Status = "scoring"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusScoring,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusExtracting: {},
	StatusScoring:    {},
}

// Record represents one analyzed file persisted in SQLite.
type Record struct {
	ID         int64
	UUID       string
	SourcePath string
	Filename   string
	MediaType  string
	SizeBytes  int64
	Status     Status

	// EXIF extraction results.
	ExifFound     bool
	DeviceMake    string
	DeviceModel   string
	DeviceDisplay string

	// LLM assessment; Likelihood/Verdict/Rationale are meaningful only
	// when Scored is true.
	Scored     bool
	Likelihood float64
	Verdict    string
	Rationale  string

	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HealthSummary describes aggregated record counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (r Record) IsProcessing() bool {
	_, ok := processingStatuses[r.Status]
	return ok
}
