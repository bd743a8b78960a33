package models

// Batch status values.
const (
	BatchRunning   = "running"
	BatchCompleted = "completed"
	BatchCanceled  = "canceled"
)

// ProgressSnapshot is the polling payload for a running batch. Key names
// follow the progress protocol consumed by existing clients, so they are
// camelCase on the wire.
type ProgressSnapshot struct {
	Done          bool           `json:"done"`
	Processed     int            `json:"processed"`
	Total         int            `json:"total"`
	Results       []ScrapeResult `json:"results"`
	Errors        []string       `json:"errors"`
	RemainingURLs []string       `json:"remainingUrls"`
}
