package ledger

import "time"

// RunStatus describes how a publish run ended.
type RunStatus string

const (
	RunCompleted  RunStatus = "completed"
	RunAuthFailed RunStatus = "auth_failed"
	RunCSVFailed  RunStatus = "csv_failed"
	RunCancelled  RunStatus = "cancelled"
)

// Run is one publish run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	CSVPath    string
	APIURL     string
	Rows       int
	Created    int
	Failed     int
	Skipped    int
	Error      string
	Outcomes   []Outcome
}

// Duration returns how long the run took, or zero when it has not finished.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome is the recorded result of one field of one sutra.
type Outcome struct {
	Line       int
	Upanishad  string
	Chapter    int
	Sutra      int
	Kind       string
	Language   string
	Philosophy string
	Mode       string
	Status     string
	StatusCode int
	Detail     string
}
