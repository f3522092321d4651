package publish

import (
	"strings"
	"time"

	"sutrasync/internal/contentapi"
	"sutrasync/internal/ledger"
	"sutrasync/internal/scripture"
)

// OutcomeStatus classifies what happened to one field.
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// KindSutra and KindAudio complement the entry kinds of the content API.
const (
	KindSutra = "sutra"
	KindAudio = "audio"
)

// FieldOutcome is the result of one publish step.
type FieldOutcome struct {
	Kind       string
	Language   string
	Philosophy string
	Mode       string
	Status     OutcomeStatus
	StatusCode int
	Detail     string
}

// Label names the field, for example "interpretation ta/dva" or "audio chant".
func (o FieldOutcome) Label() string {
	parts := []string{o.Kind}
	qualifier := strings.Trim(strings.Join([]string{o.Language, o.Philosophy}, "/"), "/")
	if qualifier != "" {
		parts = append(parts, qualifier)
	}
	if o.Mode != "" {
		parts = append(parts, o.Mode)
	}
	return strings.Join(parts, " ")
}

// DisplayLabel is Label with language and school spelled out, for example
// "interpretation Tamil/Dvaita".
func (o FieldOutcome) DisplayLabel() string {
	named := o
	if o.Language != "" {
		named.Language = scripture.Language(o.Language).DisplayName()
	}
	if o.Philosophy != "" {
		named.Philosophy = scripture.Philosophy(o.Philosophy).DisplayName()
	}
	return named.Label()
}

// Totals counts outcomes by status.
type Totals struct {
	Created int
	Failed  int
	Skipped int
}

func (t *Totals) add(status OutcomeStatus) {
	switch status {
	case OutcomeCreated:
		t.Created++
	case OutcomeFailed:
		t.Failed++
	case OutcomeSkipped:
		t.Skipped++
	}
}

// Requests is the number of network calls behind the totals.
func (t Totals) Requests() int { return t.Created + t.Failed }

// RowReport collects the outcomes of one CSV row.
type RowReport struct {
	Line     int
	Ref      contentapi.SutraRef
	Outcomes []FieldOutcome
}

func (r *RowReport) record(outcome FieldOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
}

// Totals counts the row's outcomes by status.
func (r RowReport) Totals() Totals {
	var t Totals
	for _, o := range r.Outcomes {
		t.add(o.Status)
	}
	return t
}

// Failures returns the outcomes that failed.
func (r RowReport) Failures() []FieldOutcome {
	var out []FieldOutcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			out = append(out, o)
		}
	}
	return out
}

// ProjectReport summarizes project provisioning.
type ProjectReport struct {
	Existing []string
	Created  []string
	Failed   []string
}

// RunReport aggregates a publish run.
type RunReport struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      ledger.RunStatus
	CSVPath     string
	APIURL      string
	Projects    ProjectReport
	Rows        []RowReport
	SkippedRows int
	Err         error
}

// Totals counts outcomes across every row.
func (r RunReport) Totals() Totals {
	var t Totals
	for _, row := range r.Rows {
		for _, o := range row.Outcomes {
			t.add(o.Status)
		}
	}
	return t
}

// Duration returns the wall time of the run.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// LedgerRun converts the report into its ledger record.
func (r RunReport) LedgerRun() ledger.Run {
	totals := r.Totals()
	run := ledger.Run{
		ID:         r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Status:     r.Status,
		CSVPath:    r.CSVPath,
		APIURL:     r.APIURL,
		Rows:       len(r.Rows),
		Created:    totals.Created,
		Failed:     totals.Failed,
		Skipped:    totals.Skipped,
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}
	for _, row := range r.Rows {
		for _, o := range row.Outcomes {
			run.Outcomes = append(run.Outcomes, ledger.Outcome{
				Line:       row.Line,
				Upanishad:  row.Ref.Upanishad,
				Chapter:    row.Ref.Chapter,
				Sutra:      row.Ref.Number,
				Kind:       o.Kind,
				Language:   o.Language,
				Philosophy: o.Philosophy,
				Mode:       o.Mode,
				Status:     string(o.Status),
				StatusCode: o.StatusCode,
				Detail:     o.Detail,
			})
		}
	}
	return run
}
