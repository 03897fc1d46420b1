package pipeline

import (
	"maps"
	"slices"
	"time"
)

// FileReport summarizes one processed file.
type FileReport struct {
	RunID    string         `json:"run_id"`
	Path     string         `json:"path"`
	Dataset  string         `json:"dataset"`
	Site     string         `json:"site"`
	Rows     int            `json:"rows"`
	Created  int            `json:"created"`
	Existing int            `json:"existing"`
	Failed   int            `json:"failed"`
	Failures map[string]int `json:"failures,omitempty"`
	Latin1   bool           `json:"latin1,omitempty"`
	// Error is set when the file as a whole could not be processed.
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (f *FileReport) fail(reason string) {
	if f.Failures == nil {
		f.Failures = make(map[string]int)
	}
	f.Failures[reason]++
	f.Failed++
}

// Report is the aggregate result of one run.
type Report struct {
	RunID        string       `json:"run_id"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
	Files        []FileReport `json:"files"`
	Unclassified []string     `json:"unclassified,omitempty"`
	// NotDispatched counts classified files left untouched after cancellation.
	NotDispatched int  `json:"not_dispatched,omitempty"`
	Cancelled     bool `json:"cancelled,omitempty"`
	// HeadersCreated counts header catalog entries added by the run.
	HeadersCreated int `json:"headers_created"`
}

// Totals aggregates the per-file counts of a run.
type Totals struct {
	Files       int            `json:"files"`
	FailedFiles int            `json:"failed_files"`
	Rows        int            `json:"rows"`
	Created     int            `json:"created"`
	Existing    int            `json:"existing"`
	Failed      int            `json:"failed"`
	Failures    map[string]int `json:"failures"`
}

// Totals sums the file reports.
func (r Report) Totals() Totals {
	t := Totals{Files: len(r.Files), Failures: make(map[string]int)}
	for _, f := range r.Files {
		if f.Error != "" {
			t.FailedFiles++
		}
		t.Rows += f.Rows
		t.Created += f.Created
		t.Existing += f.Existing
		t.Failed += f.Failed
		for reason, n := range f.Failures {
			t.Failures[reason] += n
		}
	}
	return t
}

// Reasons returns the failure reasons of the run in sorted order.
func (t Totals) Reasons() []string {
	return slices.Sorted(maps.Keys(t.Failures))
}
