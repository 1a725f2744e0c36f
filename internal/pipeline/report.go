package pipeline

import (
	"time"

	"github.com/couchcryptid/weather-prep/internal/domain"
)

// Report summarises a run: what was read, what was discarded, and what the
// split looks like.
type Report struct {
	StartedAt      time.Time             `json:"started_at"`
	RowsLoaded     int                   `json:"rows_loaded"`
	Columns        int                   `json:"columns"`
	DroppedColumns []string              `json:"dropped_columns,omitempty"`
	RowsDropped    int                   `json:"rows_dropped"`
	RowsKept       int                   `json:"rows_kept"`
	Geocode        domain.GeocodeSummary `json:"geocode"`
	Features       int                   `json:"features"`
	TrainRows      int                   `json:"train_rows"`
	TestRows       int                   `json:"test_rows"`
	Published      int                   `json:"published"`
	Warnings       []domain.Warning      `json:"warnings,omitempty"`
	Steps          []StepTiming          `json:"steps"`
}

// Duration is the total time spent in steps.
func (r Report) Duration() time.Duration {
	var total time.Duration
	for _, s := range r.Steps {
		total += s.Duration
	}
	return total
}

// WarningsFor returns the warnings raised by step.
func (r Report) WarningsFor(step string) []domain.Warning {
	var out []domain.Warning
	for _, w := range r.Warnings {
		if w.Step == step {
			out = append(out, w)
		}
	}
	return out
}

// StepTiming records how long one step took.
type StepTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
}
