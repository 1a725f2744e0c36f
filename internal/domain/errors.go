package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when the input has no data rows, or when
	// cleaning removes every row.
	ErrEmptyDataset = errors.New("dataset has no rows")

	// ErrMissingTarget is returned when the target column is absent.
	ErrMissingTarget = errors.New("target column not found")

	// ErrNoFeatures is returned when nothing but the target survives preparation.
	ErrNoFeatures = errors.New("no feature columns")

	// ErrTooFewRows is returned when a split cannot give both sides a row.
	ErrTooFewRows = errors.New("too few rows to split")

	// ErrInvalidTestSize is returned for a test fraction outside (0, 1).
	ErrInvalidTestSize = errors.New("invalid test size")
)

// Warning records a step that was skipped or degraded because the data did
// not have the expected shape.
type Warning struct {
	Step    string `json:"step"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Column == "" {
		return fmt.Sprintf("%s: %s", w.Step, w.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", w.Step, w.Column, w.Message)
}

func missingColumn(step, col, msg string) Warning {
	return Warning{Step: step, Column: col, Message: msg}
}
