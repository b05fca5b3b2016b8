// Package formatter holds the run result model and renders it for the
// console, for the controlling agent, and as JSON/SARIF records.
package formatter

import (
	"encoding/json"
	"strconv"
	"time"
)

// ExitCode is a process exit code, or none when the process could not be
// started or was terminated by a signal.
type ExitCode struct {
	code  int
	valid bool
}

// NoExitCode is the exit code of a process that never produced one.
var NoExitCode = ExitCode{}

// Exited returns the ExitCode for a process that exited with code.
func Exited(code int) ExitCode {
	return ExitCode{code: code, valid: true}
}

// Value returns the code and whether one is present.
func (e ExitCode) Value() (int, bool) {
	return e.code, e.valid
}

// IsZero reports whether the process exited with status 0.
func (e ExitCode) IsZero() bool {
	return e.valid && e.code == 0
}

// String returns the decimal code, or "null" when there is none.
func (e ExitCode) String() string {
	if !e.valid {
		return "null"
	}
	return strconv.Itoa(e.code)
}

// MarshalJSON encodes the code as a number or null.
func (e ExitCode) MarshalJSON() ([]byte, error) {
	if !e.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(e.code)), nil
}

// UnmarshalJSON decodes a number or null.
func (e *ExitCode) UnmarshalJSON(data []byte) error {
	var v *int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*e = NoExitCode
		return nil
	}
	*e = Exited(*v)
	return nil
}

// GateOutcome holds the result of executing (or skipping) a single gate.
type GateOutcome struct {
	Name       string   `json:"name"`
	Passed     bool     `json:"passed"`
	ExitCode   ExitCode `json:"exit_code"`
	Stdout     string   `json:"stdout"`
	Stderr     string   `json:"stderr"`
	DurationMs int64    `json:"duration_ms"`
	Skipped    bool     `json:"skipped"`
	Blocking   bool     `json:"blocking"`
}

// Failed reports whether the gate ran and did not pass.
func (o GateOutcome) Failed() bool {
	return !o.Skipped && !o.Passed
}

// Skip returns the placeholder outcome for a gate suppressed by fail-fast.
func Skip(name string, blocking bool) GateOutcome {
	return GateOutcome{
		Name:     name,
		Passed:   true,
		ExitCode: NoExitCode,
		Skipped:  true,
		Blocking: blocking,
	}
}

// RunSummary holds the aggregated result of one run.
// FirstFailure points into Results.
type RunSummary struct {
	RunID           string        `json:"run_id"`
	Passed          bool          `json:"passed"`
	Timestamp       time.Time     `json:"timestamp"`
	TotalDurationMs int64         `json:"total_duration_ms"`
	Results         []GateOutcome `json:"results"`
	FirstFailure    *GateOutcome  `json:"first_failure"`
	Warnings        []string      `json:"warnings"`
}

// Relink points FirstFailure back into Results after the summary has been
// decoded, where it arrives as a detached copy.
func (s *RunSummary) Relink() {
	if s.FirstFailure == nil {
		return
	}
	for i := range s.Results {
		if s.Results[i].Name == s.FirstFailure.Name {
			s.FirstFailure = &s.Results[i]
			return
		}
	}
}

// Formatter formats a RunSummary into a human-readable or machine-readable string.
type Formatter interface {
	Format(summary RunSummary) string
}
