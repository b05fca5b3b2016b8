package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/irahardianto/stopgate/internal/engine/truncate"
)

// DecisionBlock tells the controlling agent it may not complete yet.
const DecisionBlock = "block"

// Decision is the payload handed to the controlling agent.
// An empty Decision field means completion is permitted.
type Decision struct {
	Decision string   `json:"decision,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Blocked reports whether the payload carries a blocking decision.
func (d Decision) Blocked() bool {
	return d.Decision == DecisionBlock
}

// Decide builds the agent payload for summary.
// Only the first blocking failure is named in the reason, with its stderr
// truncated to budget characters.
func Decide(summary RunSummary, budget int) Decision {
	var d Decision
	if len(summary.Warnings) > 0 {
		d.Warnings = append([]string(nil), summary.Warnings...)
	}
	if summary.Passed || summary.FirstFailure == nil {
		return d
	}

	ff := summary.FirstFailure
	d.Decision = DecisionBlock
	d.Reason = fmt.Sprintf("Gate '%s' failed (exit %s):\n%s", ff.Name, ff.ExitCode, truncate.Stream(ff.Stderr, budget))
	return d
}

// JSON encodes the payload as a single line. Gate output is kept verbatim,
// without HTML escaping.
func (d Decision) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
