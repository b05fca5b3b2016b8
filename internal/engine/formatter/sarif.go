package formatter

import (
	"bytes"
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/irahardianto/stopgate/internal/engine/truncate"
)

const (
	sarifToolName = "stopgate"
	sarifToolURI  = "https://github.com/irahardianto/stopgate"
)

// SARIFFormatter renders a RunSummary as a SARIF v2.1.0 log so gate
// failures can be uploaded to code-scanning dashboards.
// Every gate becomes a rule; every failed gate becomes a result.
type SARIFFormatter struct {
	// Budget is the character budget for each result message.
	Budget int
}

// NewSARIFFormatter creates a SARIFFormatter with the default output budget.
func NewSARIFFormatter() *SARIFFormatter {
	return &SARIFFormatter{Budget: truncate.DefaultBudget}
}

// Build assembles the SARIF report.
func (f *SARIFFormatter) Build(summary RunSummary) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("creating SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	for _, o := range summary.Results {
		run.AddRule(o.Name).WithDescription(fmt.Sprintf("Gate %q", o.Name))

		if !o.Failed() {
			continue
		}
		level := "error"
		if !o.Blocking {
			level = "warning"
		}
		msg := fmt.Sprintf("Gate '%s' failed (exit %s):\n%s", o.Name, o.ExitCode, truncate.Streams(o.Stdout, o.Stderr, f.Budget))
		run.CreateResultForRule(o.Name).
			WithLevel(level).
			WithMessage(sarif.NewTextMessage(msg))
	}

	report.AddRun(run)
	return report, nil
}

// Format returns the SARIF report as indented JSON.
func (f *SARIFFormatter) Format(summary RunSummary) string {
	report, err := f.Build(summary)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	var buf bytes.Buffer
	if err := report.PrettyWrite(&buf); err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return buf.String()
}
