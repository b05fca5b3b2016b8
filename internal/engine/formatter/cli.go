package formatter

import (
	"fmt"
	"strings"

	"github.com/irahardianto/stopgate/internal/engine/truncate"
)

// ANSI color codes.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

// Status glyphs.
const (
	GlyphPass    = "✅"
	GlyphFail    = "❌"
	GlyphSkip    = "⏭️"
	GlyphWarning = "⚠️"
)

// CLIFormatter renders a RunSummary as console text.
// Color only adds escape codes; glyphs and wording are the same without it.
type CLIFormatter struct {
	Color   bool
	Verbose bool
	// Budget is the character budget for failure output in verbose mode.
	Budget int
}

// NewCLIFormatter creates a new CLIFormatter with the default output budget.
func NewCLIFormatter(color, verbose bool) *CLIFormatter {
	return &CLIFormatter{Color: color, Verbose: verbose, Budget: truncate.DefaultBudget}
}

// Format returns the console report: one line per gate, an optional
// warnings line, and the overall verdict.
func (f *CLIFormatter) Format(summary RunSummary) string {
	var b strings.Builder

	for _, o := range summary.Results {
		fmt.Fprintf(&b, "%s %s %s\n",
			f.glyph(o),
			f.colorize(o.Name, ansiBold),
			f.colorize(detail(o), ansiDim))

		if f.Verbose && o.Failed() {
			for _, line := range strings.Split(truncate.Streams(o.Stdout, o.Stderr, f.Budget), "\n") {
				fmt.Fprintf(&b, "    %s\n", f.colorize(line, ansiDim))
			}
		}
	}

	if len(summary.Warnings) > 0 {
		fmt.Fprintf(&b, "%s %s\n",
			GlyphWarning,
			f.colorize("warnings: "+strings.Join(summary.Warnings, ", "), ansiYellow))
	}

	if summary.Passed {
		fmt.Fprintf(&b, "%s\n", f.colorize("stopgate: passed", ansiGreen))
	} else {
		fmt.Fprintf(&b, "%s\n", f.colorize("stopgate: failed", ansiRed))
	}

	return b.String()
}

// detail returns the parenthetical part of a gate line.
func detail(o GateOutcome) string {
	switch {
	case o.Skipped:
		return fmt.Sprintf("(skipped, %dms)", o.DurationMs)
	case !o.Passed:
		code := "none"
		if c, ok := o.ExitCode.Value(); ok {
			code = fmt.Sprint(c)
		}
		return fmt.Sprintf("(exit %s, %dms)", code, o.DurationMs)
	default:
		return fmt.Sprintf("(%dms)", o.DurationMs)
	}
}

func (f *CLIFormatter) glyph(o GateOutcome) string {
	switch {
	case o.Skipped:
		return GlyphSkip
	case o.Passed:
		return f.colorize(GlyphPass, ansiGreen)
	default:
		return f.colorize(GlyphFail, ansiRed)
	}
}

func (f *CLIFormatter) colorize(s, code string) string {
	if !f.Color {
		return s
	}
	return code + s + ansiReset
}
