// Package truncate shortens captured command output to a fixed character
// budget, keeping the head (where the first error usually is) and the tail
// (where the final summary usually is).
//
// Budgets and counts are in Unicode code points so multi-byte output is
// never cut in the middle of a character.
package truncate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultBudget is the character budget used when none is configured.
const DefaultBudget = 4000

// NoOutput is returned instead of an empty string when nothing was captured.
const NoOutput = "(no output captured)"

// The head gets headPercent of the budget, the tail the rest.
const headPercent = 60

// Section labels used by Streams.
const (
	StderrLabel = "stderr:"
	StdoutLabel = "stdout:"
)

// Truncate returns s with trailing whitespace trimmed, shortened to at most
// budget characters plus an omission marker. Whitespace-only input yields "".
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	n := utf8.RuneCountInString(s)
	if n <= budget {
		return s
	}

	head := budget * headPercent / 100
	if head < 1 {
		head = 1
	}
	tail := budget - head

	runes := []rune(s)
	omitted := n - head - tail
	return string(runes[:head]) + Marker(omitted) + string(runes[n-tail:])
}

// Marker is the line inserted between head and tail.
func Marker(omitted int) string {
	return fmt.Sprintf("\n...<%d chars omitted>...\n", omitted)
}

// Stream is Truncate for text that ends up in user-facing messages:
// empty output becomes NoOutput so the message is never blank.
func Stream(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	out := Truncate(s, budget)
	if out == "" {
		return NoOutput
	}
	return out
}

// Streams renders stdout and stderr together within one budget.
// stderr is shown first. When both are present each gets half the budget
// and unused budget flows to the stream with more untruncated content left.
func Streams(stdout, stderr string, budget int) string {
	if budget <= 0 {
		return ""
	}
	stdout = strings.TrimRightFunc(stdout, unicode.IsSpace)
	stderr = strings.TrimRightFunc(stderr, unicode.IsSpace)

	switch {
	case stdout == "" && stderr == "":
		return NoOutput
	case stdout == "":
		return section(StderrLabel, Truncate(stderr, budget))
	case stderr == "":
		return section(StdoutLabel, Truncate(stdout, budget))
	}

	outShare, errShare := split(utf8.RuneCountInString(stdout), utf8.RuneCountInString(stderr), budget)

	// A budget of 1 leaves nothing for stdout; drop its section entirely.
	if outShare == 0 {
		return section(StderrLabel, Truncate(stderr, errShare))
	}
	return section(StderrLabel, Truncate(stderr, errShare)) + "\n\n" +
		section(StdoutLabel, Truncate(stdout, outShare))
}

// split divides budget between two streams of the given lengths.
func split(outLen, errLen, budget int) (outShare, errShare int) {
	half := budget / 2
	outShare = min(outLen, half)
	errShare = min(errLen, budget-half)

	unused := budget - outShare - errShare
	outRemain := outLen - outShare
	errRemain := errLen - errShare
	if unused <= 0 || outRemain+errRemain == 0 {
		return outShare, errShare
	}

	outExtra := unused * outRemain / (outRemain + errRemain)
	outExtra = min(outExtra, outRemain)
	errExtra := min(unused-outExtra, errRemain)
	return outShare + outExtra, errShare + errExtra
}

func section(label, body string) string {
	return label + "\n" + body
}
