// Package gate defines gate specifications and runs a single gate as a
// shell child process.
package gate

import (
	"errors"
	"fmt"

	"github.com/irahardianto/stopgate/internal/engine/formatter"
)

// Spec is one resolved gate, ready to run. It is never modified after
// construction.
type Spec struct {
	Name     string
	Command  string
	Order    int
	Blocking bool
}

// Stream identifies which output stream a chunk came from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Sink receives progress events while a run is in flight.
// Events are fire-and-forget: a Sink cannot influence outcomes, and panics
// inside a Sink are recovered by the caller.
// OnOutput may be called concurrently for the two streams of one gate.
type Sink interface {
	OnStart(name string)
	OnOutput(name string, stream Stream, chunk []byte)
	OnComplete(outcome formatter.GateOutcome)
}

// Validate checks the specs against the contract the engine relies on:
// every gate has a name and a command, and names are unique.
func Validate(specs []Spec) error {
	var errs []error
	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("gate at index %d has no name", i))
			continue
		}
		if s.Command == "" {
			errs = append(errs, fmt.Errorf("gate %q has no command", s.Name))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("gate %q is defined more than once", s.Name))
		}
		seen[s.Name] = true
	}
	return errors.Join(errs...)
}
