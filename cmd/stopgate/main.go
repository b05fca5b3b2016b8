// Package main is the entry point for the stopgate CLI binary.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/irahardianto/stopgate/cmd/stopgate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if !errors.Is(err, commands.ErrGatesFailed) {
			fmt.Fprintf(os.Stderr, "stopgate: %v\n", err)
		}
		os.Exit(1)
	}
}
