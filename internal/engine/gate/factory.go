package gate

import (
	"fmt"

	"github.com/irahardianto/stopgate/internal/engine/config"
)

// FromConfig turns a loaded config into the ordered gate list for a run:
// disabled gates are dropped, the rest are stably sorted by order, and
// gates named in skip are removed.
func FromConfig(cfg *config.StopgateConfig, skip []string) ([]Spec, error) {
	skipSet := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipSet[name] = true
	}

	active := cfg.ActiveGates()
	specs := make([]Spec, 0, len(active))
	for _, g := range active {
		if skipSet[g.Name] {
			continue
		}
		specs = append(specs, Create(g))
	}

	if err := Validate(specs); err != nil {
		return nil, fmt.Errorf("building gate list: %w", err)
	}
	return specs, nil
}

// Create builds a Spec from one gate config entry.
func Create(g config.Gate) Spec {
	return Spec{
		Name:     g.Name,
		Command:  g.Command,
		Order:    g.GetOrder(),
		Blocking: g.IsBlocking(),
	}
}
