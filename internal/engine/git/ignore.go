package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/irahardianto/stopgate/internal/platform/logger"
)

// EnsureIgnored adds entry to <root>/.gitignore. Lines equal to entry, with
// or without a leading slash, count as already present.
func (s *ExecService) EnsureIgnored(ctx context.Context, entry string) (bool, error) {
	log := logger.FromContext(ctx)

	root, err := s.Root(ctx)
	if err != nil {
		return false, err
	}
	path := filepath.Join(root, ".gitignore")

	data, err := os.ReadFile(path) // #nosec G304 -- path is the repository's own .gitignore
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("reading .gitignore: %w", err)
	}

	if hasIgnoreLine(string(data), entry) {
		log.Debug(".gitignore already covers entry", "entry", entry)
		return false, nil
	}

	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(entry)
	b.WriteByte('\n')

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil { // #nosec G306 -- .gitignore is a tracked, world-readable file
		return false, fmt.Errorf("writing .gitignore: %w", err)
	}

	log.Info("added entry to .gitignore", "entry", entry, "path", path)
	return true, nil
}

func hasIgnoreLine(content, entry string) bool {
	want := strings.TrimPrefix(strings.TrimSpace(entry), "/")
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.TrimPrefix(line, "/") == want {
			return true
		}
	}
	return false
}
