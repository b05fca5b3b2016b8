package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/platform/logger"
)

// FileStore keeps the last run as an indented JSON file at Path.
// Each Save replaces the previous record.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save writes summary to a temp file next to Path and renames it into
// place, so readers never observe a partial record.
func (s *FileStore) Save(ctx context.Context, summary *formatter.RunSummary) error {
	log := logger.FromContext(ctx)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling run %s: %w", summary.RunID, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing run %s: %w", summary.RunID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.Path, err)
	}

	log.Debug("run saved", "run_id", summary.RunID, "path", s.Path)
	return nil
}

// Load reads the last recorded run. It returns ErrNoRun if nothing has
// been saved at Path.
func (s *FileStore) Load(ctx context.Context) (*formatter.RunSummary, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRun
		}
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}

	var summary formatter.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	summary.Relink()

	logger.FromContext(ctx).Debug("run loaded", "run_id", summary.RunID, "path", s.Path)
	return &summary, nil
}
