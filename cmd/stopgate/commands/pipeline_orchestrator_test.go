package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/irahardianto/stopgate/internal/engine/config"
	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/engine/gate"
	"github.com/irahardianto/stopgate/internal/engine/runner"
)

// --- Mock implementations ---

type mockGateRunner struct {
	summary *formatter.RunSummary
	err     error

	gates []gate.Spec
	opts  runner.RunOptions
	ec    gate.ExecContext
	sink  gate.Sink
}

func (m *mockGateRunner) factory(ec gate.ExecContext, sink gate.Sink) GateRunner {
	m.ec = ec
	m.sink = sink
	return m
}

func (m *mockGateRunner) RunAll(_ context.Context, gates []gate.Spec, opts runner.RunOptions) (*formatter.RunSummary, error) {
	m.gates = gates
	m.opts = opts
	return m.summary, m.err
}

type mockStore struct {
	saved   *formatter.RunSummary
	saveErr error
}

func (m *mockStore) Save(_ context.Context, s *formatter.RunSummary) error {
	m.saved = s
	return m.saveErr
}

func (m *mockStore) Load(_ context.Context) (*formatter.RunSummary, error) {
	return m.saved, nil
}

// memFS is an in-memory config.FileSystem.
type memFS struct {
	files    map[string][]byte
	dirs     map[string]bool
	writeErr error
	statErr  error
}

func newMemFS() *memFS {
	return &memFS{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (m *memFS) ReadFile(name string) ([]byte, error) {
	if data, ok := m.files[name]; ok {
		return data, nil
	}
	return nil, fs.ErrNotExist
}

func (m *memFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.files[name] = data
	return nil
}

func (m *memFS) MkdirAll(path string, _ fs.FileMode) error {
	m.dirs[path] = true
	return nil
}

func (m *memFS) UserHomeDir() (string, error) { return "/home/test", nil }

func (m *memFS) Stat(name string) (fs.FileInfo, error) {
	if m.statErr != nil {
		return nil, m.statErr
	}
	if _, ok := m.files[name]; ok {
		return nil, nil
	}
	return nil, fs.ErrNotExist
}

func (m *memFS) IsNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }

// --- Helpers ---

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func defaultConfig() *config.StopgateConfig {
	return &config.StopgateConfig{
		Version: 1,
		Gates: []config.Gate{
			{Name: "test", Command: "make test", Order: intPtr(20)},
			{Name: "lint", Command: "make lint", Order: intPtr(10)},
			{Name: "audit", Command: "make audit", Order: intPtr(30), Blocking: boolPtr(false)},
		},
	}
}

func passingSummary() *formatter.RunSummary {
	return &formatter.RunSummary{
		RunID:  "run-pass",
		Passed: true,
		Results: []formatter.GateOutcome{
			{Name: "lint", Passed: true, ExitCode: formatter.Exited(0), Blocking: true},
			{Name: "test", Passed: true, ExitCode: formatter.Exited(0), Blocking: true},
			{Name: "audit", Passed: false, ExitCode: formatter.Exited(1), Blocking: false},
		},
		Warnings: []string{"audit"},
	}
}

func failingSummary() *formatter.RunSummary {
	s := &formatter.RunSummary{
		RunID:  "run-fail",
		Passed: false,
		Results: []formatter.GateOutcome{
			{Name: "lint", Passed: false, ExitCode: formatter.Exited(2), Stderr: "lint: 3 problems\n", Blocking: true},
			formatter.Skip("test", true),
			{Name: "audit", Passed: true, ExitCode: formatter.Exited(0), Blocking: false},
		},
		Warnings: []string{},
	}
	s.FirstFailure = &s.Results[0]
	return s
}

func newTestPipeline(r *mockGateRunner, cfg *config.StopgateConfig) (*Pipeline, *mockStore, *memFS, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	store := &mockStore{}
	fsys := newMemFS()
	p := &Pipeline{
		LoadConfig: func(_ context.Context, _ string) (*config.StopgateConfig, error) {
			return cfg, nil
		},
		GlobalConfig: &config.GlobalConfig{OutputColor: true},
		ExecContext: func(shell string, stream bool) (gate.ExecContext, error) {
			return gate.ExecContext{Shell: shell, Dir: "/project", Stream: stream}, nil
		},
		NewRunner:  r.factory,
		Store:      store,
		FS:         fsys,
		ConfigPath: "/project/.stopgate/gates.yaml",
		Stdout:     stdout,
		Stderr:     stderr,
		IsTerminal: func(io.Writer) bool { return false },
	}
	return p, store, fsys, stdout, stderr
}

// --- Tests ---

func TestPipeline_PassWithWarnings(t *testing.T) {
	r := &mockGateRunner{summary: passingSummary()}
	p, store, _, stdout, stderr := newTestPipeline(r, defaultConfig())

	summary, err := p.Execute(context.Background(), PipelineOpts{Decision: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.Passed {
		t.Error("expected passing summary")
	}

	var names []string
	for _, g := range r.gates {
		names = append(names, g.Name)
	}
	if strings.Join(names, ",") != "lint,test,audit" {
		t.Errorf("gates passed to runner = %v, want sorted order", names)
	}
	if !r.opts.FailFast {
		t.Error("fail-fast should default to on")
	}
	if store.saved != summary {
		t.Error("expected summary to be persisted")
	}

	if got := strings.TrimSpace(stdout.String()); got != `{"warnings":["audit"]}` {
		t.Errorf("decision = %s", got)
	}
	assertContains(t, stderr.String(), "stopgate: passed")
	assertContains(t, stderr.String(), "warnings: audit")
}

func TestPipeline_BlockingFailure(t *testing.T) {
	r := &mockGateRunner{summary: failingSummary()}
	p, _, _, stdout, stderr := newTestPipeline(r, defaultConfig())

	if _, err := p.Execute(context.Background(), PipelineOpts{Decision: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var d formatter.Decision
	if err := json.Unmarshal(stdout.Bytes(), &d); err != nil {
		t.Fatalf("decision is not JSON: %v (%q)", err, stdout.String())
	}
	if !d.Blocked() {
		t.Error("expected block decision")
	}
	if d.Reason != "Gate 'lint' failed (exit 2):\nlint: 3 problems" {
		t.Errorf("reason = %q", d.Reason)
	}
	assertContains(t, stderr.String(), "stopgate: failed")
	if strings.Contains(stderr.String(), "\x1b[") {
		t.Error("expected no color when stderr is not a terminal")
	}
}

func TestPipeline_CheckModeWritesNothingToStdout(t *testing.T) {
	r := &mockGateRunner{summary: failingSummary()}
	p, _, _, stdout, _ := newTestPipeline(r, defaultConfig())

	summary, err := p.Execute(context.Background(), PipelineOpts{Decision: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Passed {
		t.Error("expected failing summary")
	}
	if stdout.Len() != 0 {
		t.Errorf("expected empty stdout, got %q", stdout.String())
	}
}

func TestPipeline_Options(t *testing.T) {
	r := &mockGateRunner{summary: passingSummary()}
	p, _, _, _, _ := newTestPipeline(r, defaultConfig())
	p.GlobalConfig.Shell = "/bin/zsh"

	_, err := p.Execute(context.Background(), PipelineOpts{NoFailFast: true, Stream: true, Skip: []string{"audit"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.opts.FailFast {
		t.Error("--no-fail-fast should disable fail-fast")
	}
	if len(r.gates) != 2 {
		t.Errorf("expected audit to be skipped, got %v", r.gates)
	}
	if r.ec.Shell != "/bin/zsh" || !r.ec.Stream {
		t.Errorf("exec context = %+v", r.ec)
	}
	if r.sink == nil {
		t.Error("expected a progress sink")
	}
}

func TestPipeline_ConfigFailFastOff(t *testing.T) {
	cfg := defaultConfig()
	cfg.Defaults.FailFast = boolPtr(false)
	r := &mockGateRunner{summary: passingSummary()}
	p, _, _, _, _ := newTestPipeline(r, cfg)

	if _, err := p.Execute(context.Background(), PipelineOpts{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.opts.FailFast {
		t.Error("expected fail-fast off from config")
	}
}

func TestPipeline_OutputBudget(t *testing.T) {
	s := failingSummary()
	s.Results[0].Stderr = strings.Repeat("x", 500)
	cfg := defaultConfig()
	cfg.Defaults.OutputLimit = 100

	r := &mockGateRunner{summary: s}
	p, _, _, stdout, _ := newTestPipeline(r, cfg)
	if _, err := p.Execute(context.Background(), PipelineOpts{Decision: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, stdout.String(), "400 chars omitted")

	stdout.Reset()
	p.GlobalConfig.OutputLimit = 200
	if _, err := p.Execute(context.Background(), PipelineOpts{Decision: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, stdout.String(), "300 chars omitted")
}

func TestPipeline_ConfigLoadError(t *testing.T) {
	r := &mockGateRunner{}
	p, _, _, stdout, _ := newTestPipeline(r, nil)
	p.LoadConfig = func(_ context.Context, _ string) (*config.StopgateConfig, error) {
		return nil, config.ErrConfigNotFound
	}

	_, err := p.Execute(context.Background(), PipelineOpts{Decision: true})
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Error("no decision may be printed when the run could not start")
	}
}

func TestPipeline_InvalidGateList(t *testing.T) {
	cfg := &config.StopgateConfig{Gates: []config.Gate{{Name: "lint"}}}
	r := &mockGateRunner{summary: passingSummary()}
	p, _, _, _, _ := newTestPipeline(r, cfg)

	if _, err := p.Execute(context.Background(), PipelineOpts{}); err == nil {
		t.Fatal("expected validation error")
	}
	if r.gates != nil {
		t.Error("runner must not be called for an invalid gate list")
	}
}

func TestPipeline_GlobalConfigNil(t *testing.T) {
	r := &mockGateRunner{summary: passingSummary()}
	p, _, _, _, _ := newTestPipeline(r, defaultConfig())
	p.GlobalConfig = nil

	if _, err := p.Execute(context.Background(), PipelineOpts{}); err == nil {
		t.Fatal("expected error for nil global config")
	}
}

func TestPipeline_ExecContextError(t *testing.T) {
	r := &mockGateRunner{summary: passingSummary()}
	p, _, _, _, _ := newTestPipeline(r, defaultConfig())
	p.ExecContext = func(string, bool) (gate.ExecContext, error) {
		return gate.ExecContext{}, os.ErrPermission
	}

	if _, err := p.Execute(context.Background(), PipelineOpts{}); !errors.Is(err, os.ErrPermission) {
		t.Errorf("expected wrapped ErrPermission, got %v", err)
	}
}

func TestPipeline_RunnerError(t *testing.T) {
	r := &mockGateRunner{err: errors.New("invalid gate list")}
	p, store, _, _, _ := newTestPipeline(r, defaultConfig())

	if _, err := p.Execute(context.Background(), PipelineOpts{}); err == nil {
		t.Fatal("expected runner error")
	}
	if store.saved != nil {
		t.Error("nothing should be persisted when the run fails to start")
	}
}

func TestPipeline_SaveErrorDoesNotHideDecision(t *testing.T) {
	r := &mockGateRunner{summary: failingSummary()}
	p, store, _, stdout, _ := newTestPipeline(r, defaultConfig())
	store.saveErr = errors.New("disk full")

	if _, err := p.Execute(context.Background(), PipelineOpts{Decision: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, stdout.String(), `"decision":"block"`)
}

func TestPipeline_SaveErrorFailsWhenRecordRequired(t *testing.T) {
	r := &mockGateRunner{summary: passingSummary()}
	p, store, _, _, stderr := newTestPipeline(r, defaultConfig())
	store.saveErr = errors.New("disk full")

	summary, err := p.Execute(context.Background(), PipelineOpts{RequireRecord: true})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected persist error, got %v", err)
	}
	if summary == nil || !summary.Passed {
		t.Errorf("expected the run summary alongside the error, got %+v", summary)
	}
	assertContains(t, stderr.String(), "stopgate: passed")
}

func TestPipeline_SARIFReport(t *testing.T) {
	r := &mockGateRunner{summary: failingSummary()}
	p, _, fsys, _, _ := newTestPipeline(r, defaultConfig())

	if _, err := p.Execute(context.Background(), PipelineOpts{SARIFPath: "/project/stopgate.sarif"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, ok := fsys.files["/project/stopgate.sarif"]
	if !ok {
		t.Fatal("expected SARIF report to be written")
	}
	assertContains(t, string(data), `"version": "2.1.0"`)
	assertContains(t, string(data), "Gate 'lint' failed")
}

func TestPipeline_SARIFWriteError(t *testing.T) {
	r := &mockGateRunner{summary: passingSummary()}
	p, _, fsys, _, _ := newTestPipeline(r, defaultConfig())
	fsys.writeErr = os.ErrPermission

	summary, err := p.Execute(context.Background(), PipelineOpts{SARIFPath: "/ro/out.sarif"})
	if err == nil {
		t.Fatal("expected write error")
	}
	if summary == nil {
		t.Error("summary should still be returned after the run completed")
	}
}

func TestPipeline_ColorOnTerminal(t *testing.T) {
	r := &mockGateRunner{summary: failingSummary()}
	p, _, _, _, stderr := newTestPipeline(r, defaultConfig())
	p.IsTerminal = func(io.Writer) bool { return true }

	if _, err := p.Execute(context.Background(), PipelineOpts{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), "\x1b[") {
		t.Error("expected ANSI color on a terminal")
	}

	stderr.Reset()
	if _, err := p.Execute(context.Background(), PipelineOpts{NoColor: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(stderr.String(), "\x1b[") {
		t.Error("--no-color must disable ANSI color")
	}
}

func TestPipeline_ProgressOnTerminal(t *testing.T) {
	r := &mockGateRunner{summary: passingSummary()}
	p, _, _, _, stderr := newTestPipeline(r, defaultConfig())
	p.IsTerminal = func(io.Writer) bool { return true }

	if _, err := p.Execute(context.Background(), PipelineOpts{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, stderr.String(), "Running 3 gate(s)")
}

func TestPipeline_ReportsSummaryTimestamp(t *testing.T) {
	s := passingSummary()
	s.Timestamp = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := &mockGateRunner{summary: s}
	p, store, _, _, _ := newTestPipeline(r, defaultConfig())

	if _, err := p.Execute(context.Background(), PipelineOpts{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.saved.Timestamp.Equal(s.Timestamp) {
		t.Error("persisted summary must be the runner's summary")
	}
}
