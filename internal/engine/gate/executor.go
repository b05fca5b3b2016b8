package gate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/platform/logger"
)

// ShellExecutor runs a gate command through the shell of its ExecContext.
//
// There is no timeout: the executor waits for the child to exit on its own
// and never kills it. The context passed to Execute only carries the logger.
type ShellExecutor struct {
	ec   ExecContext
	sink Sink
}

// NewShellExecutor creates an executor bound to one run's ExecContext.
// sink may be nil; it only receives output chunks when ec.Stream is set.
func NewShellExecutor(ec ExecContext, sink Sink) *ShellExecutor {
	return &ShellExecutor{ec: ec, sink: sink}
}

// Execute runs spec and classifies the result by exit code alone.
// It never fails: spawn errors and signal deaths become a failing outcome
// with no exit code.
func (e *ShellExecutor) Execute(ctx context.Context, spec Spec) formatter.GateOutcome {
	log := logger.FromContext(ctx)
	log.Info("ShellExecutor.Execute started", "gate", spec.Name, "shell", e.ec.Shell)

	var fwd *forwarder
	if e.sink != nil && e.ec.Stream {
		fwd = newForwarder(func(c outputChunk) {
			Notify(log, "output", func() { e.sink.OnOutput(spec.Name, c.stream, c.data) })
		})
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(e.ec.Shell, shellArgs(e.ec.Shell, spec.Command)...) // #nosec G204 -- running the user's configured gate command is the purpose of this tool
	cmd.Dir = e.ec.Dir
	cmd.Env = e.ec.Env
	cmd.Stdout = &chunkWriter{buf: &stdout, stream: Stdout, fwd: fwd}
	cmd.Stderr = &chunkWriter{buf: &stderr, stream: Stderr, fwd: fwd}

	start := time.Now()
	err := cmd.Start()
	if err == nil {
		// Wait returns only after both copy goroutines have drained their pipes.
		err = cmd.Wait()
	}
	elapsed := time.Since(start)

	// Every chunk reaches the sink before the runner reports OnComplete.
	if fwd != nil {
		fwd.close()
	}

	var state processState
	if cmd.ProcessState != nil {
		state = cmd.ProcessState
	}
	outcome := finalize(spec, state, err, stdout.String(), stderr.String(), elapsed)
	log.Info("ShellExecutor.Execute completed",
		"gate", spec.Name,
		"passed", outcome.Passed,
		"exit_code", outcome.ExitCode.String(),
		"duration_ms", outcome.DurationMs)
	return outcome
}

// finalize is the single point where an outcome is built, for both the
// spawn-failure path (state is nil) and the exit path.
func finalize(spec Spec, state processState, runErr error, stdout, stderr string, elapsed time.Duration) formatter.GateOutcome {
	code := formatter.NoExitCode
	switch {
	case state == nil:
		stderr = appendNote(stderr, fmt.Sprintf("stopgate: could not start gate: %v", runErr))
	case state.Exited():
		code = formatter.Exited(state.ExitCode())
	default:
		stderr = appendNote(stderr, fmt.Sprintf("stopgate: gate terminated abnormally: %s", state.String()))
	}

	return formatter.GateOutcome{
		Name:       spec.Name,
		Passed:     code.IsZero(),
		ExitCode:   code,
		Stdout:     stdout,
		Stderr:     stderr,
		DurationMs: max(elapsed.Milliseconds(), 0),
		Blocking:   spec.Blocking,
	}
}

// processState is the subset of *os.ProcessState used by finalize.
type processState interface {
	Exited() bool
	ExitCode() int
	String() string
}

func appendNote(s, note string) string {
	if s == "" {
		return note
	}
	if s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s + note
}

// chunkWriter buffers one output stream. Chunks are queued for the sink
// rather than delivered inline, so a slow sink never stalls the pipe.
type chunkWriter struct {
	buf    *bytes.Buffer
	stream Stream
	fwd    *forwarder
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	n, _ := w.buf.Write(p)
	if w.fwd != nil {
		w.fwd.push(outputChunk{stream: w.stream, data: append([]byte(nil), p...)})
	}
	return n, nil
}

type outputChunk struct {
	stream Stream
	data   []byte
}

// forwarder delivers queued chunks to the sink from a single goroutine, in
// the order they were captured. The queue is unbounded so push never waits
// on the sink.
type forwarder struct {
	mu     sync.Mutex
	ready  *sync.Cond
	queue  []outputChunk
	closed bool
	done   chan struct{}
}

func newForwarder(deliver func(outputChunk)) *forwarder {
	f := &forwarder{done: make(chan struct{})}
	f.ready = sync.NewCond(&f.mu)
	go f.loop(deliver)
	return f
}

func (f *forwarder) push(c outputChunk) {
	f.mu.Lock()
	f.queue = append(f.queue, c)
	f.mu.Unlock()
	f.ready.Signal()
}

func (f *forwarder) loop(deliver func(outputChunk)) {
	defer close(f.done)
	for {
		f.mu.Lock()
		for len(f.queue) == 0 && !f.closed {
			f.ready.Wait()
		}
		batch := f.queue
		f.queue = nil
		f.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, c := range batch {
			deliver(c)
		}
	}
}

// close waits until every queued chunk has been delivered.
func (f *forwarder) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.ready.Signal()
	<-f.done
}

// Notify invokes a sink callback, recovering and logging any panic so a
// broken sink never affects a run.
func Notify(log *slog.Logger, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("progress sink failed", "event", event, "panic", r)
		}
	}()
	fn()
}
