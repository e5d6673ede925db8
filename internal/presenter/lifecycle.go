package presenter

import (
	"context"
	"sync"
)

// Phase is where a screen is in its load lifecycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
	PhaseClosed  Phase = "closed"
)

var closedDone = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// loadTask is the cancellable handle of one in-flight load.
type loadTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// lifecycle carries the once-per-lifetime load guard shared by the screens.
// mu also guards the embedding presenter's state.
type lifecycle struct {
	mu     sync.Mutex
	phase  Phase
	closed bool
	task   *loadTask
}

// startLocked moves an idle screen to loading and returns the context for the
// load. ok is false when the screen already loaded, is loading, failed or was
// closed. The load context keeps parent's values but not its cancellation:
// only Close cancels it. Callers hold mu.
func (l *lifecycle) startLocked(parent context.Context) (ctx context.Context, task *loadTask, ok bool) {
	if l.closed || l.phase != PhaseIdle {
		return nil, nil, false
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	l.task = &loadTask{cancel: cancel, done: make(chan struct{})}
	l.phase = PhaseLoading
	return ctx, l.task, true
}

// settledLocked reports whether a finished load may still write state.
// Callers hold mu.
func (l *lifecycle) settledLocked(ctx context.Context) bool {
	return !l.closed && ctx.Err() == nil
}

// Done returns a channel closed once the current load settles. It is already
// closed when no load was started.
func (l *lifecycle) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.task == nil {
		return closedDone
	}
	return l.task.done
}

// Close tears the screen down: an in-flight load is cancelled and its result
// is dropped. The phase becomes closed and the rest of the state is frozen.
// Close is idempotent.
func (l *lifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	l.phase = PhaseClosed
	if l.task != nil {
		l.task.cancel()
	}
}

// Closed reports whether Close was called.
func (l *lifecycle) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func finish(task *loadTask) {
	task.cancel()
	close(task.done)
}
