package behavior

import (
	"context"
	"errors"
	"sync"
)

// FrameSource feeds observations to an Engine. Start returns a channel that
// closes when the source stops or the context ends; the engine tolerates a
// silent source indefinitely. Stop must be idempotent and safe to call
// concurrently with a producer still pushing.
type FrameSource interface {
	Start(ctx context.Context) (<-chan Observation, error)
	Stop() error
}

// PushSource is the production FrameSource: a transport (the live websocket
// handler) pushes observations as they arrive off the wire. Pushes never
// block; when the consumer falls behind, frames drop. Debounce math uses
// wall-clock deltas rather than frame counts, so dropped frames do not
// stretch or shrink violation timing.
type PushSource struct {
	mu      sync.Mutex
	ch      chan Observation
	started bool
	stopped bool
}

func NewPushSource(buffer int) *PushSource {
	return &PushSource{ch: make(chan Observation, buffer)}
}

func (s *PushSource) Start(ctx context.Context) (<-chan Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, errors.New("push source already stopped")
	}
	if s.started {
		return nil, errors.New("push source already started")
	}
	s.started = true

	// Unblock any producer once the consumer's context ends.
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.ch, nil
}

// Push hands one observation to the consumer. It reports false when the
// observation was dropped, either because the source is stopped or the
// buffer is full.
func (s *PushSource) Push(obs Observation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	select {
	case s.ch <- obs:
		return true
	default:
		return false
	}
}

func (s *PushSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.ch)
	return nil
}
