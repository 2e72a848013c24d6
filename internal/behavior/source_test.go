package behavior

import (
	"context"
	"testing"
	"time"
)

func TestPushSource_DeliversInOrder(t *testing.T) {
	src := NewPushSource(4)
	ch, err := src.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	src.Push(Observation{PersonPresent: true})
	src.Push(Observation{PersonPresent: false})

	first := <-ch
	second := <-ch
	if !first.PersonPresent || second.PersonPresent {
		t.Error("observations delivered out of order")
	}
}

func TestPushSource_StartTwice(t *testing.T) {
	src := NewPushSource(1)
	if _, err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := src.Start(context.Background()); err == nil {
		t.Error("second Start() = nil error, want failure")
	}
}

func TestPushSource_DropsWhenFull(t *testing.T) {
	src := NewPushSource(1)

	if !src.Push(Observation{}) {
		t.Error("first Push = false, want buffered")
	}
	if src.Push(Observation{}) {
		t.Error("second Push = true, want dropped with a full buffer")
	}
}

func TestPushSource_StopIsIdempotent(t *testing.T) {
	src := NewPushSource(1)
	ch, err := src.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := src.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := src.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}

	if src.Push(Observation{}) {
		t.Error("Push after Stop = true, want dropped")
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open after Stop")
	}
}

func TestPushSource_ContextCancelClosesChannel(t *testing.T) {
	src := NewPushSource(1)
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := src.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("got an observation, want a closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Error("channel not closed after context cancel")
	}
}
