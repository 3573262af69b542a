package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestEveryInvokesHook(t *testing.T) {
	fired := make(chan struct{}, 1)
	r := Every(10*time.Millisecond, func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	defer r.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("hook never fired")
	}
}

func TestStopHaltsTicks(t *testing.T) {
	var calls atomic.Int64
	r := Every(5*time.Millisecond, func(ctx context.Context) {
		calls.Add(1)
	})
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("hook kept firing after Stop: %d -> %d", after, calls.Load())
	}
}

func TestStopCancelsHookContext(t *testing.T) {
	got := make(chan context.Context, 1)
	r := Every(5*time.Millisecond, func(ctx context.Context) {
		select {
		case got <- ctx:
		default:
		}
	})
	var ctx context.Context
	select {
	case ctx = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("hook never fired")
	}
	r.Stop()
	if ctx.Err() == nil {
		t.Fatal("hook context not cancelled by Stop")
	}
}
