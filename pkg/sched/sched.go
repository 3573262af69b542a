// Package sched runs a function on a fixed interval until stopped. The host
// process uses it to drive periodic maintenance (archiving inactive users)
// without the domain layer knowing about timers.
package sched

import (
	"context"
	"time"
)

// Runner invokes its hook every interval. Stop is safe to call once.
type Runner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Every starts a Runner calling fn every interval with a context that is
// cancelled when the Runner stops. The first call happens after one full
// interval, not immediately. fn runs on a single goroutine; a slow hook
// delays the next tick rather than piling up.
func Every(interval time.Duration, fn func(context.Context)) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
	return r
}

// Stop cancels the hook context and waits for the loop to exit.
func (r *Runner) Stop() {
	r.cancel()
	<-r.done
}
