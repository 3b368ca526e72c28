package resilience

import (
	"context"
	"fmt"
	"sync"
)

// SingleFlight deduplicates concurrent calls for the same key, e.g. several
// teams asking for the same day's lineup page at once.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	done chan struct{}
	val  any
	err  error
}

func (g *SingleFlight) start(key string, fn func() (any, error)) (*call, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call)
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		return c, true
	}

	c := &call{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.val, c.err = nil, fmt.Errorf("singleflight %q panicked: %v", key, r)
			}
			g.mu.Lock()
			delete(g.calls, key)
			g.mu.Unlock()
			close(c.done)
		}()
		c.val, c.err = fn()
	}()
	return c, false
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	c, shared := g.start(key, fn)
	<-c.done
	return c.val, c.err, shared
}

// DoContext behaves like Do but lets the caller stop waiting when ctx is
// done. The in-flight call keeps running for the other waiters.
func (g *SingleFlight) DoContext(ctx context.Context, key string, fn func() (any, error)) (any, error, bool) {
	c, shared := g.start(key, fn)
	select {
	case <-c.done:
		return c.val, c.err, shared
	case <-ctx.Done():
		return nil, ctx.Err(), shared
	}
}
