package build

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State is the controller lifecycle. It is owned exclusively by the
// controller and never persisted.
type State string

const (
	StateIdle        State = "idle"
	StateBuilding    State = "building"
	StateBuildQueued State = "build_queued"
)

// Controller coalesces bursts of change notifications into a minimal
// sequence of builds: a fixed-delay debounce while idle, single-flight
// execution, and at most one queued follow-up build no matter how many
// notifications arrive mid-build. A failing build is reported through the
// error callback and never stops the state machine.
type Controller struct {
	delay   time.Duration
	build   func() error
	onError func(error)

	mu      sync.Mutex
	state   State
	timer   *time.Timer
	waiters []chan struct{}
	stopped bool
}

// NewController creates an idle controller. onError may be nil.
func NewController(delay time.Duration, buildFn func() error, onError func(error)) *Controller {
	return &Controller{
		delay:   delay,
		build:   buildFn,
		onError: onError,
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Schedule requests a build. While idle it (re)starts the debounce timer,
// so only the last request of a burst triggers a build. While building it
// queues exactly one follow-up; further requests are no-ops.
func (c *Controller) Schedule() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	switch c.state {
	case StateBuilding:
		c.state = StateBuildQueued
	case StateBuildQueued:
		// At most one extra build is ever queued.
	default:
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = time.AfterFunc(c.delay, c.fire)
	}
}

// fire runs when the debounce window elapses with no further requests.
func (c *Controller) fire() {
	c.mu.Lock()
	c.timer = nil
	if c.stopped || c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateBuilding
	c.mu.Unlock()

	for {
		if err := c.runBuild(); err != nil {
			if c.onError != nil {
				c.onError(err)
			} else {
				slog.Error("build failed", "error", err)
			}
		}

		c.mu.Lock()
		if c.state == StateBuildQueued {
			// A change arrived mid-build; run again without a fresh debounce.
			c.state = StateBuilding
			c.mu.Unlock()
			continue
		}
		c.state = StateIdle
		c.notifyIdleLocked()
		c.mu.Unlock()
		return
	}
}

// runBuild invokes the build function, converting a panic into an error so
// the scheduler survives whatever the build does.
func (c *Controller) runBuild() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build panicked: %v", r)
		}
	}()
	return c.build()
}

// WaitForIdle blocks until the state machine is idle with no pending
// debounce timer. It returns immediately when already idle.
func (c *Controller) WaitForIdle() {
	c.mu.Lock()
	if c.state == StateIdle && c.timer == nil {
		c.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	<-ch
}

// Stop cancels any pending debounce timer and refuses further schedules.
// An in-flight build runs to completion; there is no mid-build cancellation.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.state == StateIdle {
		c.notifyIdleLocked()
	}
}

func (c *Controller) notifyIdleLocked() {
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
}
