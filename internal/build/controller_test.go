package build

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 20 * time.Millisecond

func TestControllerCoalescesBurst(t *testing.T) {
	var builds atomic.Int64
	c := NewController(testDelay, func() error {
		builds.Add(1)
		return nil
	}, nil)

	for i := 0; i < 10; i++ {
		c.Schedule()
		time.Sleep(2 * time.Millisecond)
	}
	c.WaitForIdle()

	assert.Equal(t, int64(1), builds.Load(), "a burst within the debounce window is one build")
	assert.Equal(t, StateIdle, c.State())
}

func TestControllerQueuesExactlyOneFollowUp(t *testing.T) {
	var builds atomic.Int64
	started := make(chan struct{}, 2)
	release := make(chan struct{})

	c := NewController(time.Millisecond, func() error {
		builds.Add(1)
		started <- struct{}{}
		<-release
		return nil
	}, nil)

	c.Schedule()
	<-started

	// Many notifications mid-build still queue only one more build.
	c.Schedule()
	c.Schedule()
	c.Schedule()
	assert.Equal(t, StateBuildQueued, c.State())

	release <- struct{}{}
	<-started
	release <- struct{}{}
	c.WaitForIdle()

	assert.Equal(t, int64(2), builds.Load())
}

func TestControllerQueuedBuildSkipsDebounce(t *testing.T) {
	var stamps []time.Time
	started := make(chan struct{}, 2)
	release := make(chan struct{})

	c := NewController(50*time.Millisecond, func() error {
		stamps = append(stamps, time.Now())
		started <- struct{}{}
		<-release
		return nil
	}, nil)

	c.Schedule()
	<-started
	c.Schedule()
	release <- struct{}{}
	finished := time.Now()
	<-started
	release <- struct{}{}
	c.WaitForIdle()

	require.Len(t, stamps, 2)
	assert.Less(t, stamps[1].Sub(finished), 50*time.Millisecond,
		"the queued build starts immediately, without a fresh debounce window")
}

func TestControllerWaitForIdleImmediate(t *testing.T) {
	c := NewController(testDelay, func() error { return nil }, nil)

	done := make(chan struct{})
	go func() {
		c.WaitForIdle()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForIdle must return immediately on an idle controller")
	}
}

func TestControllerWaitForIdleBlocksDuringBuild(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewController(time.Millisecond, func() error {
		close(started)
		<-release
		return nil
	}, nil)

	c.Schedule()
	<-started

	done := make(chan struct{})
	go func() {
		c.WaitForIdle()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitForIdle returned while a build was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForIdle did not return after the build finished")
	}
}

func TestControllerReportsBuildError(t *testing.T) {
	wantErr := errors.New("index write failed")
	var got error
	c := NewController(time.Millisecond, func() error { return wantErr }, func(err error) { got = err })

	c.Schedule()
	c.WaitForIdle()

	assert.Equal(t, wantErr, got)
	assert.Equal(t, StateIdle, c.State(), "a failed build returns the controller to idle")
}

func TestControllerRecoversFromPanic(t *testing.T) {
	var builds atomic.Int64
	var got error
	c := NewController(time.Millisecond, func() error {
		if builds.Add(1) == 1 {
			panic("boom")
		}
		return nil
	}, func(err error) { got = err })

	c.Schedule()
	c.WaitForIdle()
	require.Error(t, got)
	assert.Contains(t, got.Error(), "panicked")

	// The state machine survives and schedules further builds.
	c.Schedule()
	c.WaitForIdle()
	assert.Equal(t, int64(2), builds.Load())
}

func TestControllerStopCancelsPendingBuild(t *testing.T) {
	var builds atomic.Int64
	c := NewController(testDelay, func() error {
		builds.Add(1)
		return nil
	}, nil)

	c.Schedule()
	c.Stop()
	c.WaitForIdle()
	time.Sleep(2 * testDelay)

	assert.Equal(t, int64(0), builds.Load())
}

func TestControllerScheduleAfterStopIsNoOp(t *testing.T) {
	var builds atomic.Int64
	c := NewController(time.Millisecond, func() error {
		builds.Add(1)
		return nil
	}, nil)

	c.Stop()
	c.Schedule()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, int64(0), builds.Load())
	assert.Equal(t, StateIdle, c.State())
}
