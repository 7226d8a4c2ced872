// internal/countdown/countdown_test.go
package countdown

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	ticks chan int
	done  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ticks: make(chan int, 16), done: make(chan struct{}, 4)}
}

func (r *recorder) tick(n int) { r.ticks <- n }
func (r *recorder) fin()       { r.done <- struct{}{} }

func (r *recorder) nextTick(t *testing.T) int {
	t.Helper()
	select {
	case n := <-r.ticks:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
	}
	return -1
}

// advance waits for the countdown's timer to be armed, then moves the clock one step.
func advance(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(Step)
}

func TestCountsDownToDone(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock)
	rec := newRecorder()

	c.Start(3, rec.tick, rec.fin)
	assert.True(t, c.Active())
	assert.Equal(t, 3, rec.nextTick(t))

	advance(t, clock)
	assert.Equal(t, 2, rec.nextTick(t))
	advance(t, clock)
	assert.Equal(t, 1, rec.nextTick(t))
	advance(t, clock)

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("done never called")
	}
	assert.False(t, c.Active())
	assert.Empty(t, rec.ticks)
}

func TestStopCancelsWithoutDone(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock)
	rec := newRecorder()

	c.Start(2, rec.tick, rec.fin)
	assert.Equal(t, 2, rec.nextTick(t))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	c.Stop()
	assert.False(t, c.Active())

	clock.Advance(5 * Step)
	select {
	case <-rec.done:
		t.Fatal("done called after Stop")
	case n := <-rec.ticks:
		t.Fatalf("tick %d after Stop", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRestartReplacesRunningCountdown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock)
	first := newRecorder()
	second := newRecorder()

	c.Start(3, first.tick, first.fin)
	assert.Equal(t, 3, first.nextTick(t))
	advance(t, clock)
	assert.Equal(t, 2, first.nextTick(t))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	c.Start(1, second.tick, second.fin)
	assert.Equal(t, 1, second.nextTick(t))
	advance(t, clock)

	select {
	case <-second.done:
	case <-time.After(2 * time.Second):
		t.Fatal("second countdown never finished")
	}
	assert.Empty(t, first.done)
	assert.Empty(t, first.ticks)
}

func TestZeroStartFinishesImmediately(t *testing.T) {
	c := New(clockwork.NewFakeClock())
	rec := newRecorder()
	c.Start(0, rec.tick, rec.fin)
	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("done never called")
	}
	assert.Empty(t, rec.ticks)
	assert.False(t, c.Active())
}

// TestStartDoesNotRunCallbacksOnCaller blocks the first tick and checks
// Start still returns.
func TestStartDoesNotRunCallbacksOnCaller(t *testing.T) {
	c := New(clockwork.NewFakeClock())
	release := make(chan struct{})
	entered := make(chan int, 1)

	returned := make(chan struct{})
	go func() {
		c.Start(3, func(n int) {
			entered <- n
			<-release
		}, nil)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Start blocked on its tick callback")
	}
	assert.Equal(t, 3, <-entered)
	close(release)
	c.Stop()
}
