// Package countdown runs the waiting-room start countdown. At most one
// countdown is live at a time; starting another cancels the first.
package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// Step is the interval between ticks.
const Step = time.Second

// Countdown ticks once per Step from a starting value down to zero.
type Countdown struct {
	clock clockwork.Clock

	mu    sync.Mutex
	gen   uint64
	timer clockwork.Timer
	stop  chan struct{}
}

// New creates a countdown driven by clock.
func New(clock clockwork.Clock) *Countdown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Countdown{clock: clock}
}

// Start cancels any running countdown and begins a new one. tick(n) is
// called for n = from .. 1, one Step apart, starting at once; done() follows
// one Step after tick(1). A from of zero or less calls only done.
// Callbacks run on the countdown's own goroutine, never the caller's, and
// may block.
func (c *Countdown) Start(from int, tick func(remaining int), done func()) {
	c.mu.Lock()
	c.cancelLocked()
	c.gen++
	gen := c.gen
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go c.run(gen, stop, from, tick, done)
}

func (c *Countdown) run(gen uint64, stop <-chan struct{}, remaining int, tick func(int), done func()) {
	for ; remaining > 0; remaining-- {
		if !c.current(gen) {
			return
		}
		if tick != nil {
			tick(remaining)
		}

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		timer := c.clock.NewTimer(Step)
		c.timer = timer
		c.mu.Unlock()

		select {
		case <-timer.Chan():
		case <-stop:
			return
		}
	}
	c.finish(gen, done)
}

func (c *Countdown) finish(gen uint64, done func()) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.stop = nil
	c.mu.Unlock()

	log.Debugf("Countdown: finished.")
	if done != nil {
		done()
	}
}

func (c *Countdown) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

// Stop cancels the running countdown, if any. done is not called.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		log.Debugf("Countdown: cancelled.")
	}
	c.cancelLocked()
	c.gen++
}

// Active reports whether a countdown is running.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// cancelLocked stops the live timer and wakes its goroutine.
// Assumes lock is held by caller.
func (c *Countdown) cancelLocked() {
	if c.timer != nil {
		stopAndDrainTimer(c.timer)
		c.timer = nil
	}
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
