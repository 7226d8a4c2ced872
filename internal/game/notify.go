// internal/game/notify.go
package game

import (
	"sync"
	"time"
)

// Notification is one user-facing line of game narration.
type Notification struct {
	Seq  uint64
	At   time.Time
	Text string
}

// Notifier receives notifications as the game produces them.
type Notifier interface {
	Notify(n Notification)
}

// DefaultQueueSize bounds a NotificationQueue created with size <= 0.
const DefaultQueueSize = 64

// NotificationQueue is a bounded in-memory Notifier. When full, the oldest
// entry is dropped.
type NotificationQueue struct {
	mu      sync.Mutex
	items   []Notification
	size    int
	dropped int
	signal  chan struct{}
}

// NewNotificationQueue creates a queue holding at most size entries.
func NewNotificationQueue(size int) *NotificationQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &NotificationQueue{size: size, signal: make(chan struct{}, 1)}
}

// Notify appends n, evicting the oldest entry if the queue is full.
func (q *NotificationQueue) Notify(n Notification) {
	q.mu.Lock()
	if len(q.items) == q.size {
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, n)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Drain returns and clears everything queued so far.
func (q *NotificationQueue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Dropped returns how many notifications were evicted unread.
func (q *NotificationQueue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Ready is signalled after Notify; consumers Drain on receipt.
func (q *NotificationQueue) Ready() <-chan struct{} { return q.signal }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
