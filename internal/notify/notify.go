package notify

import (
	"sync"
	"time"
)

// Level classifies a notice for rendering.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Notice is a transient, user-visible message (a toast).
type Notice struct {
	Level Level
	Text  string
	At    time.Time
}

// Publisher is implemented by anything that accepts notices.
type Publisher interface {
	Publish(n Notice)
}

// Bus fans notices out to subscribers synchronously, in subscription order.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
	now    func() time.Time
}

type subscriber struct {
	id int
	fn func(Notice)
}

var _ Publisher = (*Bus)(nil)

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{now: time.Now}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Notice)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers n to every subscriber. Subscribers are snapshotted before
// delivery so a subscriber may unsubscribe from inside its callback.
func (b *Bus) Publish(n Notice) {
	b.mu.Lock()
	if n.At.IsZero() {
		n.At = b.now()
	}
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(n)
	}
}

// Info publishes an informational notice. A nil publisher is a no-op.
func Info(p Publisher, text string) {
	if p != nil {
		p.Publish(Notice{Level: LevelInfo, Text: text})
	}
}

// Warn publishes a warning notice.
func Warn(p Publisher, text string) {
	if p != nil {
		p.Publish(Notice{Level: LevelWarn, Text: text})
	}
}

// Error publishes an error notice.
func Error(p Publisher, text string) {
	if p != nil {
		p.Publish(Notice{Level: LevelError, Text: text})
	}
}

// Discard is a Publisher that drops every notice.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Notice) {}
