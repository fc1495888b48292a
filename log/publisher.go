package log

import (
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is the number of entries a [Subscription] holds before
// the oldest is dropped.
const DefaultBufferSize = 64

// Publisher is an [io.Writer] that hands every write to its subscribers as a
// separate entry. Slow subscribers lose their oldest entries instead of
// blocking the writer, so it is safe to put behind a log handler. Safe for
// concurrent use.
//
// Create instances with [NewPublisher].
type Publisher struct {
	subs    map[*Subscription]struct{}
	bufSize int
	mu      sync.Mutex
	closed  bool
}

// PublisherOption configures a [Publisher].
type PublisherOption func(*Publisher)

// WithBufferSize sets the buffer size of new subscriptions. Values below 1
// are raised to 1.
func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		p.bufSize = max(n, 1)
	}
}

// NewPublisher creates a [Publisher] with [DefaultBufferSize] unless
// overridden.
func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{
		subs:    make(map[*Subscription]struct{}),
		bufSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Write delivers a copy of b to every open subscription and always returns
// len(b), nil. Subscriptions closed since the last call are dropped and their
// channels closed.
func (p *Publisher) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return len(b), nil
	}

	entry := append([]byte(nil), b...)

	for sub := range p.subs {
		if sub.closed.Load() {
			delete(p.subs, sub)
			close(sub.ch)

			continue
		}

		sub.offer(entry)
	}

	return len(b), nil
}

// Subscribe registers a new [Subscription]. Subscribing to a closed
// Publisher yields an already closed channel.
func (p *Publisher) Subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &Subscription{ch: make(chan []byte, p.bufSize)}
	if p.closed {
		close(sub.ch)

		return sub
	}

	p.subs[sub] = struct{}{}

	return sub
}

// Close closes every subscription channel. Later writes are discarded.
// Calling Close more than once is fine.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	for sub := range p.subs {
		close(sub.ch)
	}

	clear(p.subs)

	return nil
}

// Subscription receives entries from a [Publisher].
type Subscription struct {
	ch     chan []byte
	closed atomic.Bool
}

// C returns the channel entries arrive on. It is closed once the
// subscription or the publisher is closed. Entries must not be modified.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Close stops delivery. The channel is closed by the publisher's next Write
// or Close; entries already buffered can still be read. Calling Close more
// than once is fine.
func (s *Subscription) Close() {
	s.closed.Store(true)
}

// offer sends entry, dropping the oldest buffered entry if the channel is
// full. Callers hold the publisher lock, so only receivers race with it.
func (s *Subscription) offer(entry []byte) {
	for {
		select {
		case s.ch <- entry:
			return
		default:
		}

		select {
		case <-s.ch:
		default:
		}
	}
}
