package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blackcoderx/callisto/pkg/storage"
)

var (
	// ErrNoObservers is returned by Publish when nothing is attached.
	ErrNoObservers = errors.New("no observers attached")
	// ErrNotifierClosed is returned by Publish after Close.
	ErrNotifierClosed = errors.New("notifier closed")
)

// Broadcaster fans events out to channel subscribers and callbacks. Each
// observer receives its own copy of the document. Channel sends never
// block; an event for a full subscriber is dropped and reported.
type Broadcaster struct {
	mu        sync.RWMutex
	nextID    int
	subs      map[int]chan Event
	callbacks map[int]EventCallback
	closed    bool
}

// NewBroadcaster creates a Broadcaster with no observers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs:      make(map[int]chan Event),
		callbacks: make(map[int]EventCallback),
	}
}

// Subscribe attaches a channel observer with the given buffer size. The
// returned function detaches it and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// OnEvent registers a callback invoked synchronously on every Publish. The
// returned function unregisters it.
func (b *Broadcaster) OnEvent(cb EventCallback) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.callbacks[id] = cb
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.callbacks, id)
	}
}

// Publish delivers doc to every observer.
func (b *Broadcaster) Publish(event string, doc *storage.Document) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrNotifierClosed
	}
	if len(b.subs) == 0 && len(b.callbacks) == 0 {
		b.mu.RUnlock()
		return ErrNoObservers
	}

	dropped := 0
	for _, ch := range b.subs {
		select {
		case ch <- Event{Name: event, Document: doc.Clone()}:
		default:
			dropped++
		}
	}
	callbacks := make([]EventCallback, 0, len(b.callbacks))
	for _, cb := range b.callbacks {
		callbacks = append(callbacks, cb)
	}
	total := len(b.subs) + len(callbacks)
	b.mu.RUnlock()

	for _, cb := range callbacks {
		cb(Event{Name: event, Document: doc.Clone()})
	}

	if dropped > 0 {
		return fmt.Errorf("%s dropped for %d of %d subscribers", event, dropped, total)
	}
	return nil
}

// Close detaches all observers and closes their channels. Later Publish
// calls fail with ErrNotifierClosed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	for id := range b.callbacks {
		delete(b.callbacks, id)
	}
}
