// Package activebook holds the single book the user is currently working on
// and broadcasts changes to interested views.
package activebook

import (
	"sync"

	"github.com/ziadkadry99/dynbook/internal/models"
)

// Holder is a publish/subscribe slot for the active book. The zero value is
// ready to use. The last Set wins.
type Holder struct {
	mu     sync.RWMutex
	book   *models.Book
	subs   map[int]chan *models.Book
	nextID int
}

// New returns a Holder optionally seeded with a book.
func New(initial *models.Book) *Holder {
	return &Holder{book: initial}
}

// Get returns the active book, or nil when none is set.
func (h *Holder) Get() *models.Book {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.book
}

// ID returns the active book id, or "" when none is set.
func (h *Holder) ID() string {
	if b := h.Get(); b != nil {
		return b.ID
	}
	return ""
}

// Set replaces the active book and notifies subscribers. A nil book clears it.
func (h *Holder) Set(book *models.Book) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.book = book
	for _, ch := range h.subs {
		offer(ch, book)
	}
}

// Subscribe returns a channel that first yields the current value and then
// every later one. Pending values a slow reader has not consumed are replaced
// by the newest. The returned cancel func closes the channel and may be
// called more than once.
func (h *Holder) Subscribe() (<-chan *models.Book, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]chan *models.Book)
	}
	id := h.nextID
	h.nextID++

	ch := make(chan *models.Book, 1)
	ch <- h.book
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// offer delivers book without blocking, dropping a stale pending value.
// Callers hold h.mu.
func offer(ch chan *models.Book, book *models.Book) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- book:
	default:
	}
}
