package notifications

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WriterNotifier prints notices as single lines, for terminal use.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier writes notices to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (p *WriterNotifier) Notify(_ context.Context, n Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefix := "•"
	switch n.Severity {
	case SeveritySuccess:
		prefix = "✓"
	case SeverityError:
		prefix = "✗"
	}
	fmt.Fprintf(p.w, "%s %s\n", prefix, n.Message)
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Dispatcher persists notices and fans them out to live subscribers, such as
// open browser tabs.
type Dispatcher struct {
	store *Store
	sinks []Notifier

	mu     sync.Mutex
	subs   map[int]chan Notice
	nextID int
}

// NewDispatcher creates a Dispatcher. store may be nil; sinks receive every
// notice after it is stored.
func NewDispatcher(store *Store, sinks ...Notifier) *Dispatcher {
	return &Dispatcher{store: store, sinks: sinks, subs: make(map[int]chan Notice)}
}

// Notify stores n and delivers it. Storage failures are logged; the notice
// is still delivered.
func (d *Dispatcher) Notify(ctx context.Context, n Notice) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if d.store != nil {
		if err := d.store.Create(ctx, n); err != nil {
			log.Printf("notifications: storing notice: %v", err)
		}
	}
	for _, s := range d.sinks {
		s.Notify(ctx, n)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Subscribe returns a channel of future notices. Notices are dropped for a
// subscriber whose buffer is full.
func (d *Dispatcher) Subscribe() (<-chan Notice, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	ch := make(chan Notice, 16)
	d.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.subs, id)
			close(ch)
		})
	}
}

// Store returns the backing store, which may be nil.
func (d *Dispatcher) Store() *Store { return d.store }
