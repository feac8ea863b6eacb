package dumpinfo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// DefaultRingSize is the number of log records kept when NewRing is given
// a non-positive capacity.
const DefaultRingSize = 100

// ringStore is the line buffer shared by all handlers derived from one
// NewRing call.
type ringStore struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// Ring is a slog.Handler keeping the most recent records in a fixed-size
// buffer while forwarding them to an optional inner handler. A fault
// handler drains it with a non-blocking try-lock, so a logger mid-write
// can never deadlock the crash path.
type Ring struct {
	store  *ringStore
	inner  slog.Handler
	attrs  []slog.Attr
	groups []string
}

// NewRing creates a ring handler. inner may be nil when the ring is the
// only destination.
func NewRing(inner slog.Handler, capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &Ring{
		store: &ringStore{lines: make([]string, capacity)},
		inner: inner,
	}
}

// Enabled defers to the inner handler; a bare ring records everything.
func (r *Ring) Enabled(ctx context.Context, level slog.Level) bool {
	if r.inner != nil {
		return r.inner.Enabled(ctx, level)
	}
	return true
}

// Handle renders the record into the ring and forwards it.
func (r *Ring) Handle(ctx context.Context, rec slog.Record) error {
	line := fmt.Sprintf("%s %s %s", rec.Time.Format("15:04:05.000"), rec.Level.String(), rec.Message)
	for _, attr := range r.attrs {
		line += r.formatAttr(attr)
	}
	rec.Attrs(func(a slog.Attr) bool {
		line += r.formatAttr(a)
		return true
	})

	r.store.mu.Lock()
	r.store.lines[r.store.next] = line
	r.store.next = (r.store.next + 1) % len(r.store.lines)
	if r.store.next == 0 {
		r.store.full = true
	}
	r.store.mu.Unlock()

	if r.inner != nil {
		return r.inner.Handle(ctx, rec)
	}
	return nil
}

// WithAttrs returns a handler sharing the same buffer.
func (r *Ring) WithAttrs(attrs []slog.Attr) slog.Handler {
	inner := r.inner
	if inner != nil {
		inner = inner.WithAttrs(attrs)
	}
	merged := make([]slog.Attr, len(r.attrs)+len(attrs))
	copy(merged, r.attrs)
	copy(merged[len(r.attrs):], attrs)
	return &Ring{store: r.store, inner: inner, attrs: merged, groups: r.groups}
}

// WithGroup returns a handler sharing the same buffer.
func (r *Ring) WithGroup(name string) slog.Handler {
	inner := r.inner
	if inner != nil {
		inner = inner.WithGroup(name)
	}
	return &Ring{store: r.store, inner: inner, attrs: r.attrs, groups: append(r.groups, name)}
}

// writeTo renders the buffered records oldest first. It never blocks: if
// a logger holds the buffer at fault time the section degrades to a note.
func (r *Ring) writeTo(w io.Writer) error {
	if !r.store.mu.TryLock() {
		_, err := io.WriteString(w, "Log buffer busy, recent log unavailable.\n")
		return err
	}
	defer r.store.mu.Unlock()

	start, count := 0, r.store.next
	if r.store.full {
		start, count = r.store.next, len(r.store.lines)
	}
	if count == 0 {
		_, err := io.WriteString(w, "No log records captured.\n")
		return err
	}
	for i := 0; i < count; i++ {
		line := r.store.lines[(start+i)%len(r.store.lines)]
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (r *Ring) formatAttr(a slog.Attr) string {
	if a.Value.Kind() == slog.KindGroup {
		var result string
		for _, attr := range a.Value.Group() {
			result += r.formatAttr(attr)
		}
		return result
	}
	key := a.Key
	for i := len(r.groups) - 1; i >= 0; i-- {
		key = r.groups[i] + "." + key
	}
	return fmt.Sprintf(" %s=%v", key, a.Value.Any())
}
