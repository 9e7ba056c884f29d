// Package dialog brokers file-picker calls between the backend and the
// surface that actually shows the picker (the webview, or a native
// shim). Each call is a single oneshot hand-off: the caller blocks on a
// per-request channel until the presenter posts a result, the context
// is cancelled, or the request times out.
package dialog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nicheknack/lifespeed/internal/apperr"
)

// Dialog kinds.
const (
	KindOpen   = "open"
	KindSave   = "save"
	KindFolder = "folder"
)

// Filter restricts an open or save dialog to certain file extensions.
type Filter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// Request describes one pending dialog to the presenter.
type Request struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Title       string   `json:"title,omitempty"`
	DefaultName string   `json:"default_name,omitempty"`
	Filters     []Filter `json:"filters,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
}

// Result is the presenter's reply. Cancelled means the user dismissed
// the dialog; Paths carries the picked path(s) otherwise.
type Result struct {
	Paths     []string `json:"paths"`
	Cancelled bool     `json:"cancelled"`
}

// Announcer is notified of every new pending request.
type Announcer func(Request)

// Broker tracks pending dialog requests.
type Broker struct {
	announce Announcer
	timeout  time.Duration

	mu      sync.Mutex
	pending map[string]chan Result
	closed  bool
}

// NewBroker creates a broker. announce is called (synchronously) for
// every new request; timeout bounds how long a call waits for a reply.
func NewBroker(announce Announcer, timeout time.Duration) *Broker {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Broker{
		announce: announce,
		timeout:  timeout,
		pending:  make(map[string]chan Result),
	}
}

// Present registers req, announces it, and blocks until it is resolved.
// The zero-ID request is assigned a fresh ID. Exactly one of the reply,
// cancellation, or timeout wins; the request is deregistered either way.
func (b *Broker) Present(ctx context.Context, req Request) (Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ch := make(chan Result, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Result{}, fmt.Errorf("dialog: present: %w", apperr.ErrClosed)
	}
	b.pending[req.ID] = ch
	b.mu.Unlock()

	defer b.drop(req.ID)

	if b.announce != nil {
		b.announce(req)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return Result{}, fmt.Errorf("dialog: present: %w", apperr.ErrCancelled)
	case <-timer.C:
		return Result{}, fmt.Errorf("dialog: present: %w", apperr.ErrTimeout)
	}
}

// Resolve delivers the presenter's result for a pending request. A
// request resolves at most once; an unknown or already-resolved ID
// returns ErrNotFound.
func (b *Broker) Resolve(id string, res Result) error {
	b.mu.Lock()
	ch, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("dialog: resolve %s: %w", id, apperr.ErrNotFound)
	}
	ch <- res
	return nil
}

// PendingCount returns the number of unresolved requests.
func (b *Broker) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Close rejects future Present calls. Outstanding calls finish via
// their own timeout or cancellation.
func (b *Broker) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

func (b *Broker) drop(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}
