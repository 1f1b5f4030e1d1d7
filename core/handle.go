package core

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Handle.
type State int

const (
	StateActive State = iota
	StateDisposed
)

func (s State) String() string {
	if s == StateDisposed {
		return "disposed"
	}
	return "active"
}

// Handle is one subscription to a query's match state over time.
//
// A static handle is evaluated once and never changes. A live handle
// follows its Environment: every change event updates Matches and Media
// and is delivered to the listeners registered when the event arrived, in
// registration order. Listeners added or removed while an event is being
// delivered take effect from the next event.
//
// Live handles hold an environment registration until Dispose is called.
type Handle struct {
	id       uuid.UUID
	mode     Mode
	dispatch DispatchFunc
	log      zerolog.Logger

	mu        sync.Mutex
	matches   bool
	media     string
	state     State
	seen      bool
	listeners []Listener
	sub       Subscription
}

// New creates a Handle for query. A non-empty device or forceStatic selects
// static evaluation; otherwise the environment given with WithEnvironment,
// if any, is watched.
//
//	h, err := core.New("(min-width: 768px)", nil, false, core.WithEnvironment(vp))
//	if err != nil {
//	    return err
//	}
//	defer h.Dispose()
func New(query string, device Device, forceStatic bool, opts ...Option) (*Handle, error) {
	o := resolve(opts)
	h := &Handle{
		id:       uuid.New(),
		dispatch: applyMiddleware(deliver, o.middleware),
	}
	h.log = o.log.With().Str("handle", h.id.String()).Logger()

	res, err := evaluate(query, device, forceStatic, h.onHostChange, &o, h.log)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.mode = res.Mode
	h.sub = res.Sub
	// An event may already have arrived while Watch was returning.
	if !h.seen {
		h.matches = res.Matches
		h.media = res.Media
	}
	h.mu.Unlock()
	return h, nil
}

// ID identifies the handle in logs.
func (h *Handle) ID() uuid.UUID { return h.id }

// Mode reports whether the handle is live or static.
func (h *Handle) Mode() Mode { return h.mode }

// Matches reports the current match state.
func (h *Handle) Matches() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.matches
}

// Media returns the query the current state refers to.
func (h *Handle) Media() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.media
}

// Disposed reports whether Dispose has been called.
func (h *Handle) Disposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == StateDisposed
}

// ListenerCount returns the number of registered listeners.
func (h *Handle) ListenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// AddListener appends l. The same listener may be added more than once and
// is then called once per registration.
func (h *Handle) AddListener(l Listener) {
	if l == nil {
		return
	}
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
}

// RemoveListener removes the first registration of l. Unknown listeners
// are ignored.
func (h *Handle) RemoveListener(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.listeners {
		if sameListener(existing, l) {
			h.listeners = append(h.listeners[:i:i], h.listeners[i+1:]...)
			return
		}
	}
}

// Dispose releases the environment registration of a live handle. It is
// safe to call more than once.
func (h *Handle) Dispose() {
	h.mu.Lock()
	if h.state == StateDisposed {
		h.mu.Unlock()
		return
	}
	h.state = StateDisposed
	sub := h.sub
	h.sub = nil
	h.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	h.log.Debug().Str("mode", h.mode.String()).Msg("handle disposed")
}

// onHostChange is registered with the environment of live handles.
// Listener panics are not recovered here; they unwind into the
// environment's dispatch.
func (h *Handle) onHostChange(ev Event) {
	h.mu.Lock()
	if h.state == StateDisposed {
		h.mu.Unlock()
		return
	}
	h.matches = ev.Matches
	h.media = ev.Media
	h.seen = true
	listeners := make([]Listener, len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.Unlock()

	for _, l := range listeners {
		h.dispatch(l, ev)
	}
}

// sameListener compares by identity without panicking on dynamic types
// that are not comparable.
func sameListener(a, b Listener) bool {
	return sameValue(a, b)
}
