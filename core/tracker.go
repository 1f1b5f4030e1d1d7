package core

import (
	"sync"
)

// Tracker keeps a boolean in sync with a query whose settings and device
// may change over time. It owns one Handle at a time and replaces it when
// the query string or the device changes by value.
//
// onChange is called with the new value whenever it flips after Track
// returns. It is never called for the initial value.
type Tracker struct {
	opts          []Option
	defaultDevice Device
	onChange      func(bool)

	mu       sync.Mutex
	query    string
	device   Device
	handle   *Handle
	listener *FuncListener
	matches  bool
	closed   bool
}

// Track starts tracking settings. device takes precedence over the device
// given with WithDefaultDevice; keys may be camelCase. When a device is
// present the query is evaluated statically against it.
func Track(settings Settings, device map[string]any, onChange func(bool), opts ...Option) (*Tracker, error) {
	o := defaults()
	for _, fn := range opts {
		fn(&o)
	}

	t := &Tracker{
		opts:          opts,
		defaultDevice: HyphenateKeys(o.defaultDevice),
		onChange:      onChange,
	}

	query, dev, err := t.resolve(settings, device)
	if err != nil {
		return nil, err
	}
	h, err := New(query, dev, !dev.Empty(), opts...)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.attach(h, query, dev)
	t.matches = h.Matches()
	t.mu.Unlock()
	return t, nil
}

// Matches returns the tracked value.
func (t *Tracker) Matches() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.matches
}

// Query returns the query currently tracked.
func (t *Tracker) Query() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query
}

// Handle returns the current handle. It changes after Update.
func (t *Tracker) Handle() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

// Update re-targets the tracker. The handle is rebuilt only when the
// resulting query or device differs from the current one; on error the
// current handle is kept.
func (t *Tracker) Update(settings Settings, device map[string]any) error {
	query, dev, err := t.resolve(settings, device)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.closed || (query == t.query && dev.Equal(t.device)) {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	h, err := New(query, dev, !dev.Empty(), t.opts...)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		h.Dispose()
		return nil
	}
	old, oldListener := t.handle, t.listener
	t.attach(h, query, dev)
	t.mu.Unlock()

	old.RemoveListener(oldListener)
	old.Dispose()

	t.set(h, h.Matches())
	return nil
}

// Close disposes the current handle. Further updates are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	h, l := t.handle, t.listener
	t.mu.Unlock()

	h.RemoveListener(l)
	h.Dispose()
}

func (t *Tracker) resolve(settings Settings, device map[string]any) (string, Device, error) {
	query := settings.MediaQuery()
	if query == "" {
		return "", nil, ErrInvalidQuery
	}
	dev := HyphenateKeys(device)
	if dev.Empty() {
		dev = t.defaultDevice
	}
	return query, dev, nil
}

// attach must be called with t.mu held.
func (t *Tracker) attach(h *Handle, query string, dev Device) {
	l := ListenerFunc(func(Event) {
		t.set(h, h.Matches())
	})
	h.AddListener(l)
	t.handle, t.listener = h, l
	t.query, t.device = query, dev.Clone()
}

// set records a new value from h and reports flips, ignoring stale handles.
func (t *Tracker) set(h *Handle, matches bool) {
	t.mu.Lock()
	if h != t.handle || t.closed || matches == t.matches {
		t.mu.Unlock()
		return
	}
	t.matches = matches
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil {
		fn(matches)
	}
}
