package environment

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/miladsoleymani/mediamux/core"
	"github.com/miladsoleymani/mediamux/internal/logger"
)

func init() {
	Register("local", func(cfg Config) (Source, error) {
		var extra struct {
			Device map[string]any `mapstructure:"device"`
		}
		if err := cfg.DecodeExtra(&extra); err != nil {
			return nil, err
		}
		return NewViewport(core.HyphenateKeys(extra.Device)), nil
	})
}

// Viewport is an in-process live environment. It holds the current device
// description; Update re-evaluates every watched query and notifies the
// watchers whose match state flipped, in registration order.
//
// Notification passes never overlap: concurrent Updates are serialized, so
// listeners must not call Update or Patch themselves. A listener panic
// unwinds out of Update with the Viewport left consistent.
type Viewport struct {
	matcher core.StaticMatcher
	log     zerolog.Logger

	// dispatchMu serializes notification passes.
	dispatchMu sync.Mutex

	mu       sync.Mutex
	device   core.Device
	watchers []*watcher
	closed   bool
}

// ViewportOption configures a Viewport.
type ViewportOption func(*Viewport)

// WithViewportMatcher replaces the matcher used to evaluate watched queries.
func WithViewportMatcher(m core.StaticMatcher) ViewportOption {
	return func(v *Viewport) { v.matcher = m }
}

// WithViewportLogger sets the viewport logger.
func WithViewportLogger(l zerolog.Logger) ViewportOption {
	return func(v *Viewport) { v.log = l }
}

// NewViewport creates a Viewport showing initial.
func NewViewport(initial core.Device, opts ...ViewportOption) *Viewport {
	v := &Viewport{
		matcher: core.DefaultMatcher{},
		log:     *logger.Get(),
		device:  initial.Clone(),
	}
	for _, fn := range opts {
		fn(v)
	}
	return v
}

type watcher struct {
	vp       *Viewport
	query    string
	fn       func(core.Event)
	matches  bool
	canceled atomic.Bool
}

// Cancel stops notifications for this watcher. Repeated calls are no-ops.
func (w *watcher) Cancel() {
	if w.canceled.CompareAndSwap(false, true) {
		w.vp.remove(w)
	}
}

// Watch implements core.Environment.
func (v *Viewport) Watch(query string, fn func(core.Event)) (core.Event, core.Subscription, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return core.Event{}, nil, core.ErrEnvironmentClosed
	}
	ok, err := v.matcher.Match(query, v.device)
	if err != nil {
		return core.Event{}, nil, err
	}
	w := &watcher{vp: v, query: query, fn: fn, matches: ok}
	v.watchers = append(v.watchers, w)
	return core.Event{Matches: ok, Media: query}, w, nil
}

// Device returns a copy of the current device description.
func (v *Viewport) Device() core.Device {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.device.Clone()
}

// Watchers returns the number of active watchers.
func (v *Viewport) Watchers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.watchers)
}

// Update replaces the device description and notifies changed watchers.
// It returns the number of notifications delivered.
func (v *Viewport) Update(d core.Device) int {
	return v.apply(func(core.Device) core.Device { return d.Clone() })
}

// Patch merges changes into the current device description. A nil value
// removes the feature.
func (v *Viewport) Patch(changes core.Device) int {
	return v.apply(func(cur core.Device) core.Device {
		next := make(core.Device, len(cur)+len(changes))
		for k, val := range cur {
			next[k] = val
		}
		for k, val := range changes {
			if val == nil {
				delete(next, k)
				continue
			}
			next[k] = val
		}
		return next
	})
}

type change struct {
	w  *watcher
	ev core.Event
}

func (v *Viewport) apply(next func(core.Device) core.Device) int {
	v.dispatchMu.Lock()
	defer v.dispatchMu.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return 0
	}
	v.device = next(v.device)
	var changes []change
	for _, w := range v.watchers {
		ok, err := v.matcher.Match(w.query, v.device)
		if err != nil {
			v.log.Warn().Err(err).Str("query", w.query).Msg("cannot re-evaluate watched query")
			continue
		}
		if ok == w.matches {
			continue
		}
		w.matches = ok
		changes = append(changes, change{w: w, ev: core.Event{Matches: ok, Media: w.query}})
	}
	v.mu.Unlock()

	delivered := 0
	for _, c := range changes {
		if c.w.canceled.Load() {
			continue
		}
		c.w.fn(c.ev)
		delivered++
	}
	if delivered > 0 {
		v.log.Debug().Int("notified", delivered).Msg("viewport changed")
	}
	return delivered
}

func (v *Viewport) remove(w *watcher) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.watchers {
		if existing == w {
			v.watchers = append(v.watchers[:i:i], v.watchers[i+1:]...)
			return
		}
	}
}

// Publish applies d directly; a Viewport has no other consumers.
func (v *Viewport) Publish(_ context.Context, d core.Device) error {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return core.ErrEnvironmentClosed
	}
	v.Update(d)
	return nil
}

// Run blocks until ctx is cancelled. Updates arrive through Update,
// Patch and Publish.
func (v *Viewport) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Close cancels every watcher. Later Watch calls fail with
// core.ErrEnvironmentClosed.
func (v *Viewport) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	for _, w := range v.watchers {
		w.canceled.Store(true)
	}
	v.watchers = nil
	return nil
}
