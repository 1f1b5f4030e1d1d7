// Package mediamux provides the top-level API for evaluating CSS media
// queries against a live environment or a described device.
// It re-exports core types for convenience, so users can write:
//
//	vp := environment.NewViewport(mediamux.Device{"width": 1024})
//	h, err := mediamux.New("(min-width: 768px)", nil, false, mediamux.WithEnvironment(vp))
//	h.AddListener(mediamux.ListenerFunc(func(ev mediamux.Event) { ... }))
//	defer h.Dispose()
package mediamux

import (
	"github.com/miladsoleymani/mediamux/core"
)

// Re-export core types at the package level for ergonomic usage.
type (
	Event        = core.Event
	Listener     = core.Listener
	Middleware   = core.Middleware
	Environment  = core.Environment
	Subscription = core.Subscription
	Device       = core.Device
	Handle       = core.Handle
	Settings     = core.Settings
	Tracker      = core.Tracker
	Option       = core.Option
	Mode         = core.Mode
)

const (
	ModeStatic = core.ModeStatic
	ModeLive   = core.ModeLive
)

var (
	WithEnvironment   = core.WithEnvironment
	WithMatcher       = core.WithMatcher
	WithLogger        = core.WithLogger
	WithMiddleware    = core.WithMiddleware
	WithDefaultDevice = core.WithDefaultDevice

	ErrInvalidQuery = core.ErrInvalidQuery
)

// New creates a Handle for query. See core.New for how the evaluation mode
// is chosen.
func New(query string, device Device, forceStatic bool, opts ...Option) (*Handle, error) {
	return core.New(query, device, forceStatic, opts...)
}

// Track keeps a boolean in sync with settings. See core.Track.
func Track(settings Settings, device map[string]any, onChange func(bool), opts ...Option) (*Tracker, error) {
	return core.Track(settings, device, onChange, opts...)
}

// ListenerFunc wraps fn in a Listener that can later be removed.
func ListenerFunc(fn func(Event)) *core.FuncListener {
	return core.ListenerFunc(fn)
}

// Match reports whether query matches device without creating a handle.
func Match(query string, device Device) (bool, error) {
	return core.StaticMatch(query, device)
}
