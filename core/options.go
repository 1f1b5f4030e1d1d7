package core

import (
	"github.com/rs/zerolog"

	"github.com/miladsoleymani/mediamux/internal/logger"
)

// Option configures a Handle or Tracker.
type Option func(*options)

type options struct {
	env           Environment
	matcher       StaticMatcher
	log           *zerolog.Logger
	middleware    []Middleware
	defaultDevice Device
}

func defaults() options {
	return options{
		matcher: DefaultMatcher{},
	}
}

func resolve(fns []Option) options {
	o := defaults()
	for _, fn := range fns {
		fn(&o)
	}
	if o.log == nil {
		o.log = logger.Get()
	}
	return o
}

// WithEnvironment injects the live environment. Without one, every handle
// evaluates statically.
func WithEnvironment(env Environment) Option {
	return func(o *options) { o.env = env }
}

// WithMatcher replaces the static matcher used when no live environment applies.
func WithMatcher(m StaticMatcher) Option {
	return func(o *options) {
		if m != nil {
			o.matcher = m
		}
	}
}

// WithLogger sets the logger used for mode selection and lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}

// WithMiddleware wraps listener dispatch. Middleware is applied in
// registration order: the first one given runs outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mws...) }
}

// WithDefaultDevice sets the device a Tracker falls back to when it is
// given none, like a device supplied by surrounding context.
func WithDefaultDevice(d Device) Option {
	return func(o *options) { o.defaultDevice = d }
}
