package core

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Mode is fixed when a handle is constructed.
type Mode int

const (
	// ModeStatic handles are evaluated once against a device and never change.
	ModeStatic Mode = iota
	// ModeLive handles follow the state of a live Environment.
	ModeLive
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	default:
		return "static"
	}
}

// SelectMode applies the precedence rule for choosing how a query is
// evaluated: an explicit device wins, then forceStatic, then the presence
// of a live environment. Everything else is static against an empty device.
func SelectMode(device Device, forceStatic bool, env Environment) Mode {
	switch {
	case !device.Empty():
		return ModeStatic
	case forceStatic:
		return ModeStatic
	case env != nil:
		return ModeLive
	default:
		return ModeStatic
	}
}

// Result is the outcome of evaluating a query.
type Result struct {
	Matches bool
	Media   string
	Mode    Mode
	// Sub is the live registration; nil for static results.
	Sub Subscription
}

// Evaluate computes whether query matches. In live mode onChange is
// registered with the environment and the returned Result carries the
// subscription, which the caller must cancel.
func Evaluate(query string, device Device, forceStatic bool, onChange func(Event), opts ...Option) (Result, error) {
	o := resolve(opts)
	return evaluate(query, device, forceStatic, onChange, &o, *o.log)
}

func evaluate(query string, device Device, forceStatic bool, onChange func(Event), o *options, log zerolog.Logger) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, ErrInvalidQuery
	}

	if SelectMode(device, forceStatic, o.env) == ModeLive {
		if onChange == nil {
			onChange = func(Event) {}
		}
		ev, sub, err := o.env.Watch(query, onChange)
		if err == nil {
			log.Debug().Str("query", query).Str("mode", ModeLive.String()).Msg("watching live environment")
			return Result{Matches: ev.Matches, Media: ev.Media, Mode: ModeLive, Sub: sub}, nil
		}
		if sub != nil {
			sub.Cancel()
		}
		log.Warn().Err(err).Str("query", query).Msg("live environment refused query, falling back to static evaluation")
	}

	ok, err := o.matcher.Match(query, device)
	if err != nil {
		return Result{}, fmt.Errorf("mediamux: evaluate %q: %w", query, err)
	}
	log.Debug().Str("query", query).Str("mode", ModeStatic.String()).Bool("matches", ok).Msg("evaluated statically")
	return Result{Matches: ok, Media: query, Mode: ModeStatic}, nil
}
