package middleware

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/miladsoleymani/mediamux/core"
)

// Logging returns middleware that logs every delivered change with its
// dispatch duration.
func Logging(log zerolog.Logger) core.Middleware {
	return func(next core.DispatchFunc) core.DispatchFunc {
		return func(l core.Listener, ev core.Event) {
			start := time.Now()
			next(l, ev)
			log.Debug().
				Str("media", ev.Media).
				Bool("matches", ev.Matches).
				Str("listener", listenerName(l)).
				Dur("elapsed", time.Since(start)).
				Msg("media change delivered")
		}
	}
}
