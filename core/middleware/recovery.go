package middleware

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/miladsoleymani/mediamux/core"
)

// Recovery returns middleware that recovers panics raised by listeners,
// logs them with a stack trace and keeps delivering to the remaining
// listeners. Without it, a listener panic unwinds into the environment.
func Recovery(log zerolog.Logger) core.Middleware {
	return func(next core.DispatchFunc) core.DispatchFunc {
		return func(l core.Listener, ev core.Event) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)
					log.Error().
						Str("media", ev.Media).
						Str("listener", listenerName(l)).
						Str("panic", fmt.Sprint(r)).
						Bytes("stack", buf[:n]).
						Msg("listener panic recovered")
				}
			}()
			next(l, ev)
		}
	}
}

func listenerName(l core.Listener) string {
	return fmt.Sprintf("%T", l)
}
