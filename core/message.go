package core

// Event carries the state of a query after a change in its environment.
type Event struct {
	Matches bool   `json:"matches"`
	Media   string `json:"media"`
}

// Listener receives change events from a Handle.
//
// Listeners are registered and removed by identity, so implementations
// should be pointers (or other comparable values).
type Listener interface {
	MediaChanged(ev Event)
}

// FuncListener adapts a plain function to the Listener interface.
// Always use it through the pointer returned by ListenerFunc so that
// RemoveListener can find it again.
type FuncListener struct {
	fn func(Event)
}

// ListenerFunc wraps fn in a Listener with its own identity.
//
//	l := core.ListenerFunc(func(ev core.Event) {
//	    fmt.Println("matches:", ev.Matches)
//	})
//	h.AddListener(l)
//	defer h.RemoveListener(l)
func ListenerFunc(fn func(Event)) *FuncListener {
	return &FuncListener{fn: fn}
}

func (l *FuncListener) MediaChanged(ev Event) {
	if l.fn != nil {
		l.fn(ev)
	}
}

// DispatchFunc is the low-level function the middleware chain wraps.
// It delivers one event to one listener.
type DispatchFunc func(l Listener, ev Event)

// Middleware wraps listener dispatch to add cross-cutting behavior.
//
//	func MyMiddleware() core.Middleware {
//	    return func(next core.DispatchFunc) core.DispatchFunc {
//	        return func(l core.Listener, ev core.Event) {
//	            // before
//	            next(l, ev)
//	            // after
//	        }
//	    }
//	}
type Middleware func(DispatchFunc) DispatchFunc

// applyMiddleware wraps a dispatch func with middleware in reverse order.
// Given middleware [A, B, C], the call order is A -> B -> C -> dispatch.
func applyMiddleware(d DispatchFunc, mws []Middleware) DispatchFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

func deliver(l Listener, ev Event) {
	l.MediaChanged(ev)
}
