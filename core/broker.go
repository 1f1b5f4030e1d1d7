package core

// Environment is the host's live media-state facility. It is injected into
// handles with WithEnvironment; handles built without one evaluate statically.
type Environment interface {
	// Watch returns the current state of query and registers fn to be called
	// with every subsequent change. The returned Subscription releases the
	// registration. Returning an error (typically ErrEnvironmentUnavailable)
	// makes the caller fall back to static evaluation.
	Watch(query string, fn func(Event)) (Event, Subscription, error)
}

// Subscription is a live registration with an Environment.
type Subscription interface {
	// Cancel stops change notifications. It must tolerate repeated calls.
	Cancel()
}
