package mock

import (
	"sync"

	"github.com/miladsoleymani/mediamux/core"
)

// Environment is a test double for core.Environment. It reports the state
// set with Set and delivers changes only when the test calls Emit.
type Environment struct {
	mu       sync.Mutex
	state    map[string]bool
	watchers []*Subscription
	cancels  int

	// WatchErr, when set, is returned by Watch to simulate a host without
	// a live query API.
	WatchErr error
}

// Subscription records one Watch call.
type Subscription struct {
	env      *Environment
	Query    string
	fn       func(core.Event)
	canceled bool
}

func NewEnvironment() *Environment {
	return &Environment{state: make(map[string]bool)}
}

// Set changes the state reported for query without notifying anyone.
func (e *Environment) Set(query string, matches bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state[query] = matches
}

func (e *Environment) Watch(query string, fn func(core.Event)) (core.Event, core.Subscription, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.WatchErr != nil {
		return core.Event{}, nil, e.WatchErr
	}
	sub := &Subscription{env: e, Query: query, fn: fn}
	e.watchers = append(e.watchers, sub)
	return core.Event{Matches: e.state[query], Media: query}, sub, nil
}

// Cancel counts every call, including repeated ones, so tests can assert
// on duplicate deregistration.
func (s *Subscription) Cancel() {
	s.env.mu.Lock()
	defer s.env.mu.Unlock()
	s.env.cancels++
	s.canceled = true
}

// Emit records the new state of query and delivers it to every active
// watcher of query, like a host dispatching a change. It returns the number
// of watchers notified.
func (e *Environment) Emit(query string, matches bool) int {
	e.mu.Lock()
	e.state[query] = matches
	var targets []*Subscription
	for _, s := range e.watchers {
		if s.Query == query && !s.canceled {
			targets = append(targets, s)
		}
	}
	e.mu.Unlock()

	ev := core.Event{Matches: matches, Media: query}
	for _, s := range targets {
		s.fn(ev)
	}
	return len(targets)
}

// EmitAll delivers to every watcher of query, canceled or not, simulating
// an event that was already in flight when the subscription was released.
func (e *Environment) EmitAll(query string, matches bool) {
	e.mu.Lock()
	var targets []*Subscription
	for _, s := range e.watchers {
		if s.Query == query {
			targets = append(targets, s)
		}
	}
	e.mu.Unlock()

	for _, s := range targets {
		s.fn(core.Event{Matches: matches, Media: query})
	}
}

// Active returns the number of watchers that have not been canceled.
func (e *Environment) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.watchers {
		if !s.canceled {
			n++
		}
	}
	return n
}

// Cancels returns how many times Cancel was called on any subscription.
func (e *Environment) Cancels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels
}
