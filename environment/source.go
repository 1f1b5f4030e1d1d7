// Package environment provides live media environments: the in-process
// Viewport and the Source contract implemented by broker-backed plugins,
// along with their name-based registry.
//
//	src, err := environment.Create("nats", environment.Config{
//	    Brokers: []string{"nats://localhost:4222"},
//	    Topic:   "displays.kiosk-1",
//	})
//	go src.Run(ctx)
//	h, err := mediamux.New("(orientation: portrait)", nil, false, core.WithEnvironment(src))
package environment

import (
	"context"

	"github.com/miladsoleymani/mediamux/core"
)

// Source is a live environment whose device state is fed from outside.
type Source interface {
	core.Environment

	// Device returns the current device description.
	Device() core.Device

	// Publish announces a new device description to every consumer of the
	// source, including this one.
	Publish(ctx context.Context, d core.Device) error

	// Run consumes device updates until the context is cancelled.
	Run(ctx context.Context) error

	// Close releases connections and cancels all watchers.
	Close() error
}
