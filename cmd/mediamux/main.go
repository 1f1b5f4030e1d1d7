// Command mediamux evaluates media queries against device profiles and
// watches them over live environments.
//
//	mediamux match "(min-width: 768px)" --profile tablet
//	mediamux watch "(orientation: portrait)" --env nats --brokers nats://localhost:4222 --topic displays.lobby
//	mediamux publish --env nats --brokers nats://localhost:4222 --topic displays.lobby --device width=1080
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Import plugins to trigger self-registration via init()
	_ "github.com/miladsoleymani/mediamux/plugins/kafka"
	_ "github.com/miladsoleymani/mediamux/plugins/nats"
	_ "github.com/miladsoleymani/mediamux/plugins/rabbitmq"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "mediamux:", err)
		os.Exit(1)
	}
}
