package rabbitmq

import (
	"github.com/rs/zerolog"

	"github.com/miladsoleymani/mediamux/core"
)

// Option configures the RabbitMQ source.
type Option func(*options)

type options struct {
	// Exchange settings
	exchangeType string
	routingKey   string
	durable      bool

	// Queue settings
	queue      string
	autoDelete bool
	exclusive  bool

	// Consumer settings
	prefetchCount int

	codec core.Codec
	log   *zerolog.Logger
}

func defaults() options {
	return options{
		exchangeType:  "fanout", // every watcher sees every device update
		durable:       true,
		autoDelete:    true,
		exclusive:     true,
		prefetchCount: 1,
		codec:         core.JSONCodec{},
	}
}

// WithExchangeType sets the exchange type (fanout, direct, topic).
func WithExchangeType(kind string) Option {
	return func(o *options) { o.exchangeType = kind }
}

// WithRoutingKey sets the routing key used to publish and bind.
func WithRoutingKey(key string) Option {
	return func(o *options) { o.routingKey = key }
}

// WithDurable controls whether the exchange survives broker restart.
func WithDurable(d bool) Option {
	return func(o *options) { o.durable = d }
}

// WithQueue binds a named, shared queue instead of a private one.
// Consumers sharing a queue split the updates between them.
func WithQueue(name string) Option {
	return func(o *options) {
		o.queue = name
		o.exclusive = false
		o.autoDelete = false
	}
}

// WithPrefetchCount sets how many updates are delivered before requiring ack.
func WithPrefetchCount(n int) Option {
	return func(o *options) { o.prefetchCount = n }
}

// WithCodec sets the wire format of device descriptions.
func WithCodec(c core.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithLogger sets the source logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}
