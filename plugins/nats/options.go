package nats

import (
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/miladsoleymani/mediamux/core"
)

// Option configures the NATS source.
type Option func(*options)

type options struct {
	// Stream
	stream   string
	replicas int
	storage  jetstream.StorageType

	// Consumer
	deliver jetstream.DeliverPolicy

	codec core.Codec
	log   *zerolog.Logger
}

func defaults() options {
	return options{
		replicas: 1,
		storage:  jetstream.MemoryStorage,
		deliver:  jetstream.DeliverLastPerSubjectPolicy,
		codec:    core.JSONCodec{},
	}
}

// WithStream sets the JetStream stream name. It defaults to one derived
// from the subject.
func WithStream(name string) Option {
	return func(o *options) { o.stream = name }
}

// WithReplicas sets the stream replication factor.
func WithReplicas(n int) Option {
	return func(o *options) { o.replicas = n }
}

// WithStorage sets the stream storage type (file or memory).
func WithStorage(s jetstream.StorageType) Option {
	return func(o *options) { o.storage = s }
}

// WithDeliverAll replays every stored device update instead of only the
// latest one.
func WithDeliverAll() Option {
	return func(o *options) { o.deliver = jetstream.DeliverAllPolicy }
}

// WithCodec sets the wire format of device descriptions.
func WithCodec(c core.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithLogger sets the source logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}
