package kafka

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/miladsoleymani/mediamux/core"
)

// Option configures the Kafka source.
type Option func(*options)

type options struct {
	// Writer
	balancer kafka.Balancer
	key      string

	// Reader
	minBytes    int
	maxBytes    int
	maxWait     time.Duration
	startOffset int64

	// General
	dialer *kafka.Dialer
	codec  core.Codec
	log    *zerolog.Logger
}

func defaults() options {
	return options{
		balancer:    &kafka.Hash{},
		key:         "device",
		minBytes:    1,
		maxBytes:    1e6, // 1 MB
		maxWait:     250 * time.Millisecond,
		startOffset: kafka.LastOffset,
		codec:       core.JSONCodec{},
	}
}

// WithBalancer sets the partition balancer for the writer.
func WithBalancer(b kafka.Balancer) Option {
	return func(o *options) { o.balancer = b }
}

// WithKey sets the message key device updates are written with. Updates
// sharing a key land on one partition and keep their order.
func WithKey(key string) Option {
	return func(o *options) { o.key = key }
}

// WithMaxBytes sets the maximum bytes per fetch.
func WithMaxBytes(n int) Option {
	return func(o *options) { o.maxBytes = n }
}

// WithMaxWait sets the maximum wait time for fetches.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) { o.maxWait = d }
}

// WithStartOffset sets the start offset without a group (kafka.FirstOffset or kafka.LastOffset).
func WithStartOffset(offset int64) Option {
	return func(o *options) { o.startOffset = offset }
}

// WithDialer sets a custom dialer for TLS/SASL connections.
func WithDialer(d *kafka.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithCodec sets the wire format of device descriptions.
func WithCodec(c core.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithLogger sets the source logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}
