package nats

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/miladsoleymani/mediamux/core"
	"github.com/miladsoleymani/mediamux/environment"
	"github.com/miladsoleymani/mediamux/internal/logger"
)

func init() {
	environment.Register("nats", func(cfg environment.Config) (environment.Source, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		opts, err := optsFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return New(cfg.Brokers[0], cfg.Topic, opts...)
	})
}

// Source implements environment.Source over NATS JetStream.
//
// Design decisions:
//   - One NATS connection per Source instance.
//   - Device descriptions are kept in a stream holding one message per
//     subject, so a fresh consumer starts from the latest known device.
//   - An ordered consumer delivers updates one at a time; no acks needed.
//   - Graceful shutdown: context cancellation stops the consumer, Close()
//     cancels watchers and closes the connection.
type Source struct {
	*environment.Viewport

	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	opts    options
	feed    *environment.Feed

	mu     sync.Mutex
	closed bool
	cc     jetstream.ConsumeContext
}

// New creates a NATS Source. url is a standard NATS URL (nats://host:port)
// and subject carries the device descriptions.
func New(url, subject string, fns ...Option) (*Source, error) {
	opts := defaults()
	for _, fn := range fns {
		fn(&opts)
	}
	if opts.log == nil {
		opts.log = logger.Get()
	}

	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("mediamux/nats: connect to %q: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("mediamux/nats: init jetstream: %w", err)
	}

	log := opts.log.With().Str("source", "nats").Str("subject", subject).Logger()
	vp := environment.NewViewport(nil, environment.WithViewportLogger(log))
	return &Source{
		Viewport: vp,
		conn:     nc,
		js:       js,
		subject:  subject,
		opts:     opts,
		feed:     &environment.Feed{Viewport: vp, Codec: opts.codec, Log: log, Channel: subject},
	}, nil
}

// Publish sends a device description to the subject.
func (s *Source) Publish(ctx context.Context, d core.Device) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrEnvironmentClosed
	}
	s.mu.Unlock()

	data, err := s.feed.Encode(d)
	if err != nil {
		return err
	}
	if _, err := s.js.Publish(ctx, s.subject, data); err != nil {
		return fmt.Errorf("mediamux/nats: publish to %q: %w", s.subject, err)
	}
	return nil
}

// Run creates or updates the stream, then applies device updates until
// the context is cancelled.
func (s *Source) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrEnvironmentClosed
	}
	s.mu.Unlock()

	streamName := s.opts.stream
	if streamName == "" {
		streamName = "mediamux-" + sanitizeStreamName(s.subject)
	}
	stream, err := s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:              streamName,
		Subjects:          []string{s.subject},
		MaxMsgsPerSubject: 1,
		Replicas:          s.opts.replicas,
		Storage:           s.opts.storage,
	})
	if err != nil {
		return fmt.Errorf("mediamux/nats: create stream %q: %w", streamName, err)
	}

	cons, err := stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{s.subject},
		DeliverPolicy:  s.opts.deliver,
	})
	if err != nil {
		return fmt.Errorf("mediamux/nats: create consumer on %q: %w", streamName, err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		if err := s.feed.Apply(msg.Data()); err != nil {
			s.feed.Log.Warn().Err(err).Msg("device update rejected")
		}
	})
	if err != nil {
		return fmt.Errorf("mediamux/nats: start consume on %q: %w", streamName, err)
	}

	s.mu.Lock()
	s.cc = cc
	s.mu.Unlock()

	// Block until context is cancelled
	<-ctx.Done()
	cc.Stop()
	return nil
}

// Close stops the consumer, cancels watchers and closes the connection.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.cc != nil {
		s.cc.Stop()
	}
	_ = s.Viewport.Close()
	s.conn.Close()
	return nil
}

// sanitizeStreamName converts a subject to a valid stream name
// by replacing special characters.
func sanitizeStreamName(subject string) string {
	buf := make([]byte, len(subject))
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		if c == '.' || c == '*' || c == '>' || c == ' ' {
			buf[i] = '-'
		} else {
			buf[i] = c
		}
	}
	return string(buf)
}

type extraConfig struct {
	Stream     string `mapstructure:"stream"`
	Replicas   int    `mapstructure:"replicas" validate:"gte=0,lte=5"`
	Storage    string `mapstructure:"storage" validate:"omitempty,oneof=file memory"`
	DeliverAll bool   `mapstructure:"deliver_all"`
	Codec      string `mapstructure:"codec" validate:"omitempty,oneof=json yaml"`
}

// optsFromConfig extracts options from environment.Config.Extra.
func optsFromConfig(cfg environment.Config) ([]Option, error) {
	var extra extraConfig
	if err := cfg.DecodeExtra(&extra); err != nil {
		return nil, err
	}
	var opts []Option
	if extra.Stream != "" {
		opts = append(opts, WithStream(extra.Stream))
	}
	if extra.Replicas > 0 {
		opts = append(opts, WithReplicas(extra.Replicas))
	}
	switch extra.Storage {
	case "file":
		opts = append(opts, WithStorage(jetstream.FileStorage))
	case "memory":
		opts = append(opts, WithStorage(jetstream.MemoryStorage))
	}
	if extra.DeliverAll {
		opts = append(opts, WithDeliverAll())
	}
	if extra.Codec == "yaml" {
		opts = append(opts, WithCodec(core.YAMLCodec{}))
	}
	return opts, nil
}
