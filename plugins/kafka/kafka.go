package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/miladsoleymani/mediamux/core"
	"github.com/miladsoleymani/mediamux/environment"
	"github.com/miladsoleymani/mediamux/internal/logger"
)

func init() {
	environment.Register("kafka", func(cfg environment.Config) (environment.Source, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		opts, err := optsFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return New(cfg.Brokers, cfg.Topic, cfg.Group, opts...)
	})
}

// Source implements environment.Source for Apache Kafka using segmentio/kafka-go.
//
// Design decisions:
//   - One kafka.Writer for Publish calls (thread-safe by library).
//   - One kafka.Reader, consumed by Run in the caller's goroutine so device
//     updates are applied in partition order.
//   - With a group, offsets are committed after each applied update.
//   - Graceful shutdown: context cancellation breaks the fetch loop, Close()
//     flushes the writer and closes the reader.
type Source struct {
	*environment.Viewport

	brokers []string
	topic   string
	group   string
	opts    options
	feed    *environment.Feed

	writer *kafka.Writer
	reader *kafka.Reader
	mu     sync.Mutex
	closed bool
}

// New creates a Kafka Source reading device descriptions from topic.
func New(brokers []string, topic, group string, fns ...Option) (*Source, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("mediamux/kafka: at least one broker address is required")
	}

	opts := defaults()
	for _, fn := range fns {
		fn(&opts)
	}
	if opts.log == nil {
		opts.log = logger.Get()
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     opts.balancer,
		RequiredAcks: kafka.RequireAll,
	}
	if opts.dialer != nil {
		w.Transport = &kafka.Transport{
			TLS:  opts.dialer.TLS,
			SASL: opts.dialer.SASLMechanism,
		}
	}

	log := opts.log.With().Str("source", "kafka").Str("topic", topic).Logger()
	vp := environment.NewViewport(nil, environment.WithViewportLogger(log))
	return &Source{
		Viewport: vp,
		brokers:  brokers,
		topic:    topic,
		group:    group,
		opts:     opts,
		feed:     &environment.Feed{Viewport: vp, Codec: opts.codec, Log: log, Channel: topic},
		writer:   w,
	}, nil
}

// Publish writes a device description to the topic.
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
	km := kafka.Message{
		Key:   []byte(s.opts.key),
		Value: data,
		Time:  time.Now(),
	}
	if err := s.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("mediamux/kafka: publish to %q: %w", s.topic, err)
	}
	return nil
}

// Run creates the reader and applies device updates until the context is
// cancelled.
func (s *Source) Run(ctx context.Context) error {
	cfg := kafka.ReaderConfig{
		Brokers:  s.brokers,
		Topic:    s.topic,
		GroupID:  s.group,
		MinBytes: s.opts.minBytes,
		MaxBytes: s.opts.maxBytes,
		MaxWait:  s.opts.maxWait,
	}
	if s.opts.dialer != nil {
		cfg.Dialer = s.opts.dialer
	}
	if s.group == "" {
		cfg.StartOffset = s.opts.startOffset
	}

	r := kafka.NewReader(cfg)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		r.Close()
		return core.ErrEnvironmentClosed
	}
	s.reader = r
	s.mu.Unlock()

	return s.consumeLoop(ctx, r)
}

// consumeLoop fetches device updates and applies them in order.
func (s *Source) consumeLoop(ctx context.Context, r *kafka.Reader) error {
	for {
		raw, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil // graceful shutdown
			}
			return fmt.Errorf("mediamux/kafka: fetch: %w", err)
		}

		if err := s.feed.Apply(raw.Value); err != nil {
			s.feed.Log.Warn().Err(err).Int64("offset", raw.Offset).Msg("device update rejected")
		}
		if s.group != "" {
			if err := r.CommitMessages(ctx, raw); err != nil && ctx.Err() == nil {
				return fmt.Errorf("mediamux/kafka: commit offset: %w", err)
			}
		}
	}
}

// Close flushes the writer, closes the reader and cancels watchers.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	_ = s.Viewport.Close()

	var errs []error
	if err := s.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("mediamux/kafka: close writer: %w", err))
	}
	if s.reader != nil {
		if err := s.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mediamux/kafka: close reader: %w", err))
		}
	}
	return errors.Join(errs...)
}

type extraConfig struct {
	Key      string        `mapstructure:"key"`
	MaxBytes int           `mapstructure:"max_bytes" validate:"gte=0"`
	MaxWait  time.Duration `mapstructure:"max_wait" validate:"gte=0"`
	FromHead bool          `mapstructure:"from_head"`
	Codec    string        `mapstructure:"codec" validate:"omitempty,oneof=json yaml"`
}

// optsFromConfig extracts options from the environment.Config.Extra map.
func optsFromConfig(cfg environment.Config) ([]Option, error) {
	var extra extraConfig
	if err := cfg.DecodeExtra(&extra); err != nil {
		return nil, err
	}
	var opts []Option
	if extra.Key != "" {
		opts = append(opts, WithKey(extra.Key))
	}
	if extra.MaxBytes > 0 {
		opts = append(opts, WithMaxBytes(extra.MaxBytes))
	}
	if extra.MaxWait > 0 {
		opts = append(opts, WithMaxWait(extra.MaxWait))
	}
	if extra.FromHead {
		opts = append(opts, WithStartOffset(kafka.FirstOffset))
	}
	if extra.Codec == "yaml" {
		opts = append(opts, WithCodec(core.YAMLCodec{}))
	}
	return opts, nil
}
