package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/miladsoleymani/mediamux/core"
	"github.com/miladsoleymani/mediamux/core/middleware"
	"github.com/miladsoleymani/mediamux/environment"
)

func newWatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch QUERY...",
		Short: "Follow queries over a live environment and print every change as JSON",
		Example: `  mediamux watch "(orientation: portrait)" --env nats --brokers nats://localhost:4222 --topic displays.lobby
  mediamux watch "(min-width: 600px)" --env local --device width=400 --feed resize.yaml --interval 500ms`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.watch(cmd, args)
		},
	}
	addEnvironmentFlags(cmd)
	f := cmd.Flags()
	f.StringArray("device", nil, "initial device feature for the local environment, repeatable")
	f.String("feed", "", "YAML file of device documents to publish in order")
	f.Duration("interval", time.Second, "delay between fed devices")
	f.Duration("duration", 0, "stop after this long (default: until interrupted)")
	return cmd
}

func (c *cli) watch(cmd *cobra.Command, queries []string) error {
	name, cfg, err := c.environmentConfig(cmd)
	if err != nil {
		return err
	}
	if pairs, _ := cmd.Flags().GetStringArray("device"); len(pairs) > 0 {
		if name != "local" {
			return fmt.Errorf("--device only applies to the local environment")
		}
		dev, err := parseDevice(pairs)
		if err != nil {
			return err
		}
		cfg.Extra = map[string]any{"device": map[string]any(dev)}
	}

	src, err := environment.Create(name, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	collector, err := middleware.NewOtelCollector(otel.GetMeterProvider().Meter("github.com/miladsoleymani/mediamux"))
	if err != nil {
		return err
	}
	opts := []core.Option{
		core.WithEnvironment(src),
		core.WithLogger(c.log),
		core.WithMiddleware(
			middleware.Recovery(c.log),
			middleware.Logging(c.log),
			middleware.Metrics(collector),
		),
	}

	out := &eventPrinter{enc: json.NewEncoder(cmd.OutOrStdout())}
	for _, q := range queries {
		h, err := core.New(q, nil, false, opts...)
		if err != nil {
			return err
		}
		defer h.Dispose()
		if h.Mode() != core.ModeLive {
			c.log.Warn().Str("query", q).Msg("environment refused query, reporting a fixed value")
		}
		out.print(h.ID().String(), core.Event{Matches: h.Matches(), Media: h.Media()}, true)
		h.AddListener(&handleListener{id: h.ID().String(), out: out})
	}

	ctx := cmd.Context()
	if d, _ := cmd.Flags().GetDuration("duration"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return src.Run(gctx)
	})
	if path, _ := cmd.Flags().GetString("feed"); path != "" {
		interval, _ := cmd.Flags().GetDuration("interval")
		g.Go(func() error {
			return c.feed(gctx, src, path, interval)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// feed publishes every YAML document in path to src, pausing interval
// between documents.
func (c *cli) feed(ctx context.Context, src environment.Source, path string, interval time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	for i := 0; ; i++ {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
			}
		}
		if err := src.Publish(ctx, core.HyphenateKeys(doc)); err != nil {
			return err
		}
		c.log.Debug().Int("document", i).Msg("device fed")
	}
}

type eventPrinter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

type eventLine struct {
	Handle  string `json:"handle"`
	Media   string `json:"media"`
	Matches bool   `json:"matches"`
	Initial bool   `json:"initial,omitempty"`
}

func (p *eventPrinter) print(id string, ev core.Event, initial bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.enc.Encode(eventLine{Handle: id, Media: ev.Media, Matches: ev.Matches, Initial: initial})
}

type handleListener struct {
	id  string
	out *eventPrinter
}

func (l *handleListener) MediaChanged(ev core.Event) {
	l.out.print(l.id, ev, false)
}
