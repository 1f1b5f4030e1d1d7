package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miladsoleymani/mediamux/core"
	"github.com/miladsoleymani/mediamux/environment"
)

func TestOptsFromConfig(t *testing.T) {
	fns, err := optsFromConfig(environment.Config{Extra: map[string]any{
		"key":       "kiosk-1",
		"max_bytes": "2048",
		"max_wait":  "1s",
		"from_head": true,
		"codec":     "yaml",
	}})
	require.NoError(t, err)

	o := defaults()
	for _, fn := range fns {
		fn(&o)
	}
	assert.Equal(t, "kiosk-1", o.key)
	assert.Equal(t, 2048, o.maxBytes)
	assert.Equal(t, time.Second, o.maxWait)
	assert.Equal(t, kafka.FirstOffset, o.startOffset)
	assert.Equal(t, core.YAMLCodec{}, o.codec)
}

func TestOptsFromConfig_Defaults(t *testing.T) {
	fns, err := optsFromConfig(environment.Config{})
	require.NoError(t, err)
	assert.Empty(t, fns)

	o := defaults()
	assert.Equal(t, "device", o.key)
	assert.Equal(t, kafka.LastOffset, o.startOffset)
	assert.Equal(t, core.JSONCodec{}, o.codec)
}

func TestNew_RequiresBroker(t *testing.T) {
	_, err := New(nil, "displays", "")
	assert.Error(t, err)
}

func TestFactory_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  environment.Config
	}{
		{"no brokers", environment.Config{Topic: "displays"}},
		{"no topic", environment.Config{Brokers: []string{"localhost:9092"}}},
		{"negative wait", environment.Config{
			Brokers: []string{"localhost:9092"},
			Topic:   "displays",
			Extra:   map[string]any{"max_wait": "-1s"},
		}},
		{"bad codec", environment.Config{
			Brokers: []string{"localhost:9092"},
			Topic:   "displays",
			Extra:   map[string]any{"codec": "protobuf"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := environment.Create("kafka", tt.cfg)
			assert.ErrorIs(t, err, environment.ErrInvalidConfig)
		})
	}
}
