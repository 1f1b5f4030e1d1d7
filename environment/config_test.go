package environment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miladsoleymani/mediamux/environment"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     environment.Config
		wantErr bool
	}{
		{"valid", environment.Config{Brokers: []string{"localhost:9092"}, Topic: "displays"}, false},
		{"no brokers", environment.Config{Topic: "displays"}, true},
		{"blank broker", environment.Config{Brokers: []string{""}, Topic: "displays"}, true},
		{"no topic", environment.Config{Brokers: []string{"localhost:9092"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, environment.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

type testExtra struct {
	Stream   string        `mapstructure:"stream" validate:"omitempty,max=10"`
	Replicas int           `mapstructure:"replicas" validate:"min=0,max=5"`
	Wait     time.Duration `mapstructure:"wait"`
	Replay   bool          `mapstructure:"replay"`
}

func TestConfig_DecodeExtra(t *testing.T) {
	cfg := environment.Config{Extra: map[string]any{
		"stream":   "DISPLAYS",
		"replicas": "3",
		"wait":     "250ms",
		"replay":   "true",
	}}

	var out testExtra
	require.NoError(t, cfg.DecodeExtra(&out))
	assert.Equal(t, testExtra{Stream: "DISPLAYS", Replicas: 3, Wait: 250 * time.Millisecond, Replay: true}, out)
}

func TestConfig_DecodeExtraErrors(t *testing.T) {
	var out testExtra
	assert.NoError(t, environment.Config{}.DecodeExtra(&out), "no extra is not an error")

	err := environment.Config{Extra: map[string]any{"replicas": "many"}}.DecodeExtra(&out)
	assert.ErrorIs(t, err, environment.ErrInvalidConfig)

	err = environment.Config{Extra: map[string]any{"replicas": 9}}.DecodeExtra(&out)
	assert.ErrorIs(t, err, environment.ErrInvalidConfig)
}
