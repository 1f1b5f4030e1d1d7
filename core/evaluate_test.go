package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miladsoleymani/mediamux/core"
	"github.com/miladsoleymani/mediamux/internal/mock"
)

func TestSelectMode(t *testing.T) {
	env := mock.NewEnvironment()
	dev := core.Device{"width": 320}

	tests := []struct {
		name        string
		device      core.Device
		forceStatic bool
		env         core.Environment
		want        core.Mode
	}{
		{"device and env", dev, false, env, core.ModeStatic},
		{"device forced", dev, true, env, core.ModeStatic},
		{"forced with env", nil, true, env, core.ModeStatic},
		{"env only", nil, false, env, core.ModeLive},
		{"empty device with env", core.Device{}, false, env, core.ModeLive},
		{"nothing", nil, false, nil, core.ModeStatic},
		{"device without env", dev, false, nil, core.ModeStatic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.SelectMode(tt.device, tt.forceStatic, tt.env))
		})
	}
}

func TestEvaluate_Live(t *testing.T) {
	const q = "(orientation: landscape)"
	env := mock.NewEnvironment()
	env.Set(q, true)

	var got []core.Event
	res, err := core.Evaluate(q, nil, false, func(ev core.Event) { got = append(got, ev) },
		core.WithEnvironment(env), quiet())
	require.NoError(t, err)

	assert.Equal(t, core.ModeLive, res.Mode)
	assert.True(t, res.Matches)
	assert.Equal(t, q, res.Media)
	require.NotNil(t, res.Sub)

	env.Emit(q, false)
	assert.Equal(t, []core.Event{{Matches: false, Media: q}}, got)

	res.Sub.Cancel()
	assert.Zero(t, env.Active())
}

func TestEvaluate_LiveWithoutCallback(t *testing.T) {
	const q = "(color)"
	env := mock.NewEnvironment()

	res, err := core.Evaluate(q, nil, false, nil, core.WithEnvironment(env), quiet())
	require.NoError(t, err)
	assert.NotPanics(t, func() { env.Emit(q, true) })
	res.Sub.Cancel()
}

func TestEvaluate_Static(t *testing.T) {
	res, err := core.Evaluate("(max-width: 30em)", core.Device{"width": 480}, false, nil, quiet())
	require.NoError(t, err)
	assert.Equal(t, core.Result{Matches: true, Media: "(max-width: 30em)", Mode: core.ModeStatic}, res)
}

type stubMatcher struct {
	got core.Device
	err error
}

func (m *stubMatcher) Match(_ string, d core.Device) (bool, error) {
	m.got = d
	return m.err == nil, m.err
}

func TestEvaluate_CustomMatcher(t *testing.T) {
	m := &stubMatcher{}
	dev := core.Device{"pointer": "coarse"}

	res, err := core.Evaluate("(pointer: fine)", dev, false, nil, core.WithMatcher(m), quiet())
	require.NoError(t, err)
	assert.True(t, res.Matches)
	assert.Equal(t, dev, m.got)

	m.err = errors.New("unsupported")
	_, err = core.Evaluate("(pointer: fine)", dev, false, nil, core.WithMatcher(m), quiet())
	assert.ErrorIs(t, err, m.err)
	assert.Contains(t, err.Error(), "(pointer: fine)")
}

func TestEvaluate_WatchErrorCancelsPartialSubscription(t *testing.T) {
	env := &leakyEnvironment{}
	res, err := core.Evaluate("(min-width: 1px)", nil, false, nil, core.WithEnvironment(env), quiet())
	require.NoError(t, err)
	assert.Equal(t, core.ModeStatic, res.Mode)
	assert.Nil(t, res.Sub)
	assert.True(t, env.sub.canceled)
}

// leakyEnvironment returns a subscription together with an error.
type leakyEnvironment struct{ sub *leakySub }

type leakySub struct{ canceled bool }

func (s *leakySub) Cancel() { s.canceled = true }

func (e *leakyEnvironment) Watch(string, func(core.Event)) (core.Event, core.Subscription, error) {
	e.sub = &leakySub{}
	return core.Event{}, e.sub, core.ErrEnvironmentClosed
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "live", core.ModeLive.String())
	assert.Equal(t, "static", core.ModeStatic.String())
	assert.Equal(t, "disposed", core.StateDisposed.String())
	assert.Equal(t, "active", core.StateActive.String())
}
