package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miladsoleymani/mediamux/core"
	"github.com/miladsoleymani/mediamux/internal/mock"
)

func TestTrack_StaticDevice(t *testing.T) {
	var flips []bool
	tr, err := core.Track(
		core.Settings{Features: map[string]any{"minWidth": 600}},
		map[string]any{"width": 800},
		func(v bool) { flips = append(flips, v) },
		quiet(),
	)
	require.NoError(t, err)
	defer tr.Close()

	assert.True(t, tr.Matches())
	assert.Equal(t, "(min-width: 600px)", tr.Query())
	assert.Equal(t, core.ModeStatic, tr.Handle().Mode())
	assert.Empty(t, flips, "initial value is not reported")
}

func TestTrack_UpdateRebuildsOnlyOnChange(t *testing.T) {
	var flips []bool
	settings := core.Settings{Query: "(min-width: 600px)"}
	tr, err := core.Track(settings, map[string]any{"width": 800}, func(v bool) { flips = append(flips, v) }, quiet())
	require.NoError(t, err)
	defer tr.Close()

	first := tr.Handle()
	require.NoError(t, tr.Update(settings, map[string]any{"width": 800}))
	assert.Same(t, first, tr.Handle(), "equal device must keep the handle")

	require.NoError(t, tr.Update(settings, map[string]any{"width": 500}))
	assert.NotSame(t, first, tr.Handle())
	assert.True(t, first.Disposed())
	assert.False(t, tr.Matches())
	assert.Equal(t, []bool{false}, flips)

	// Same value from a different query is not a flip.
	require.NoError(t, tr.Update(core.Settings{Query: "(min-width: 700px)"}, map[string]any{"width": 500}))
	assert.Equal(t, []bool{false}, flips)
	assert.Equal(t, "(min-width: 700px)", tr.Query())
}

func TestTrack_UpdateErrorKeepsHandle(t *testing.T) {
	tr, err := core.Track(core.Settings{Query: "print"}, map[string]any{"type": "print"}, nil, quiet())
	require.NoError(t, err)
	defer tr.Close()

	h := tr.Handle()
	assert.ErrorIs(t, tr.Update(core.Settings{}, nil), core.ErrInvalidQuery)
	assert.ErrorIs(t, tr.Update(core.Settings{Query: "print and"}, map[string]any{"type": "print"}), core.ErrInvalidQuery)
	assert.Same(t, h, tr.Handle())
	assert.False(t, h.Disposed())
	assert.True(t, tr.Matches())
}

func TestTrack_Live(t *testing.T) {
	const q = "(prefers-reduced-motion: reduce)"
	env := mock.NewEnvironment()

	var flips []bool
	tr, err := core.Track(core.Settings{Query: q}, nil, func(v bool) { flips = append(flips, v) },
		core.WithEnvironment(env), quiet())
	require.NoError(t, err)

	assert.False(t, tr.Matches())
	env.Emit(q, true)
	env.Emit(q, true)
	env.Emit(q, false)
	assert.Equal(t, []bool{true, false}, flips)

	require.NoError(t, tr.Update(core.Settings{Query: "(hover: none)"}, nil))
	assert.Equal(t, 1, env.Cancels())

	// Events for the replaced query are ignored.
	env.EmitAll(q, true)
	assert.Equal(t, []bool{true, false}, flips)

	tr.Close()
	tr.Close()
	assert.Equal(t, 2, env.Cancels())
	assert.Zero(t, env.Active())

	require.NoError(t, tr.Update(core.Settings{Query: "print"}, nil))
	assert.Zero(t, env.Active(), "closed tracker must not rebuild")
}

func TestTrack_DefaultDevice(t *testing.T) {
	env := mock.NewEnvironment()
	tr, err := core.Track(
		core.Settings{Query: "(min-device-width: 1000px)"},
		nil, nil,
		core.WithEnvironment(env),
		core.WithDefaultDevice(core.Device{"deviceWidth": 1280}),
		quiet(),
	)
	require.NoError(t, err)
	defer tr.Close()

	assert.Equal(t, core.ModeStatic, tr.Handle().Mode())
	assert.True(t, tr.Matches())
	assert.Zero(t, env.Active())

	// An explicit device overrides the default.
	require.NoError(t, tr.Update(core.Settings{Query: "(min-device-width: 1000px)"}, map[string]any{"deviceWidth": 800}))
	assert.False(t, tr.Matches())
}

func TestTrack_InvalidSettings(t *testing.T) {
	_, err := core.Track(core.Settings{}, nil, nil, quiet())
	assert.ErrorIs(t, err, core.ErrInvalidQuery)
}
