package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miladsoleymani/mediamux/core"
)

func TestDevice_EmptyAndClone(t *testing.T) {
	var d core.Device
	assert.True(t, d.Empty())
	assert.Nil(t, d.Clone())
	assert.Nil(t, core.Device{}.Clone())

	src := core.Device{"width": 100}
	cp := src.Clone()
	cp["width"] = 200
	assert.Equal(t, 100, src["width"])
}

type boxed struct{ v any }

func TestDevice_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b core.Device
		want bool
	}{
		{"nil and empty", nil, core.Device{}, true},
		{"same", core.Device{"width": 1, "type": "tv"}, core.Device{"type": "tv", "width": 1}, true},
		{"different value", core.Device{"width": 1}, core.Device{"width": 2}, false},
		{"different type", core.Device{"width": 1}, core.Device{"width": 1.0}, false},
		{"missing key", core.Device{"width": 1}, core.Device{"height": 1}, false},
		{"nil values", core.Device{"hover": nil}, core.Device{"hover": nil}, true},
		{"non-comparable", core.Device{"list": []int{1}}, core.Device{"list": []int{1}}, false},
		{"boxed slice", core.Device{"x": boxed{[]int{1}}}, core.Device{"x": boxed{[]int{1}}}, false},
		{"boxed scalar", core.Device{"x": boxed{1}}, core.Device{"x": boxed{1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestHyphenateKeys(t *testing.T) {
	assert.Nil(t, core.HyphenateKeys(nil))
	assert.Equal(t,
		core.Device{"device-width": 320, "orientation": "portrait"},
		core.HyphenateKeys(map[string]any{"deviceWidth": 320, "orientation": "portrait"}),
	)
}

func TestJSONCodec(t *testing.T) {
	var c core.JSONCodec

	d, err := c.Decode([]byte(`{"minWidth": 100, "orientation": "landscape"}`))
	require.NoError(t, err)
	assert.Equal(t, core.Device{"min-width": float64(100), "orientation": "landscape"}, d)

	b, err := c.Encode(core.Device{"width": 320})
	require.NoError(t, err)
	assert.JSONEq(t, `{"width": 320}`, string(b))

	_, err = c.Decode([]byte(`{"width":`))
	assert.Error(t, err)
}

func TestYAMLCodec(t *testing.T) {
	var c core.YAMLCodec

	b, err := c.Encode(core.Device{"width": 800, "type": "screen"})
	require.NoError(t, err)

	d, err := c.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, core.Device{"width": 800, "type": "screen"}, d)

	d, err = c.Decode([]byte("deviceWidth: 1024\nresolution: 2dppx\n"))
	require.NoError(t, err)
	assert.Equal(t, core.Device{"device-width": 1024, "resolution": "2dppx"}, d)

	_, err = c.Decode([]byte("width: [1"))
	assert.Error(t, err)
}
