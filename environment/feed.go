package environment

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/miladsoleymani/mediamux/core"
)

// Feed decodes device descriptions received from a broker and applies them
// to a Viewport. Broker-backed sources call Apply from their consume loop,
// which is their event-dispatch boundary: a panicking listener is logged
// and reported as an error instead of killing the consumer.
type Feed struct {
	Viewport *Viewport
	Codec    core.Codec
	Log      zerolog.Logger
	Channel  string
}

// Apply decodes data and updates the viewport.
func (f *Feed) Apply(data []byte) (err error) {
	d, err := f.Codec.Decode(data)
	if err != nil {
		return fmt.Errorf("mediamux: decode device from %q: %w", f.Channel, err)
	}

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			f.Log.Error().Str("channel", f.Channel).Interface("panic", r).Bytes("stack", buf[:n]).Msg("listener panicked")
			err = fmt.Errorf("mediamux: listener panic on %q: %v", f.Channel, r)
		}
	}()
	f.Viewport.Update(d)
	return nil
}

// Encode serializes d with the feed codec.
func (f *Feed) Encode(d core.Device) ([]byte, error) {
	b, err := f.Codec.Encode(d)
	if err != nil {
		return nil, fmt.Errorf("mediamux: encode device for %q: %w", f.Channel, err)
	}
	return b, nil
}
