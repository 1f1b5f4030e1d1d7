package core

import (
	"maps"
	"reflect"
	"strings"
	"unicode"
)

// Device describes a hypothetical display environment as hyphenated media
// feature names mapped to scalar values, e.g.
//
//	core.Device{"width": 1024, "orientation": "landscape", "type": "screen"}
//
// Numbers on length features are read as px. Strings may carry units
// ("64em", "2dppx") or ratios ("16/9").
type Device map[string]any

// Empty reports whether d carries no features. A nil Device is empty.
func (d Device) Empty() bool {
	return len(d) == 0
}

// Clone returns a shallow copy of d, or nil if d is empty.
func (d Device) Clone() Device {
	if d.Empty() {
		return nil
	}
	return maps.Clone(d)
}

// Equal reports whether d and other hold the same keys with equal values.
// Values are compared shallowly; non-comparable values are never equal.
// A nil Device equals an empty one.
func (d Device) Equal(other Device) bool {
	return maps.EqualFunc(d, other, sameValue)
}

// sameValue is a == b that reports false instead of panicking when the
// dynamic values cannot be compared. Types such as a struct holding a
// slice in an interface field pass the Comparable check and still panic.
func sameValue(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// HyphenateKeys returns a copy of d with every key passed through Hyphenate.
// It returns nil when d is empty, so an empty description counts as absent.
func HyphenateKeys(d map[string]any) Device {
	if len(d) == 0 {
		return nil
	}
	out := make(Device, len(d))
	for k, v := range d {
		out[Hyphenate(k)] = v
	}
	return out
}

// Hyphenate converts a camelCase feature name to its hyphenated form:
// "minWidth" becomes "min-width" and "msHighContrast" becomes
// "-ms-high-contrast". Names without uppercase letters come back unchanged.
func Hyphenate(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if strings.HasPrefix(out, "ms-") {
		out = "-" + out
	}
	return out
}
