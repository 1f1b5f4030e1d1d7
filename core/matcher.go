package core

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// StaticMatcher evaluates a media query against a fixed device description.
type StaticMatcher interface {
	Match(query string, d Device) (bool, error)
}

// DefaultMatcher supports media types, feature tests with min-/max-
// prefixes, range syntax and and/or/not conditions over comma-separated
// query lists.
//
// Examples against Device{"width": 800, "orientation": "landscape"}:
//
//	"(min-width: 600px)"                    true
//	"(max-width: 40em)"                     false  (40em = 640px)
//	"(400px <= width < 1000px)"             true
//	"(min-width: 1200px), (orientation: landscape)"  true
//	"(min-height: 100px)"                   false  (height unknown)
//	"not (min-width: 1200px)"               true
//
// A feature the device does not describe never satisfies a test.
type DefaultMatcher struct{}

func (DefaultMatcher) Match(query string, d Device) (bool, error) {
	list, err := Parse(query)
	if err != nil {
		return false, err
	}
	return list.Eval(d), nil
}

// StaticMatch evaluates query against d with the DefaultMatcher.
func StaticMatch(query string, d Device) (bool, error) {
	return DefaultMatcher{}.Match(query, d)
}

type valueKind int

const (
	kindEnum valueKind = iota
	kindLength
	kindResolution
	kindRatio
	kindInteger
)

func featureKind(name string) valueKind {
	switch name {
	case "width", "height", "device-width", "device-height":
		return kindLength
	case "resolution":
		return kindResolution
	case "aspect-ratio", "device-aspect-ratio", "device-pixel-ratio":
		return kindRatio
	case "color", "color-index", "monochrome", "grid":
		return kindInteger
	}
	return kindEnum
}

// Eval reports whether the device satisfies every comparison of the test.
// Missing or falsy device values never match.
func (f FeatureTest) Eval(d Device) bool {
	raw, ok := d[f.Name]
	if !ok || !truthy(raw) {
		return false
	}
	if len(f.Comparisons) == 0 {
		return true
	}
	for _, c := range f.Comparisons {
		if !compare(f.Name, raw, c) {
			return false
		}
	}
	return true
}

func compare(name string, raw any, c Comparison) bool {
	kind := featureKind(name)
	if kind == kindEnum {
		got, ok := scalarString(raw)
		if !ok {
			return false
		}
		// Unknown features may still carry plain numbers.
		gn, gerr := strconv.ParseFloat(got, 64)
		wn, werr := strconv.ParseFloat(c.Value, 64)
		if gerr == nil && werr == nil {
			return compareFloat(gn, c.Op, wn)
		}
		return c.Op == "=" && strings.EqualFold(got, c.Value)
	}

	got, ok := toNumber(kind, raw)
	if !ok {
		return false
	}
	want, ok := toNumber(kind, c.Value)
	if !ok {
		return false
	}
	return compareFloat(got, c.Op, want)
}

func compareFloat(got float64, op string, want float64) bool {
	switch op {
	case "<":
		return got < want
	case "<=":
		return got <= want
	case ">":
		return got > want
	case ">=":
		return got >= want
	default:
		return got == want
	}
}

func toNumber(kind valueKind, v any) (float64, bool) {
	s, ok := scalarString(v)
	if !ok {
		return 0, false
	}
	switch kind {
	case kindLength:
		return toPx(s)
	case kindResolution:
		return toDpi(s)
	case kindRatio:
		return toDecimal(s)
	default:
		n, unit := splitUnit(s)
		if unit != "" || n == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
}

func toPx(s string) (float64, bool) {
	n, unit := splitUnit(s)
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "", "px":
		return f, true
	case "em", "rem":
		return f * 16, true
	case "cm":
		return f * 96 / 2.54, true
	case "mm":
		return f * 96 / 25.4, true
	case "in":
		return f * 96, true
	case "pt":
		return f * 96 / 72, true
	case "pc":
		return f * 16, true
	}
	return 0, false
}

func toDpi(s string) (float64, bool) {
	n, unit := splitUnit(s)
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "", "dpi":
		return f, true
	case "dpcm":
		return f * 2.54, true
	case "dppx", "x":
		return f * 96, true
	}
	return 0, false
}

func toDecimal(s string) (float64, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		a, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, false
		}
		b, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || b == 0 {
			return 0, false
		}
		return a / b, true
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// splitUnit separates "12.5em" into "12.5" and "em". An exponent such as
// "1e3px" stays with the number; "1em" and "2ex" keep their unit.
func splitUnit(s string) (num, unit string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && i == 0) {
			i++
			continue
		}
		break
	}
	if i > 0 && i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '-' || s[j] == '+') {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	return s[:i], strings.ToLower(strings.TrimSpace(s[i:]))
}

func scalarString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// truthy follows the media-query boolean context: zero, "none", false and
// the empty string are off.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	}
	s, ok := scalarString(v)
	if !ok || s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "false") {
		return false
	}
	if n, unit := splitUnit(s); n != "" && unit == "" {
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f != 0
		}
	}
	return true
}
