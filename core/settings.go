package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Settings describes a query either literally or as breakpoint features.
// Query wins when both are set.
//
//	core.Settings{Features: map[string]any{"minWidth": 768, "orientation": "landscape"}}
//	// (min-width: 768px) and (orientation: landscape)
type Settings struct {
	Query    string
	Features map[string]any
}

// MediaQuery returns the query string the settings describe.
func (s Settings) MediaQuery() string {
	if q := strings.TrimSpace(s.Query); q != "" {
		return q
	}
	return ToQuery(s.Features)
}

var mediaTypes = []string{
	"all", "screen", "print", "speech", "braille", "embossed",
	"handheld", "projection", "tty", "tv",
}

// ToQuery builds a query from camelCase or hyphenated feature keys.
// Media types come first, then features in key order. A true bool
// tests the feature in boolean context, false negates it, and numbers on
// length features are read as px. Nil values are skipped.
func ToQuery(features map[string]any) string {
	var types, conds []string

	byName := make(map[string]any, len(features))
	for k, v := range features {
		if v == nil {
			continue
		}
		byName[Hyphenate(k)] = v
	}

	for _, t := range mediaTypes {
		v, ok := byName[t]
		if !ok {
			continue
		}
		delete(byName, t)
		if on, err := cast.ToBoolE(v); err == nil && !on {
			types = append(types, "not "+t)
			continue
		}
		types = append(types, t)
	}

	names := make([]string, 0, len(byName))
	for k := range byName {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		switch v := byName[name].(type) {
		case bool:
			if v {
				conds = append(conds, "("+name+")")
			} else {
				conds = append(conds, "(not ("+name+"))")
			}
		default:
			conds = append(conds, fmt.Sprintf("(%s: %s)", name, featureValue(name, v)))
		}
	}

	return strings.Join(append(types, conds...), " and ")
}

func featureValue(name string, v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	base := strings.TrimPrefix(strings.TrimPrefix(name, "min-"), "max-")
	if featureKind(base) == kindLength {
		if _, isString := v.(string); !isString {
			return s + "px"
		}
	}
	return s
}
