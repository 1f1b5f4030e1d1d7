package main

import (
	"fmt"
	"strings"

	"github.com/miladsoleymani/mediamux/core"
)

// parseDevice turns name=value pairs into a Device. Values stay strings;
// the matcher reads units and numbers from them. Names may be camelCase.
func parseDevice(pairs []string) (core.Device, error) {
	d := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid device feature %q, want name=value", p)
		}
		d[name] = strings.TrimSpace(value)
	}
	return core.HyphenateKeys(d), nil
}
