// Package profile loads named device descriptions from YAML so queries can
// be evaluated against well-known screens without a live environment.
//
//	default: phone
//	profiles:
//	  phone:
//	    device:
//	      type: screen
//	      width: 390
//	      height: 844
//	      orientation: portrait
//	  phone-landscape:
//	    extends: phone
//	    device:
//	      width: 844
//	      height: 390
//	      orientation: landscape
//
// Device keys may be camelCase; they are hyphenated on lookup.
package profile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/miladsoleymani/mediamux/core"
)

var (
	// ErrUnknownProfile is returned when a profile name is not defined.
	ErrUnknownProfile = errors.New("mediamux: unknown device profile")

	// ErrInvalidProfile wraps parse and validation failures.
	ErrInvalidProfile = errors.New("mediamux: invalid device profile")
)

// Set is a collection of named device profiles.
type Set struct {
	Default  string             `yaml:"default,omitempty"`
	Profiles map[string]Profile `yaml:"profiles" validate:"required,min=1,dive"`
}

// Profile is one named device. Extends names a profile whose device
// features are inherited and overridden.
type Profile struct {
	Description string         `yaml:"description,omitempty"`
	Extends     string         `yaml:"extends,omitempty"`
	Device      map[string]any `yaml:"device" validate:"required_without=Extends"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Load reads a profile set from path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mediamux: read profiles %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadOptional reads path if it exists and falls back to Builtin otherwise.
// An empty path selects Builtin.
func LoadOptional(path string) (*Set, error) {
	if path == "" {
		return Builtin(), nil
	}
	s, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Builtin(), nil
	}
	return s, err
}

// Parse decodes and validates a YAML profile set.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks field constraints, feature values, the default profile
// and the extends chains.
func (s *Set) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidProfile, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if s.Default != "" {
		if _, ok := s.Profiles[s.Default]; !ok {
			return fmt.Errorf("%w: default %q is not defined", ErrInvalidProfile, s.Default)
		}
	}
	for _, name := range s.Names() {
		p := s.Profiles[name]
		for k, v := range p.Device {
			switch v.(type) {
			case string, bool, int, int64, uint64, float64, nil:
			default:
				return fmt.Errorf("%w: %s: feature %q must be a scalar, got %T", ErrInvalidProfile, name, k, v)
			}
		}
		if _, err := s.Get(name); err != nil {
			return err
		}
	}
	return nil
}

// Names lists the profiles in alphabetical order.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get resolves a profile into a Device, applying its extends chain. An
// empty name selects the default profile.
func (s *Set) Get(name string) (core.Device, error) {
	if name == "" {
		name = s.Default
	}
	var chain []string
	dev := core.Device{}
	if err := s.resolve(strings.TrimSpace(name), dev, chain); err != nil {
		return nil, err
	}
	return dev, nil
}

func (s *Set) resolve(name string, into core.Device, chain []string) error {
	for _, seen := range chain {
		if seen == name {
			return fmt.Errorf("%w: extends cycle %s -> %s", ErrInvalidProfile, strings.Join(chain, " -> "), name)
		}
	}
	p, ok := s.Profiles[name]
	if !ok {
		if len(chain) > 0 {
			return fmt.Errorf("%w: %s extends unknown profile %q", ErrInvalidProfile, chain[len(chain)-1], name)
		}
		return fmt.Errorf("%w %q", ErrUnknownProfile, name)
	}
	if p.Extends != "" {
		if err := s.resolve(p.Extends, into, append(chain, name)); err != nil {
			return err
		}
	}
	for k, v := range core.HyphenateKeys(p.Device) {
		if v == nil {
			delete(into, k)
			continue
		}
		into[k] = v
	}
	return nil
}

const builtin = `
default: desktop
profiles:
  phone:
    description: Typical phone in portrait
    device:
      type: screen
      width: 390
      height: 844
      orientation: portrait
      resolution: 3dppx
      aspectRatio: 390/844
      color: 8
      hover: none
      pointer: coarse
  phone-landscape:
    extends: phone
    device:
      width: 844
      height: 390
      orientation: landscape
      aspectRatio: 844/390
  tablet:
    description: Tablet in portrait
    device:
      type: screen
      width: 820
      height: 1180
      orientation: portrait
      resolution: 2dppx
      aspectRatio: 820/1180
      color: 8
      hover: none
      pointer: coarse
  desktop:
    description: Laptop or desktop browser window
    device:
      type: screen
      width: 1440
      height: 900
      orientation: landscape
      resolution: 1dppx
      aspectRatio: 16/10
      color: 8
      hover: hover
      pointer: fine
  print:
    description: A4 page
    device:
      type: print
      width: 210mm
      height: 297mm
      orientation: portrait
      resolution: 300dpi
      color: 0
`

var (
	builtinOnce sync.Once
	builtinSet  *Set
)

// Builtin returns the profiles shipped with mediamux. The set is shared;
// callers must not modify it.
func Builtin() *Set {
	builtinOnce.Do(func() {
		s, err := Parse([]byte(builtin))
		if err != nil {
			panic(err)
		}
		builtinSet = s
	})
	return builtinSet
}
