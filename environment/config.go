package environment

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Config holds source-agnostic configuration.
// Source plugins extract the fields they need.
type Config struct {
	// Brokers is a list of broker addresses (e.g., "nats://localhost:4222").
	Brokers []string `mapstructure:"brokers" validate:"required,min=1,dive,required"`

	// Topic is the subject, topic or exchange carrying device descriptions.
	Topic string `mapstructure:"topic" validate:"required"`

	// Group is the consumer group ID, where the broker has one.
	Group string `mapstructure:"group"`

	// Extra holds plugin-specific configuration.
	Extra map[string]any `mapstructure:"extra"`
}

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("mediamux: invalid environment config")

	// ErrUnknownEnvironment is returned by Create for unregistered names.
	ErrUnknownEnvironment = errors.New("mediamux: unknown environment")
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the fields broker-backed sources need.
func (c Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidConfig, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DecodeExtra decodes cfg.Extra into out, a pointer to a struct tagged
// with `mapstructure`, and validates it. Strings are coerced to numbers,
// bools and durations where needed.
func (c Config) DecodeExtra(out any) error {
	if len(c.Extra) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(c.Extra); err != nil {
		return fmt.Errorf("%w: extra: %v", ErrInvalidConfig, err)
	}
	if err := validatorInstance().Struct(out); err != nil {
		return fmt.Errorf("%w: extra: %v", ErrInvalidConfig, err)
	}
	return nil
}
