package pipeline

import (
	"strings"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/validation"
)

// Config is the pipeline section of the pipekit configuration.
type Config struct {
	Name            string `yaml:"name" mapstructure:"name" validate:"required"`
	CancelBehaviour string `yaml:"cancel_behaviour" mapstructure:"cancel_behaviour" validate:"omitempty,oneof=uncancellable discard convert return"`
	Cancellable     bool   `yaml:"cancellable" mapstructure:"cancellable"`
	Tracing         bool   `yaml:"tracing" mapstructure:"tracing"`
	Metrics         bool   `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults applies default values to the pipeline configuration.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	c.CancelBehaviour = strings.ToLower(strings.TrimSpace(c.CancelBehaviour))
	if c.CancelBehaviour == "" {
		c.CancelBehaviour = Uncancellable.String()
	}
}

// Validate validates the pipeline configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Options converts the configuration into pipeline options. Metrics are
// created on the global meter provider.
func (c *Config) Options() ([]Option, error) {
	b, err := ParseCancelBehaviour(c.CancelBehaviour)
	if err != nil {
		return nil, errors.InvalidConfig(err.Error())
	}

	opts := []Option{
		WithName(c.Name),
		WithCancelBehaviour(b),
		WithCancellable(c.Cancellable),
	}
	if c.Tracing {
		opts = append(opts, WithTracing())
	}
	if c.Metrics {
		m, err := observability.NewMetrics(observability.Meter(c.Name))
		if err != nil {
			return nil, errors.Internal(err)
		}
		opts = append(opts, WithMetrics(m))
	}
	return opts, nil
}

// FromConfig creates a pipeline from configuration. opts are applied after
// the configured options and take precedence.
func FromConfig[T any](cfg Config, opts ...Option) (*Pipeline[T, T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New[T](append(base, opts...)...), nil
}
