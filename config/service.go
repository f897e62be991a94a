package config

import (
	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/pipeline"
	"github.com/kbukum/pipekit/validation"
)

// ServiceConfig is the complete pipekit configuration.
//
// Example:
//
//	name: pipekit
//	environment: production
//	logging:
//	  level: info
//	  format: json
//	pipeline:
//	  name: orders
//	  cancel_behaviour: convert
//	  cancellable: true
//	telemetry:
//	  enabled: true
//	  endpoint: otel-collector:4318
type ServiceConfig struct {
	Name        string               `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string               `yaml:"version" mapstructure:"version"`
	Debug       bool                 `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	Pipeline    pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values to every section.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "pipekit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	// Propagate service name into logging so Init() uses the right tag.
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	if c.Pipeline.Name == "" {
		c.Pipeline.Name = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates every section. Field errors of all sections are
// reported together.
func (c *ServiceConfig) Validate() error {
	v := validation.New()
	v.Nested("", validation.Validate(c))
	v.Nested("logging", c.Logging.Validate())
	return v.Validate()
}

// Load loads, defaults and validates the configuration for serviceName.
func Load(serviceName string, opts ...LoaderOption) (*ServiceConfig, error) {
	cfg := &ServiceConfig{Name: serviceName}
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, errors.InvalidConfig("failed to load configuration").WithCause(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
