// Package validation validates pipekit configuration.
//
// Struct tag validation uses go-playground/validator and reports failures as an
// INVALID_CONFIG *errors.AppError whose Details["fields"] lists every offending
// field by its mapstructure key:
//
//	type Config struct {
//	    Name string `mapstructure:"name" validate:"required"`
//	}
//	err := validation.Validate(cfg)
//
// The programmatic Validator collects errors for checks that tags cannot express:
//
//	v := validation.New()
//	v.Required("name", cfg.Name).OneOf("environment", cfg.Environment, envs)
//	err := v.Validate()
package validation
