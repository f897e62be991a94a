// Package config loads the pipekit configuration.
//
// Viper reads a YAML file and godotenv loads an optional .env file; both are
// located by searching the standard locations for the service name unless
// explicit paths are given. Environment variables prefixed with PIPEKIT_
// override file values, with underscores standing for nesting:
//
//	PIPEKIT_PIPELINE_CANCEL_BEHAVIOUR=discard  ->  pipeline.cancel_behaviour
//	PIPEKIT_LOGGING_LEVEL=debug                ->  logging.level
//
// # Usage
//
//	cfg, err := config.Load("pipekit", config.WithConfigFile("pipekit.yml"))
package config
