package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipekit/config"
	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/pipeline"
	"github.com/kbukum/pipekit/version"
)

type runFlags struct {
	behaviour string
	strict    bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <scenario> [inputs...]",
		Short: "Run a scenario over the given inputs",
		Example: `  pipekit run arith 1 2 x 4
  pipekit run cancel --cancel-behaviour convert -- 3 -1 7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, root, flags, args[0], args[1:])
		},
	}
	cmd.Flags().StringVarP(&flags.behaviour, "cancel-behaviour", "b", "", "override the configured cancel behaviour (uncancellable, discard, convert, return)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "stop at the first item that fails fatally")
	return cmd
}

func runScenario(cmd *cobra.Command, root *rootFlags, flags *runFlags, name string, inputs []string) error {
	sc, ok := findScenario(name)
	if !ok {
		return errors.New(errors.ErrCodeInvalidConfig, fmt.Sprintf("unknown scenario %q", name)).
			WithDetail("available", scenarioNames())
	}

	var loadOpts []config.LoaderOption
	if root.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(root.configFile))
	}
	if root.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(root.envFile))
	}
	cfg, err := config.Load(serviceName, loadOpts...)
	if err != nil {
		return err
	}
	if flags.behaviour != "" {
		if _, err := pipeline.ParseCancelBehaviour(flags.behaviour); err != nil {
			return errors.InvalidConfig(err.Error())
		}
		cfg.Pipeline.CancelBehaviour = flags.behaviour
	}

	logger.Init(cfg.Logging)
	info := version.Get()
	log := logger.WithComponent("cli")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := observability.Setup(ctx, cfg.Name, info.Short(), cfg.Environment, cfg.Telemetry)
	if err != nil {
		return errors.Internal(err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	log.Debug("running scenario", logger.Fields(
		"scenario", sc.name,
		"inputs", len(inputs),
		logger.FieldBehaviour, cfg.Pipeline.CancelBehaviour,
	), info.Fields())

	lines, err := sc.run(ctx, runEnv{pipeline: cfg.Pipeline, strict: flags.strict}, inputs)
	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return err
}
