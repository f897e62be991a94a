package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/pipekit/pipeline"
)

var errDivideByZero = stderrors.New("division by zero")

// runEnv carries the settings a scenario builds its pipeline from.
type runEnv struct {
	pipeline pipeline.Config
	strict   bool
}

type scenario struct {
	name        string
	description string
	run         func(ctx context.Context, env runEnv, inputs []string) ([]string, error)
}

var scenarios = []scenario{
	{"arith", "parse integers, increment and double them", runArith},
	{"tolerant", "divide 100 by each integer, mapping failures to -1", runTolerant},
	{"filter-even", "keep even integers only", runFilterEven},
	{"cancel", "stop negative integers with the configured cancel behaviour", runCancel},
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

func scenarioNames() []string {
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.name
	}
	return names
}

// parsed returns a pipeline that trims and parses each input as an integer.
// Inputs that are not integers fail the run.
func parsed(env runEnv) (*pipeline.Pipeline[string, int], error) {
	src, err := pipeline.FromConfig[string](env.pipeline)
	if err != nil {
		return nil, err
	}
	if err := src.AddPipe(pipeline.Transform("trim", strings.TrimSpace)); err != nil {
		return nil, err
	}
	return pipeline.TryConvertTo(src, strconv.Atoi), nil
}

func runArith(ctx context.Context, env runEnv, inputs []string) ([]string, error) {
	p, err := parsed(env)
	if err != nil {
		return nil, err
	}
	err = p.AddPipes(
		pipeline.Transform("inc", func(v int) int { return v + 1 }),
		pipeline.Transform("double", func(v int) int { return v * 2 }),
	)
	if err != nil {
		return nil, err
	}
	return collect(ctx, env, p, inputs)
}

func runTolerant(ctx context.Context, env runEnv, inputs []string) ([]string, error) {
	p, err := parsed(env)
	if err != nil {
		return nil, err
	}
	err = p.AddPipes(
		pipeline.ValueOnly("divide", func(v int) (int, error) {
			if v == 0 {
				return 0, errDivideByZero
			}
			return 100 / v, nil
		}),
		pipeline.Plain("recover", func(v int, err error) (int, error) {
			if err != nil {
				return -1, nil
			}
			return v, nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return collect(ctx, env, p, inputs)
}

func runFilterEven(ctx context.Context, env runEnv, inputs []string) ([]string, error) {
	p, err := parsed(env)
	if err != nil {
		return nil, err
	}
	err = p.AddPipe(pipeline.ValueOnly("even", func(v int) (int, error) {
		if v%2 != 0 {
			return 0, pipeline.ErrAbsent
		}
		return v, nil
	}))
	if err != nil {
		return nil, err
	}
	return collect(ctx, env, p, inputs)
}

// runCancel squares each integer and labels it. Negative integers cancel
// before the label segment is reached.
func runCancel(ctx context.Context, env runEnv, inputs []string) ([]string, error) {
	p, err := parsed(env)
	if err != nil {
		return nil, err
	}
	err = p.SetCancellable(true).AddPipes(
		pipeline.Cancellable("stop-negative", func(cancel func(), v int, err error) (int, error) {
			if v < 0 {
				cancel()
			}
			return v, err
		}),
		pipeline.Transform("square", func(v int) int { return v * v }),
	)
	if err != nil {
		return nil, err
	}

	labelled := pipeline.ConvertTo(p, func(v int) string { return "#" + strconv.Itoa(v) })
	if err := labelled.AddPipe(pipeline.Transform("mark", func(v string) string { return v + "!" })); err != nil {
		return nil, err
	}

	if env.strict {
		return collect(ctx, env, labelled, inputs)
	}
	return format(labelled.ProcessAllRaw(ctx, inputs)), nil
}

func collect[T any](ctx context.Context, env runEnv, p *pipeline.Pipeline[string, T], inputs []string) ([]string, error) {
	if !env.strict {
		return format(p.ProcessAll(ctx, inputs)), nil
	}
	values, err := p.ProcessAllStrict(ctx, inputs)
	return format(values), err
}

func format[T any](values []T) []string {
	lines := make([]string, len(values))
	for i, v := range values {
		lines[i] = fmt.Sprint(v)
	}
	return lines
}
