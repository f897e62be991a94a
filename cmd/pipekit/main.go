// Command pipekit runs the built-in example pipelines against inputs given on
// the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipekit/version"
)

const serviceName = "pipekit"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Run composable typed pipelines",
		Long: `pipekit runs the bundled example pipelines over the inputs given on the
command line. Each input is processed independently; the cancellation
behaviour and telemetry come from the configuration file, PIPEKIT_
environment variables, or flags.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "path to a .env file")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
