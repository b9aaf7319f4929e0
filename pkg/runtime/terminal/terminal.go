package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/edw-harness/pkg/edw"
	"github.com/de-tools/edw-harness/pkg/runtime/terminal/commands"
	"github.com/de-tools/edw-harness/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry edw.Registry
	Output   io.Writer
	// LogOutput receives log lines, stderr by default
	LogOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		env: &commands.Env{
			Registry: opts.Registry,
			Reporter: export.NewReporter(opts.Output),
			LogOut:   opts.LogOutput,
		},
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background(), os.Args[1:]...)
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	cli.rootCmd.SetArgs(args)
	err := cli.rootCmd.ExecuteContext(ctx)
	if closeErr := cli.env.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "edw",
		Short:         "Warehouse lifecycle tool for benchmark runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := cli.env.Open(cmd.Context())
			cmd.SetContext(ctx)
			return err
		},
	}
	cli.env.BindFlags(cmd)

	cmd.AddCommand(commands.NewProvidersCmd(cli.env))
	cmd.AddCommand(commands.NewDescribeCmd(cli.env))
	cmd.AddCommand(commands.NewCreateCmd(cli.env))
	cmd.AddCommand(commands.NewExistsCmd(cli.env))
	cmd.AddCommand(commands.NewDeleteCmd(cli.env))
	cmd.AddCommand(commands.NewPrepareCmd(cli.env))
	cmd.AddCommand(commands.NewRunnerArgsCmd(cli.env))
	cmd.AddCommand(commands.NewVerifyCmd(cli.env))

	return cmd
}
