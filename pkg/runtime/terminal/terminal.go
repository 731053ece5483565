package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/social-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/social-atlas/pkg/runtime/terminal/console"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	deps     commands.Deps
	reporter *console.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Deps   commands.Deps
	Output io.Writer
}

func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		deps:     opts.Deps,
		reporter: console.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute(ctx context.Context, args ...string) error {
	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "social-atlas",
		Short:         "Social media analytics reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewReportCmd(cli.deps, cli.reporter))
	cmd.AddCommand(commands.NewMetricsCmd(cli.deps.Catalogs, cli.reporter))

	return cmd
}
