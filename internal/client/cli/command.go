package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nikbrowser/nikbrowser/internal/client/config"
	"github.com/nikbrowser/nikbrowser/internal/logging"
	"github.com/spf13/cobra"
)

// appFactory is a test seam that builds the App for a command.
var appFactory = func(ctx context.Context, cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	return NewApp(ctx, cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
}

// NewRootCommand builds the nikbrowser command tree. Without a subcommand
// it runs the interactive shell.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "nikbrowser",
		Short: "Nikbrowser client: search, bookmarks, mail and settings from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				a.Run(ctx)
				return nil
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newWhoAmICmd(),
		newSearchCmd(),
		newExportCmd(),
		newImportCmd(),
	)
	return root
}

// withApp builds the App, runs fn and releases the App. One-shot commands
// wait for session verification before fn runs.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := appFactory(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.log.Warn(ctx, "close failed", "err", cerr)
		}
	}()

	if cmd != cmd.Root() {
		<-a.startSession(ctx)
	}
	return fn(ctx, a)
}

func newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				return a.WhoAmI(ctx)
			})
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [@engine] <query...>",
		Short: "Print the results URL for a query and record it in the search history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				return a.Search(ctx, args)
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file|s3://bucket/key]",
		Short: "Export bookmarks and settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				return a.Export(ctx, args)
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|s3://bucket/key>",
		Short: "Import bookmarks and settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				return a.Import(ctx, args)
			})
		},
	}
}

// Execute runs the root command and reports a failure on stderr.
func Execute(ctx context.Context, args []string, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// Main is the process entry point used by cmd/nikbrowser.
func Main(ctx context.Context) int {
	return Execute(ctx, os.Args[1:], os.Stderr)
}
