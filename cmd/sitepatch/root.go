package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/sitepatch/cmd/sitepatch/commands"
	"github.com/walteh/sitepatch/cmd/sitepatch/opts"
	"github.com/walteh/sitepatch/pkg/log"
)

// newRootCmd creates the root command with every subcommand attached
func newRootCmd() *cobra.Command {
	root := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "sitepatch",
		Short: "Patch blocks of text in static site files",
		Long: `sitepatch rewrites HTML and CSS files in place by replacing literal strings
or marker-delimited blocks. Every file is patched in memory first and nothing
is written unless every edit matched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(cmd.ErrOrStderr(), root.Debug)
			ctx := logger.WithContext(cmd.Context())
			ctx = log.NewContext(ctx, log.New(cmd.OutOrStdout(), logger))
			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(rootCmd, root)

	rootCmd.AddCommand(
		commands.NewApplyCmd(root),
		commands.NewPlanCmd(root),
		commands.NewLiteralCmd(),
		commands.NewRegionCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, root *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&root.ConfigFile, "config", "c", "sitepatch.yaml", "config file path (.yaml, .yml, .hcl or .json)")
	cmd.PersistentFlags().BoolVarP(&root.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}
