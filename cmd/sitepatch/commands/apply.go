package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/sitepatch/cmd/sitepatch/opts"
	"github.com/walteh/sitepatch/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(root *opts.RootOpts) *cobra.Command {
	var run opts.RunOpts

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the configured patches",
		Long: `Apply loads the config file and rewrites every matched file.
It will:
1. Expand each patch's file globs under the site root
2. Apply every edit to every file in memory
3. Write the changed files only if every edit succeeded`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "apply").Logger().WithContext(ctx)
			cmd.SetContext(ctx)

			cfg, err := config.Load(ctx, root.ConfigFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			return runConfig(cmd, cfg.String(), cfg, run)
		},
	}

	addRunFlags(cmd, &run)

	return cmd
}
