package commands

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/sitepatch/cmd/sitepatch/opts"
	"github.com/walteh/sitepatch/pkg/config"
	"github.com/walteh/sitepatch/pkg/log"
	"github.com/walteh/sitepatch/pkg/operation"
	"github.com/walteh/sitepatch/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// addRunFlags adds the flags shared by commands that patch files
func addRunFlags(cmd *cobra.Command, run *opts.RunOpts) {
	cmd.Flags().BoolVar(&run.DryRun, "dry-run", false, "apply edits in memory without writing any file")
	cmd.Flags().BoolVar(&run.Async, "async", false, "transform files concurrently")
	cmd.Flags().BoolVar(&run.Backup, "backup", false, "keep a .bak copy of every file before writing it")
}

// runConfig applies cfg and prints a one-line summary
func runConfig(cmd *cobra.Command, title string, cfg *config.Config, run opts.RunOpts) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)
	logger.Header(title)

	o := run.Options()
	o.Files = status.New(cfg.Root, zerolog.Ctx(ctx))
	o.Logger = logger

	infos, err := operation.Apply(ctx, cfg, o)
	if err != nil {
		if !run.DryRun {
			logger.LogNewline()
			logger.Errorf("no files were written")
		}
		return errors.Errorf("applying patches: %w", err)
	}

	changed := 0
	for _, info := range infos {
		if info.Status == status.StatusModified || info.Status == status.StatusPlanned {
			changed++
		}
		if len(info.Skipped) > 0 {
			logger.Warningf("%s: optional edits not found: %s", info.Path, strings.Join(info.Skipped, ", "))
		}
	}

	logger.LogNewline()
	if run.DryRun {
		logger.Successf("dry run complete, %d of %d files would change", changed, len(infos))
	} else {
		logger.Successf("patched %d of %d files", changed, len(infos))
	}
	return nil
}
