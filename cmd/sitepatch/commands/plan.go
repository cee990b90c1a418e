package commands

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/sitepatch/cmd/sitepatch/opts"
	"github.com/walteh/sitepatch/pkg/config"
	"github.com/walteh/sitepatch/pkg/log"
	"github.com/walteh/sitepatch/pkg/operation"
	"github.com/walteh/sitepatch/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewPlanCmd creates a new plan command
func NewPlanCmd(root *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which edits apply to which files",
		Long: `Plan expands the configured globs and prints every file with the edits
that would run against it. Nothing is read beyond replacement files and
nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx, root.ConfigFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			tasks, err := operation.Plan(ctx, cfg, status.New(cfg.Root, zerolog.Ctx(ctx)))
			if err != nil {
				return errors.Errorf("planning: %w", err)
			}

			log.FromContext(ctx).Infof("%s: %d files planned", cfg, len(tasks))

			data := pterm.TableData{{"File", "Edits", "Names"}}
			for _, task := range tasks {
				names := make([]string, 0, len(task.Rules))
				for _, rule := range task.Rules {
					names = append(names, rule.Name)
				}
				data = append(data, []string{task.Path, strconv.Itoa(len(task.Rules)), strings.Join(names, ", ")})
			}

			if err := pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render(); err != nil {
				return errors.Errorf("rendering plan: %w", err)
			}
			return nil
		},
	}

	return cmd
}
