package commands

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/sitepatch/cmd/sitepatch/opts"
	"github.com/walteh/sitepatch/pkg/config"
	"github.com/walteh/sitepatch/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// replacementFlags holds the two ways of passing a replacement on the
// command line. Exactly one must be set.
type replacementFlags struct {
	value string
	file  string
	trim  bool
}

func (r *replacementFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.value, "replacement", "", "replacement text")
	cmd.Flags().StringVar(&r.file, "replacement-file", "", "file holding the replacement text")
	cmd.Flags().BoolVar(&r.trim, "trim", false, "trim surrounding whitespace from the replacement")
	cmd.MarkFlagsMutuallyExclusive("replacement", "replacement-file")
	cmd.MarkFlagsOneRequired("replacement", "replacement-file")
}

// resolve returns the replacement text. A replacement file is read relative
// to the working directory, not the patched file.
func (r *replacementFlags) resolve() (*string, error) {
	if r.file == "" {
		value := r.value
		return &value, nil
	}

	data, err := os.ReadFile(r.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("reading replacement file %s: %w", r.file, status.ErrFileNotFound)
		}
		return nil, errors.Errorf("reading replacement file: %w", err)
	}
	value := string(data)
	return &value, nil
}

// globEscaper makes a file name match itself literally
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `{`, `\{`)

// singleFileConfig builds a one-patch config that applies edit to path
func singleFileConfig(name, path string, edit config.Edit) (*config.Config, error) {
	cfg := &config.Config{
		Root: filepath.Dir(path),
		Patches: []config.Patch{{
			Name:  name,
			Files: []string{globEscaper.Replace(filepath.Base(path))},
			Edits: []config.Edit{edit},
		}},
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating edit: %w", err)
	}
	return cfg, nil
}

// NewLiteralCmd creates a new literal command
func NewLiteralCmd() *cobra.Command {
	var (
		run         opts.RunOpts
		replacement replacementFlags
		target      string
	)

	cmd := &cobra.Command{
		Use:   "literal <file>",
		Short: "Replace the first occurrence of a literal string in a file",
		Example: `  sitepatch literal index.html --target '</head>' \
    --replacement '<link rel="stylesheet" href="dark.css"></head>'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := replacement.resolve()
			if err != nil {
				return err
			}

			cfg, err := singleFileConfig("literal", args[0], config.Edit{
				Name:        "target",
				Literal:     target,
				Replacement: value,
				Trim:        replacement.trim,
			})
			if err != nil {
				return err
			}

			return runConfig(cmd, cmd.Name()+" "+args[0], cfg, run)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "literal text to replace")
	_ = cmd.MarkFlagRequired("target")
	replacement.add(cmd)
	addRunFlags(cmd, &run)

	return cmd
}

// NewRegionCmd creates a new region command
func NewRegionCmd() *cobra.Command {
	var (
		run         opts.RunOpts
		replacement replacementFlags
		start, end  string
	)

	cmd := &cobra.Command{
		Use:   "region <file>",
		Short: "Replace a block from a start marker through the nearest end marker",
		Long: `Region finds the first occurrence of the start marker and the nearest end
marker after it, then replaces the whole block, both markers included.`,
		Example: `  sitepatch region index.html --start '<section id="medidas">' --end '</section>' \
    --replacement-file medidas-nuevas.html --trim`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := replacement.resolve()
			if err != nil {
				return err
			}

			cfg, err := singleFileConfig("region", args[0], config.Edit{
				Name:        "block",
				Region:      &config.Region{Start: start, End: end},
				Replacement: value,
				Trim:        replacement.trim,
			})
			if err != nil {
				return err
			}

			return runConfig(cmd, cmd.Name()+" "+args[0], cfg, run)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "marker that opens the block")
	cmd.Flags().StringVar(&end, "end", "", "marker that closes the block")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	replacement.add(cmd)
	addRunFlags(cmd, &run)

	return cmd
}
