// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/walteh/sitepatch/pkg/config"
	"github.com/walteh/sitepatch/pkg/log"
	"github.com/walteh/sitepatch/pkg/status"
	"github.com/walteh/sitepatch/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🗄️ FileStore is the site storage a Runner reads from and writes to.
// *status.Manager implements it.
type FileStore interface {
	config.FileReader
	BaseDir() string
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) error
	RemoveBackup(ctx context.Context, path string) error
	TrackFile(ctx context.Context, info status.FileInfo)
}

var _ FileStore = (*status.Manager)(nil)

// ⚙️ Options configures a Runner
type Options struct {
	Files    FileStore       // Storage rooted at the site
	Replacer text.Replacer   // Defaults to text.NewBlockReplacer
	Logger   *log.Logger     // Console reporting, optional
	Async    bool            // Transform files concurrently
	Backup   bool            // Keep <file>.bak before writing
	DryRun   bool            // Transform only, never write
}

// 🏃 Runner executes a plan in two phases: transform every file in memory,
// then write the changed ones only if every transform succeeded.
type Runner struct {
	opts Options
}

// 🏗️ NewRunner creates a new runner
func NewRunner(opts Options) *Runner {
	if opts.Replacer == nil {
		opts.Replacer = text.NewBlockReplacer()
	}
	return &Runner{opts: opts}
}

// outcome is the in-memory result of transforming one file
type outcome struct {
	task     Task
	original []byte
	result   *text.Result
	written  bool
	err      error
}

// 🏃 Run executes the plan and returns one FileInfo per task in plan order
func (r *Runner) Run(ctx context.Context, tasks []Task) ([]status.FileInfo, error) {
	if r.opts.Logger != nil {
		r.opts.Logger.StartRun(ctx, log.RunOperation{
			Root:   r.opts.Files.BaseDir(),
			Files:  len(tasks),
			DryRun: r.opts.DryRun,
		})
		defer r.opts.Logger.EndRun(ctx)
	}

	outcomes, err := r.transform(ctx, tasks)
	if err != nil {
		r.report(ctx, outcomes)
		return r.infos(outcomes), err
	}

	if !r.opts.DryRun {
		if err := r.commit(ctx, outcomes); err != nil {
			r.report(ctx, outcomes)
			return r.infos(outcomes), err
		}
	}

	r.report(ctx, outcomes)
	return r.infos(outcomes), nil
}

// transform reads and rewrites every file in memory. All files are
// attempted so every mismatch is reported at once.
func (r *Runner) transform(ctx context.Context, tasks []Task) ([]*outcome, error) {
	outcomes := make([]*outcome, len(tasks))
	for i, task := range tasks {
		outcomes[i] = &outcome{task: task}
	}

	if r.opts.Async {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, o := range outcomes {
			g.Go(func() error {
				r.transformOne(ctx, o)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, o := range outcomes {
			r.transformOne(ctx, o)
		}
	}

	var errs []error
	for _, o := range outcomes {
		if o.err != nil {
			errs = append(errs, o.err)
		}
	}
	if len(errs) > 0 {
		return outcomes, errors.Errorf("patching %d of %d files failed: %w", len(errs), len(tasks), errors.Join(errs...))
	}
	return outcomes, nil
}

func (r *Runner) transformOne(ctx context.Context, o *outcome) {
	data, err := r.opts.Files.ReadFile(ctx, o.task.Path)
	if err != nil {
		o.err = errors.Errorf("reading %s: %w", o.task.Path, err)
		return
	}
	o.original = data

	res, err := r.opts.Replacer.Apply(ctx, text.Document(data), o.task.Rules)
	if err != nil {
		o.err = errors.Errorf("%s: %w", o.task.Path, err)
		return
	}
	o.result = res
}

// commit writes changed files. A failed write restores the files already
// written from their in-memory originals and drops the backups made this run.
func (r *Runner) commit(ctx context.Context, outcomes []*outcome) error {
	logger := zerolog.Ctx(ctx)

	var written []*outcome
	for _, o := range outcomes {
		if !o.result.WasModified() {
			continue
		}

		if err := r.write(ctx, o); err != nil {
			o.err = err
			for _, w := range written {
				if rerr := r.opts.Files.WriteFileAtomic(ctx, w.task.Path, w.original); rerr != nil {
					logger.Error().Err(rerr).Str("path", w.task.Path).Msg("restoring file after failed write")
					continue
				}
				w.written = false
				r.dropBackup(ctx, w)
			}
			return errors.Errorf("writing %s: %w", o.task.Path, err)
		}
		o.written = true
		written = append(written, o)
	}

	return nil
}

func (r *Runner) write(ctx context.Context, o *outcome) error {
	if r.opts.Backup {
		if err := r.opts.Files.BackupFile(ctx, o.task.Path); err != nil {
			return err
		}
	}
	if err := r.opts.Files.WriteFileAtomic(ctx, o.task.Path, []byte(o.result.Modified)); err != nil {
		r.dropBackup(ctx, o)
		return err
	}
	return nil
}

func (r *Runner) dropBackup(ctx context.Context, o *outcome) {
	if !r.opts.Backup {
		return
	}
	if err := r.opts.Files.RemoveBackup(ctx, o.task.Path); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", o.task.Path).Msg("removing backup after failed write")
	}
}

// report tracks and logs every outcome
func (r *Runner) report(ctx context.Context, outcomes []*outcome) {
	for _, info := range r.infos(outcomes) {
		r.opts.Files.TrackFile(ctx, info)
		if r.opts.Logger != nil {
			r.opts.Logger.LogFile(ctx, info)
		}
	}
}

func (r *Runner) infos(outcomes []*outcome) []status.FileInfo {
	infos := make([]status.FileInfo, 0, len(outcomes))
	for _, o := range outcomes {
		info := status.FileInfo{Path: o.task.Path}

		switch {
		case o.err != nil:
			info.Status = status.StatusFailed
			info.Error = o.err
		case o.result == nil:
			info.Status = status.StatusUnknown
		case !o.result.WasModified():
			info.Status = status.StatusUnchanged
		case r.opts.DryRun:
			info.Status = status.StatusPlanned
		case o.written:
			info.Status = status.StatusModified
		default:
			info.Status = status.StatusAborted
		}

		if o.result != nil {
			info.Applied = o.result.Applied
			info.Skipped = o.result.Skipped
		}
		switch {
		case info.Status == status.StatusModified:
			info.Checksum = status.Checksum([]byte(o.result.Modified))
		case o.original != nil:
			info.Checksum = status.Checksum(o.original)
		}

		infos = append(infos, info)
	}
	return infos
}
