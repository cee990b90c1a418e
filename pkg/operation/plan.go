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
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/sitepatch/pkg/config"
	"github.com/walteh/sitepatch/pkg/status"
	"github.com/walteh/sitepatch/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📋 Task is the ordered list of rules for one file
type Task struct {
	Path  string
	Rules []text.Rule
}

// 🗺️ Plan expands every patch's file patterns under the config root and
// merges the edits per file. Each file appears once; its rules keep config order.
func Plan(ctx context.Context, cfg *config.Config, files config.FileReader) ([]Task, error) {
	return planFS(ctx, cfg, os.DirFS(cfg.Root), files)
}

func planFS(ctx context.Context, cfg *config.Config, fsys fs.FS, files config.FileReader) ([]Task, error) {
	logger := zerolog.Ctx(ctx)

	var tasks []Task
	index := map[string]int{}

	for _, patch := range cfg.Patches {
		rules, err := patch.Rules(ctx, files)
		if err != nil {
			return nil, err
		}

		paths, err := expand(fsys, patch.Files)
		if err != nil {
			return nil, errors.Errorf("patch %s: %w", patch.Name, err)
		}

		for _, path := range paths {
			i, ok := index[path]
			if !ok {
				i = len(tasks)
				index[path] = i
				tasks = append(tasks, Task{Path: path})
			}
			tasks[i].Rules = append(tasks[i].Rules, rules...)
		}

		logger.Debug().Str("patch", patch.Name).Strs("files", paths).Int("rules", len(rules)).Msg("patch planned")
	}

	return tasks, nil
}

// expand resolves patterns to sorted, de-duplicated slash paths.
// A pattern that matches no file is ErrFileNotFound.
func expand(fsys fs.FS, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("%s: %w", pattern, status.ErrFileNotFound)
		}

		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	return out, nil
}
