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

	"github.com/walteh/sitepatch/pkg/config"
	"github.com/walteh/sitepatch/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Apply plans cfg and runs it. The config's backup and async settings
// are combined with the ones already in opts.
func Apply(ctx context.Context, cfg *config.Config, opts Options) ([]status.FileInfo, error) {
	if opts.Files == nil {
		return nil, errors.Errorf("file manager is required")
	}

	tasks, err := Plan(ctx, cfg, opts.Files)
	if err != nil {
		return nil, errors.Errorf("planning: %w", err)
	}

	opts.Backup = opts.Backup || cfg.Backup
	opts.Async = opts.Async || cfg.Async

	return NewRunner(opts).Run(ctx, tasks)
}
