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
package status

import (
	"fmt"
	"strings"
)

// FileFormatter defines how file outcomes are rendered for log messages
type FileFormatter interface {
	// FormatFileOperation formats a file outcome
	FormatFileOperation(info FileInfo) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a file outcome with emojis
func (f *DefaultFileFormatter) FormatFileOperation(info FileInfo) string {
	var msg string
	switch info.Status {
	case StatusModified:
		msg = fmt.Sprintf("📝 Patched %s (%s)", info.Path, plural(info.Applied, "edit"))
	case StatusPlanned:
		msg = fmt.Sprintf("🔍 Would patch %s (%s)", info.Path, plural(info.Applied, "edit"))
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s: %s", info.Path, f.FormatError(info.Error))
	case StatusAborted:
		msg = fmt.Sprintf("⏭️  Not written %s", info.Path)
	default:
		msg = fmt.Sprintf("👍 Unchanged %s", info.Path)
	}

	if len(info.Skipped) > 0 {
		msg += fmt.Sprintf(", skipped %s", strings.Join(info.Skipped, ", "))
	}
	return msg
}

// FormatError formats an error message
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
