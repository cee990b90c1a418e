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

package text

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestBlockReplacer_Apply(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		rules        []Rule
		want         string
		wantApplied  int
		wantSkipped  []string
		wantModified bool
		wantErr      error
		wantErrText  string
	}{
		{
			name:    "single_literal",
			content: "Hello World",
			rules: []Rule{
				{Name: "greet", Locator: Literal{Target: "World"}, Replacement: "Universe"},
			},
			want:         "Hello Universe",
			wantApplied:  1,
			wantModified: true,
		},
		{
			name:    "rules_see_previous_output",
			content: "<body>\n    <!-- HEADER -->",
			rules: []Rule{
				{Name: "toggle", Locator: Literal{Target: "<body>\n"}, Replacement: "<body>\n    <button id=\"theme-toggle\"></button>\n"},
				{Name: "button", Locator: Literal{Target: "<button id=\"theme-toggle\">"}, Replacement: "<button id=\"theme-toggle\" class=\"theme-toggle\">"},
			},
			want:         "<body>\n    <button id=\"theme-toggle\" class=\"theme-toggle\"></button>\n    <!-- HEADER -->",
			wantApplied:  2,
			wantModified: true,
		},
		{
			name:    "literal_and_region",
			content: "<head></head><!-- S -->old</section>",
			rules: []Rule{
				{Locator: Literal{Target: "</head>"}, Replacement: "<script></script></head>"},
				{Locator: Delimited{Start: "<!-- S -->", End: "</section>"}, Replacement: "new"},
			},
			want:         "<head><script></script></head>new",
			wantApplied:  2,
			wantModified: true,
		},
		{
			name:    "optional_rule_skipped",
			content: "Hello World",
			rules: []Rule{
				{Name: "missing", Locator: Literal{Target: "Goodbye"}, Replacement: "Hi", Optional: true},
				{Name: "greet", Locator: Literal{Target: "Hello"}, Replacement: "Hi"},
			},
			want:         "Hi World",
			wantApplied:  1,
			wantSkipped:  []string{"missing"},
			wantModified: true,
		},
		{
			name:    "optional_unterminated_still_fails",
			content: "A<start>B",
			rules: []Rule{
				{Name: "block", Locator: Delimited{Start: "<start>", End: "<end>"}, Replacement: "X", Optional: true},
			},
			wantErr:     ErrUnterminatedRegion,
			wantErrText: "rule block",
		},
		{
			name:    "required_rule_missing",
			content: "Hello World",
			rules: []Rule{
				{Name: "greet", Locator: Literal{Target: "Hello"}, Replacement: "Hi"},
				{Locator: Literal{Target: "Goodbye"}, Replacement: "Bye"},
			},
			wantErr:     ErrNoMatchFound,
			wantErrText: "rule #1",
		},
		{
			name:    "identity_replacement",
			content: "same",
			rules: []Rule{
				{Locator: Literal{Target: "same"}, Replacement: "same"},
			},
			want:         "same",
			wantApplied:  1,
			wantModified: false,
		},
		{
			name:         "empty_rules",
			content:      "Hello World",
			rules:        []Rule{},
			want:         "Hello World",
			wantModified: false,
		},
	}

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacer := NewBlockReplacer()
			result, err := replacer.Apply(ctx, Document(tt.content), tt.rules)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "error should be %v, got %v", tt.wantErr, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.content, result.Original.String())
			assert.Equal(t, tt.want, result.Modified.String())
			assert.Equal(t, tt.wantApplied, result.Applied)
			assert.Equal(t, tt.wantSkipped, result.Skipped)
			assert.Equal(t, tt.wantModified, result.WasModified())
		})
	}
}

func TestBlockReplacer_ApplyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBlockReplacer().Apply(ctx, Document("abc"), []Rule{
		{Locator: Literal{Target: "a"}, Replacement: "b"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBlockReplacer_ValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []Rule
		wantError string
	}{
		{
			name: "valid_rules",
			rules: []Rule{
				{Locator: Literal{Target: "foo"}, Replacement: "bar"},
				{Locator: Delimited{Start: "<a>", End: "</a>"}},
			},
		},
		{
			name: "missing_locator",
			rules: []Rule{
				{Name: "nothing", Replacement: "bar"},
			},
			wantError: "rule nothing: locator is required",
		},
		{
			name: "empty_literal",
			rules: []Rule{
				{Locator: Literal{}, Replacement: "bar"},
			},
			wantError: "rule #0: literal target: empty locator",
		},
		{
			name: "empty_end_marker",
			rules: []Rule{
				{Locator: Literal{Target: "ok"}},
				{Locator: Delimited{Start: "<a>"}},
			},
			wantError: "rule #1: region markers: empty locator",
		},
		{
			name:  "empty_rules",
			rules: []Rule{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBlockReplacer().ValidateRules(tt.rules)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
		})
	}
}
