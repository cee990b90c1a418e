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
	"strconv"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Rule defines a single block replacement
type Rule struct {
	// Name identifies the rule in logs and errors
	Name string

	// Locator finds the region to replace
	Locator Locator

	// Replacement is the literal text written in place of the region
	Replacement string

	// Optional rules that do not match are skipped instead of failing the edit
	Optional bool
}

// Result contains the outcome of applying a set of rules
type Result struct {
	// Original is the document before any rule ran
	Original Document

	// Modified is the document after all rules ran
	Modified Document

	// Applied is the number of rules that replaced a region
	Applied int

	// Skipped lists optional rules that found no match
	Skipped []string
}

// WasModified reports whether the content changed
func (r *Result) WasModified() bool {
	return r.Original != r.Modified
}

// Replacer defines the interface for block replacement over a document
type Replacer interface {
	// Apply runs rules in order; each rule sees the output of the previous one.
	// The returned error leaves the original document as the only valid result.
	Apply(ctx context.Context, doc Document, rules []Rule) (*Result, error)

	// ValidateRules checks that all rules are usable
	ValidateRules(rules []Rule) error
}

// 🔧 BlockReplacer implements Replacer with Locator based replacement
type BlockReplacer struct{}

var _ Replacer = (*BlockReplacer)(nil)

// NewBlockReplacer creates a new BlockReplacer
func NewBlockReplacer() *BlockReplacer {
	return &BlockReplacer{}
}

// Apply implements Replacer.Apply
func (r *BlockReplacer) Apply(ctx context.Context, doc Document, rules []Rule) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if err := r.ValidateRules(rules); err != nil {
		return nil, err
	}

	result := &Result{
		Original: doc,
		Modified: doc,
	}

	for i, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("applying rules: %w", err)
		}

		next, err := Replace(result.Modified, rule.Locator, rule.Replacement)
		if err != nil {
			if rule.Optional && errors.Is(err, ErrNoMatchFound) {
				logger.Debug().Str("rule", ruleName(i, rule)).Err(err).Msg("optional rule skipped")
				result.Skipped = append(result.Skipped, ruleName(i, rule))
				continue
			}
			return nil, errors.Errorf("rule %s: %w", ruleName(i, rule), err)
		}

		logger.Debug().
			Str("rule", ruleName(i, rule)).
			Str("locator", rule.Locator.String()).
			Int("delta", next.Len()-result.Modified.Len()).
			Msg("rule applied")

		result.Modified = next
		result.Applied++
	}

	return result, nil
}

// ValidateRules implements Replacer.ValidateRules
func (r *BlockReplacer) ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		switch loc := rule.Locator.(type) {
		case nil:
			return errors.Errorf("rule %s: locator is required", ruleName(i, rule))
		case Literal:
			if loc.Target == "" {
				return errors.Errorf("rule %s: literal target: %w", ruleName(i, rule), ErrEmptyLocator)
			}
		case Delimited:
			if loc.Start == "" || loc.End == "" {
				return errors.Errorf("rule %s: region markers: %w", ruleName(i, rule), ErrEmptyLocator)
			}
		}
	}
	return nil
}

func ruleName(i int, rule Rule) string {
	if rule.Name != "" {
		return rule.Name
	}
	return "#" + strconv.Itoa(i)
}
