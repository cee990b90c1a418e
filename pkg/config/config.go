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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/sitepatch/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🧱 Region marks a block by its opening and closing text, both included
type Region struct {
	Start string `json:"start" yaml:"start" hcl:"start"`
	End   string `json:"end" yaml:"end" hcl:"end"`
}

// ✏️ Edit is one block replacement inside a file
type Edit struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" hcl:"name,label"`

	// exactly one of Literal or Region
	Literal string  `json:"literal,omitempty" yaml:"literal,omitempty" hcl:"literal,optional"`
	Region  *Region `json:"region,omitempty" yaml:"region,omitempty" hcl:"region,block"`

	// exactly one of Replacement or ReplacementFile
	Replacement     *string `json:"replacement,omitempty" yaml:"replacement,omitempty" hcl:"replacement,optional"`
	ReplacementFile string  `json:"replacement_file,omitempty" yaml:"replacement_file,omitempty" hcl:"replacement_file,optional"`

	Trim     bool `json:"trim,omitempty" yaml:"trim,omitempty" hcl:"trim,optional"`
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty" hcl:"optional,optional"`
}

// 📦 Patch groups the edits applied to a set of files
type Patch struct {
	Name  string   `json:"name,omitempty" yaml:"name,omitempty" hcl:"name,label"`
	Files []string `json:"files" yaml:"files" hcl:"files"`
	Edits []Edit   `json:"edits" yaml:"edits" hcl:"edit,block"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Root    string  `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`
	Backup  bool    `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`
	Async   bool    `json:"async,omitempty" yaml:"async,omitempty" hcl:"async,optional"`
	Patches []Patch `json:"patches" yaml:"patches" hcl:"patch,block"`

	location string
}

// Location returns the path the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p, err := ParserFor(path)
	if err != nil {
		return nil, err
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.location = path
	cfg.Root = resolveRoot(path, cfg.Root)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Str("root", cfg.Root).Int("patches", len(cfg.Patches)).Msg("configuration loaded")

	return cfg, nil
}

// resolveRoot makes a relative root relative to the config file's directory
func resolveRoot(configPath, root string) string {
	dir := filepath.Dir(configPath)
	if root == "" {
		return filepath.Clean(dir)
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(dir, root)
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if len(cfg.Patches) == 0 {
		return errors.Errorf("at least one patch is required")
	}

	for i := range cfg.Patches {
		p := &cfg.Patches[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("patch-%d", i)
		}
		if err := p.validate(); err != nil {
			return errors.Errorf("patch %s: %w", p.Name, err)
		}
	}

	if cfg.Root == "" {
		cfg.Root = "."
	}
	cfg.Root = filepath.Clean(cfg.Root)

	return nil
}

func (p *Patch) validate() error {
	if len(p.Files) == 0 {
		return errors.Errorf("files is required")
	}
	for _, f := range p.Files {
		if strings.TrimSpace(f) == "" {
			return errors.Errorf("files must not contain empty entries")
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(f)) {
			return errors.Errorf("invalid file pattern %q", f)
		}
	}

	if len(p.Edits) == 0 {
		return errors.Errorf("at least one edit is required")
	}
	for i := range p.Edits {
		e := &p.Edits[i]
		if e.Name == "" {
			e.Name = fmt.Sprintf("edit-%d", i)
		}
		if err := e.validate(); err != nil {
			return errors.Errorf("edit %s: %w", e.Name, err)
		}
	}

	return nil
}

func (e *Edit) validate() error {
	switch {
	case e.Literal != "" && e.Region != nil:
		return errors.Errorf("literal and region are mutually exclusive")
	case e.Literal == "" && e.Region == nil:
		return errors.Errorf("one of literal or region is required")
	case e.Region != nil && e.Region.Start == "":
		return errors.Errorf("region.start is required")
	case e.Region != nil && e.Region.End == "":
		return errors.Errorf("region.end is required")
	}

	switch {
	case e.Replacement != nil && e.ReplacementFile != "":
		return errors.Errorf("replacement and replacement_file are mutually exclusive")
	case e.Replacement == nil && e.ReplacementFile == "":
		return errors.Errorf("one of replacement or replacement_file is required")
	}

	return nil
}

// Locator returns the text locator for the edit
func (e Edit) Locator() text.Locator {
	if e.Region != nil {
		return text.Delimited{Start: e.Region.Start, End: e.Region.End}
	}
	return text.Literal{Target: e.Literal}
}

// 📖 FileReader reads files relative to the site root
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// 🔄 Rules resolves a patch's edits into replacement rules, reading any
// replacement files through files.
func (p Patch) Rules(ctx context.Context, files FileReader) ([]text.Rule, error) {
	rules := make([]text.Rule, 0, len(p.Edits))
	for _, e := range p.Edits {
		replacement, err := e.resolveReplacement(ctx, files)
		if err != nil {
			return nil, errors.Errorf("patch %s: edit %s: %w", p.Name, e.Name, err)
		}

		rules = append(rules, text.Rule{
			Name:        p.Name + "/" + e.Name,
			Locator:     e.Locator(),
			Replacement: replacement,
			Optional:    e.Optional,
		})
	}
	return rules, nil
}

func (e Edit) resolveReplacement(ctx context.Context, files FileReader) (string, error) {
	var replacement string
	if e.Replacement != nil {
		replacement = *e.Replacement
	} else {
		data, err := files.ReadFile(ctx, e.ReplacementFile)
		if err != nil {
			return "", errors.Errorf("reading replacement file: %w", err)
		}
		replacement = string(data)
	}

	if e.Trim {
		replacement = strings.TrimSpace(replacement)
	}
	return replacement, nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	edits := 0
	for _, p := range cfg.Patches {
		edits += len(p.Edits)
	}
	return fmt.Sprintf("%s: %d patches, %d edits", cfg.Root, len(cfg.Patches), edits)
}
