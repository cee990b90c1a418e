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
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/sitepatch/pkg/text"
	"gitlab.com/tozd/go/errors"
)

func ptr(s string) *string { return &s }

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, dir string, cfg *Config)
	}{
		{
			name:     "valid_yaml",
			filename: "sitepatch.yaml",
			config: `
root: site
backup: true
patches:
  - name: dark-mode
    files:
      - index.html
    edits:
      - name: head
        literal: "    <link rel=\"stylesheet\" href=\"styles.css\">\n</head>"
        replacement: "    <link rel=\"stylesheet\" href=\"dark-mode.css\">\n</head>"
      - name: medidas
        region:
          start: "<!-- SECCIÓN 4: MEDIDAS DISPONIBLES -->"
          end: "</section>"
        replacement_file: medidas-nuevas.html
        trim: true
        optional: true
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, filepath.Join(dir, "site"), cfg.Root, "root should resolve against config dir")
				assert.True(t, cfg.Backup, "backup should be true")
				require.Len(t, cfg.Patches, 1)
				p := cfg.Patches[0]
				assert.Equal(t, "dark-mode", p.Name)
				assert.Equal(t, []string{"index.html"}, p.Files)
				require.Len(t, p.Edits, 2)
				assert.Equal(t, "    <link rel=\"stylesheet\" href=\"styles.css\">\n</head>", p.Edits[0].Literal)
				require.NotNil(t, p.Edits[0].Replacement)
				assert.Nil(t, p.Edits[0].Region)
				require.NotNil(t, p.Edits[1].Region)
				assert.Equal(t, "</section>", p.Edits[1].Region.End)
				assert.Equal(t, "medidas-nuevas.html", p.Edits[1].ReplacementFile)
				assert.True(t, p.Edits[1].Trim)
				assert.True(t, p.Edits[1].Optional)
			},
		},
		{
			name:     "valid_hcl",
			filename: "sitepatch.hcl",
			config: `
root  = "/srv/site"
async = true

patch "hero" {
  files = ["styles.css", "css/**/*.css"]

  edit "background" {
    literal     = ".hero {\n  background: var(--gradient-primary);\n}"
    replacement = ".hero {\n  background: url('hero-background.png');\n}"
  }

  edit "section" {
    region {
      start = "<!-- A -->"
      end   = "<!-- /A -->"
    }
    replacement = ""
  }
}
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, "/srv/site", cfg.Root, "absolute root should be kept")
				assert.True(t, cfg.Async)
				require.Len(t, cfg.Patches, 1)
				p := cfg.Patches[0]
				assert.Equal(t, "hero", p.Name)
				assert.Equal(t, []string{"styles.css", "css/**/*.css"}, p.Files)
				require.Len(t, p.Edits, 2)
				assert.Equal(t, "background", p.Edits[0].Name)
				assert.Contains(t, p.Edits[0].Literal, "var(--gradient-primary)")
				require.NotNil(t, p.Edits[1].Region)
				assert.Equal(t, "<!-- A -->", p.Edits[1].Region.Start)
				require.NotNil(t, p.Edits[1].Replacement)
				assert.Equal(t, "", *p.Edits[1].Replacement, "empty replacement deletes the region")
			},
		},
		{
			name:     "valid_json",
			filename: "sitepatch.json",
			config: `{
  "patches": [
    {
      "files": ["index.html"],
      "edits": [{"literal": "a", "replacement": "b"}]
    }
  ]
}`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, filepath.Clean(dir), cfg.Root, "root should default to config dir")
				assert.Equal(t, "patch-0", cfg.Patches[0].Name, "patch name should default")
				assert.Equal(t, "edit-0", cfg.Patches[0].Edits[0].Name, "edit name should default")
			},
		},
		{
			name:     "unknown_yaml_field",
			filename: "sitepatch.yaml",
			config: `
patches:
  - files: [index.html]
    edits:
      - literal: a
        replacement: b
        regex: true
`,
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "no_patches",
			filename:    "sitepatch.yaml",
			config:      "root: .\n",
			wantErr:     true,
			errContains: "at least one patch is required",
		},
		{
			name:     "missing_files",
			filename: "sitepatch.yaml",
			config: `
patches:
  - name: p
    edits:
      - literal: a
        replacement: b
`,
			wantErr:     true,
			errContains: "patch p: files is required",
		},
		{
			name:     "bad_glob",
			filename: "sitepatch.yaml",
			config: `
patches:
  - name: p
    files: ["[abc"]
    edits:
      - literal: a
        replacement: b
`,
			wantErr:     true,
			errContains: "invalid file pattern",
		},
		{
			name:     "literal_and_region",
			filename: "sitepatch.yaml",
			config: `
patches:
  - name: p
    files: [index.html]
    edits:
      - name: e
        literal: a
        region: {start: "<a>", end: "</a>"}
        replacement: b
`,
			wantErr:     true,
			errContains: "patch p: edit e: literal and region are mutually exclusive",
		},
		{
			name:     "region_without_end",
			filename: "sitepatch.yaml",
			config: `
patches:
  - files: [index.html]
    edits:
      - region: {start: "<a>"}
        replacement: b
`,
			wantErr:     true,
			errContains: "region.end is required",
		},
		{
			name:     "no_replacement",
			filename: "sitepatch.yaml",
			config: `
patches:
  - files: [index.html]
    edits:
      - literal: a
`,
			wantErr:     true,
			errContains: "one of replacement or replacement_file is required",
		},
		{
			name:     "both_replacements",
			filename: "sitepatch.yaml",
			config: `
patches:
  - files: [index.html]
    edits:
      - literal: a
        replacement: b
        replacement_file: c.html
`,
			wantErr:     true,
			errContains: "replacement and replacement_file are mutually exclusive",
		},
		{
			name:        "unsupported_extension",
			filename:    "sitepatch.txt",
			config:      "patches: []",
			wantErr:     true,
			errContains: "unsupported config extension",
		},
	}

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, tt.filename)
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			cfg, err := Load(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			assert.Equal(t, configPath, cfg.Location())
			if tt.check != nil {
				tt.check(t, tmpDir, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestHCLParser_Env(t *testing.T) {
	orig := environ
	defer func() { environ = orig }()
	environ = func() []string {
		return []string{"SITE_ROOT=/var/www", "BROKEN"}
	}

	cfg, err := (&HCLParser{}).Parse(context.Background(), []byte(`
root = env.SITE_ROOT

patch "p" {
  files = ["index.html"]
  edit "e" {
    literal     = "a"
    replacement = "b"
  }
}
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/www", cfg.Root)
}

func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "sitepatch.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: "SITEPATCH.YML", want: &YAMLParser{}},
		{name: "hcl_file", filename: "sitepatch.hcl", want: &HCLParser{}},
		{name: "json_file", filename: "sitepatch.json", want: &JSONParser{}},
		{name: "unknown_extension", filename: "sitepatch.txt", want: nil},
		{name: "no_extension", filename: "sitepatch", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParserFor(tt.filename)
			if tt.want == nil {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Contains(t, err.Error(), ".hcl, .json, .yaml, .yml")
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}

type mapReader map[string]string

func (m mapReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return []byte(data), nil
}

func TestPatchRules(t *testing.T) {
	patch := Patch{
		Name:  "site",
		Files: []string{"index.html"},
		Edits: []Edit{
			{Name: "head", Literal: "</head>", Replacement: ptr("<x>\n</head>")},
			{Name: "medidas", Region: &Region{Start: "<!-- S -->", End: "</section>"}, ReplacementFile: "new.html", Trim: true, Optional: true},
		},
	}

	rules, err := patch.Rules(context.Background(), mapReader{"new.html": "\n  <section>new</section>\n\n"})
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "site/head", rules[0].Name)
	assert.Equal(t, text.Literal{Target: "</head>"}, rules[0].Locator)
	assert.Equal(t, "<x>\n</head>", rules[0].Replacement)
	assert.False(t, rules[0].Optional)

	assert.Equal(t, "site/medidas", rules[1].Name)
	assert.Equal(t, text.Delimited{Start: "<!-- S -->", End: "</section>"}, rules[1].Locator)
	assert.Equal(t, "<section>new</section>", rules[1].Replacement)
	assert.True(t, rules[1].Optional)
}

func TestPatchRules_MissingReplacementFile(t *testing.T) {
	patch := Patch{
		Name:  "site",
		Edits: []Edit{{Name: "medidas", Literal: "x", ReplacementFile: "gone.html"}},
	}

	_, err := patch.Rules(context.Background(), mapReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patch site: edit medidas: reading replacement file")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Root: "/srv/site",
		Patches: []Patch{
			{Edits: []Edit{{}, {}}},
			{Edits: []Edit{{}}},
		},
	}
	assert.Equal(t, "/srv/site: 2 patches, 3 edits", cfg.String())
}
