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
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser decodes the body of a config file
type Parser interface {
	Parse(ctx context.Context, data []byte) (*Config, error)
}

// parsers maps a lower-case file extension, dot included, to its parser
var parsers = map[string]Parser{}

// 📝 Register binds p to each of the given extensions, such as ".yaml"
func Register(p Parser, exts ...string) {
	for _, ext := range exts {
		parsers[strings.ToLower(ext)] = p
	}
}

// Extensions lists the registered extensions in order
func Extensions() []string {
	exts := make([]string, 0, len(parsers))
	for ext := range parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// 🎯 ParserFor returns the parser registered for the extension of path
func ParserFor(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := parsers[ext]
	if !ok {
		return nil, errors.Errorf("unsupported config extension %q for %s, expected one of %s",
			ext, path, strings.Join(Extensions(), ", "))
	}
	return p, nil
}
