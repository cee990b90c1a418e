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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrFileNotFound is returned when a site file does not exist
var ErrFileNotFound = errors.Base("file not found")

// 📊 FileStatus represents the outcome for a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusModified             // File was rewritten with new content
	StatusUnchanged            // Edits produced identical content
	StatusPlanned              // File would be rewritten (dry run)
	StatusFailed               // An edit or write failed
	StatusAborted              // File had changes but the run wrote nothing
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusPlanned:
		return "planned"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains metadata about a patched file
type FileInfo struct {
	Path     string     // Path relative to the site root
	Status   FileStatus // Current status
	Checksum string     // SHA-256 of the content on disk after the run
	Applied  int        // Number of edits applied
	Skipped  []string   // Optional edits that did not match
	Error    error      // Any error associated with this file
}

// 🔧 Manager reads, writes and tracks files under a site root
type Manager struct {
	baseDir   string          // Base directory for all operations
	logger    *zerolog.Logger // Logger for status updates
	formatter FileFormatter   // Formatter for status messages

	mu    sync.RWMutex
	files map[string]FileInfo
}

// 🏭 New creates a new status manager
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// BaseDir returns the site root
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// 🔒 absPath returns the absolute path for a path relative to the root
func (m *Manager) absPath(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." {
		return "", errors.Errorf("path is required")
	}
	if !filepath.IsLocal(clean) {
		return "", errors.Errorf("path %q escapes root %s", path, m.baseDir)
	}
	return filepath.Join(m.baseDir, clean), nil
}

// Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ReadFile reads a whole file. A missing file yields ErrFileNotFound.
func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	absPath, err := m.absPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("%s: %w", path, ErrFileNotFound)
		}
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	m.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("file read")
	return data, nil
}

// WriteFileAtomic replaces a file in full through a temp file and rename,
// keeping the permissions of the existing file.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath, err := m.absPath(path)
	if err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(absPath); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("setting file mode: %w", err)
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	m.logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return nil
}

// BackupFile copies a file to <path>.bak
func (m *Manager) BackupFile(ctx context.Context, path string) error {
	absPath, err := m.absPath(path)
	if err != nil {
		return err
	}

	if err := copyFile(absPath, absPath+".bak"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Errorf("%s: %w", path, ErrFileNotFound)
		}
		return errors.Errorf("creating backup: %w", err)
	}

	m.logger.Debug().Str("path", path).Msg("backup created")
	return nil
}

// RemoveBackup deletes <path>.bak. A missing backup is not an error.
func (m *Manager) RemoveBackup(ctx context.Context, path string) error {
	absPath, err := m.absPath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath + ".bak"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("removing backup: %w", err)
	}

	m.logger.Debug().Str("path", path).Msg("backup removed")
	return nil
}

// TrackFile records the outcome for a file
func (m *Manager) TrackFile(ctx context.Context, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[info.Path] = info

	msg := m.formatter.FormatFileOperation(info)
	if info.Error != nil {
		m.logger.Error().Str("path", info.Path).Err(info.Error).Msg(msg)
		return
	}
	m.logger.Debug().Str("path", info.Path).Str("status", info.Status.String()).Msg(msg)
}

// GetFileInfo returns the tracked outcome for a file
func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns all tracked files sorted by path
func (m *Manager) ListFiles(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("reading source file info: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}

	return destination.Close()
}
