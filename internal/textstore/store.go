// Package textstore reads and replaces whole text files with a backup taken
// before every write and an atomic rename as the only visible mutation.
//
// Backups live next to the target as <path>.bak.<YYYYMMDDhhmmss>; a ".N"
// suffix is added when two backups land in the same second. They are kept
// until Cleanup is called, which callers do only after every store touched by
// an operation has been written successfully.
package textstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/logger"
	"github.com/spf13/afero"
)

const (
	backupInfix     = ".bak."
	timestampLayout = "20060102150405"
	defaultPerm     = 0644
)

// Store performs file operations on an afero filesystem.
type Store struct {
	fs  afero.Fs
	now func() time.Time
}

// New returns a Store over fs.
func New(fs afero.Fs) *Store {
	return &Store{fs: fs, now: time.Now}
}

// NewOS returns a Store over the real filesystem.
func NewOS() *Store {
	return New(afero.NewOsFs())
}

// Fs exposes the underlying filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// SetClock replaces the time source used for backup names.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Exists reports whether path exists.
func (s *Store) Exists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return ok && err == nil
}

// Read returns the full content of path.
func (s *Store) Read(path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", errors.FromFS("read", path, err)
	}
	return string(data), nil
}

// Backup copies path byte-for-byte to a timestamped sibling and returns the
// backup path. A missing file has nothing to back up and yields "".
func (s *Store) Backup(path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.FromFS("backup", path, err)
	}

	name := path + backupInfix + s.now().Format(timestampLayout)
	candidate := name
	for i := 1; s.Exists(candidate); i++ {
		candidate = fmt.Sprintf("%s.%d", name, i)
	}

	if err := afero.WriteFile(s.fs, candidate, data, s.mode(path)); err != nil {
		return "", errors.FromFS("backup", candidate, err)
	}
	logger.Debug("backed up %s to %s", path, candidate)
	return candidate, nil
}

// AtomicWrite replaces path with content. The content goes to a temporary
// sibling which is synced, given the original mode and renamed over path.
// On any failure the temporary file is removed and path is untouched.
func (s *Store) AtomicWrite(path, content string) error {
	dir := filepath.Dir(path)
	perm := s.mode(path)

	if !s.Exists(path) {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return errors.FromFS("write", dir, err)
		}
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.FromFS("write", path, err)
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return errors.FromFS(op, path, err)
	}

	if _, err := tmp.WriteString(content); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return errors.FromFS("write", path, err)
	}
	if err := s.fs.Chmod(tmpName, perm); err != nil {
		_ = s.fs.Remove(tmpName)
		return errors.FromFS("chmod", path, err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return errors.FromFS("rename", path, err)
	}

	logger.Debug("wrote %s (%d bytes)", path, len(content))
	return nil
}

// Backups lists the backups of path, oldest first.
func (s *Store) Backups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + backupInfix

	infos, err := afero.ReadDir(s.fs, dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.FromFS("list backups", dir, err)
	}

	var out []string
	for _, info := range infos {
		if info.IsDir() || !strings.HasPrefix(info.Name(), prefix) {
			continue
		}
		out = append(out, filepath.Join(dir, info.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Cleanup deletes every backup of path. Failures are logged, never returned;
// the number of removed backups is reported.
func (s *Store) Cleanup(path string) int {
	backups, err := s.Backups(path)
	if err != nil {
		logger.Warn("cleanup of %s backups skipped: %v", path, err)
		return 0
	}

	removed := 0
	for _, b := range backups {
		if err := s.fs.Remove(b); err != nil {
			logger.Warn("failed to remove backup %s: %v", b, err)
			continue
		}
		removed++
	}
	return removed
}

// Restore atomically replaces path with the content of backup. The backup
// must belong to path.
func (s *Store) Restore(path, backup string) error {
	if filepath.Dir(backup) != filepath.Dir(path) ||
		!strings.HasPrefix(filepath.Base(backup), filepath.Base(path)+backupInfix) {
		return errors.Validationf("%s is not a backup of %s", backup, path)
	}

	content, err := s.Read(backup)
	if err != nil {
		return err
	}
	return s.AtomicWrite(path, content)
}

func (s *Store) mode(path string) os.FileMode {
	info, err := s.fs.Stat(path)
	if err != nil {
		return defaultPerm
	}
	return info.Mode().Perm()
}
