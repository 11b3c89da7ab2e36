package vhostconf

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/logger"
	"github.com/ksyq12/devhost/internal/ssl"
	"github.com/ksyq12/devhost/internal/template"
	"github.com/ksyq12/devhost/internal/textstore"
)

// File edits one vhost file through a text store. A missing file reads as
// empty and is created by the first Add.
type File struct {
	store    *textstore.Store
	path     string
	warnings []string
}

// NewFile returns a File for the vhost file at path.
func NewFile(store *textstore.Store, path string) *File {
	return &File{store: store, path: path}
}

// Path returns the vhost file path.
func (f *File) Path() string {
	return f.path
}

// Load reads and scans the file.
func (f *File) Load() (*Document, error) {
	content, err := f.store.Read(f.path)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeNotFound {
			return &Document{Path: f.path}, nil
		}
		return nil, err
	}
	return Parse(f.path, content)
}

// List returns every block in file order.
func (f *File) List() ([]*Block, error) {
	doc, err := f.Load()
	if err != nil {
		return nil, err
	}
	return doc.Blocks, nil
}

// Find returns the blocks claiming hostname.
func (f *File) Find(hostname string) ([]*Block, error) {
	doc, err := f.Load()
	if err != nil {
		return nil, err
	}
	return doc.Find(strings.TrimSpace(hostname)), nil
}

// Exists reports whether any block claims hostname.
func (f *File) Exists(hostname string) (bool, error) {
	blocks, err := f.Find(hostname)
	if err != nil {
		return false, err
	}
	return len(blocks) > 0, nil
}

// Render returns the block Add would append for route, without writing.
func (f *File) Render(route *config.Route, cert *ssl.CertPair) (string, error) {
	block, err := template.Render(route, cert)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "render vhost block", err)
	}
	return block, nil
}

// Add renders route and appends it to the end of the file, preceded by one
// blank line. A file without a final newline keeps that shape, so Remove
// can restore it exactly. When any name of route is already claimed by a
// block the file is left untouched and ALREADY_EXISTS is returned.
func (f *File) Add(route *config.Route, cert *ssl.CertPair) (*Block, error) {
	doc, err := f.Load()
	if err != nil {
		return nil, err
	}
	for _, name := range route.Names() {
		if doc.Exists(name) {
			return nil, errors.DuplicateRoute(name)
		}
	}

	block, err := f.Render(route, cert)
	if err != nil {
		return nil, err
	}

	content := doc.String()
	switch {
	case content == "" || doc.Terminated:
		content += "\n" + block + "\n"
	default:
		content += "\n\n" + strings.TrimRight(block, "\n")
	}

	// Rescan for line numbers of the new block.
	next, err := Parse(f.path, content)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "rendered block does not scan", err)
	}
	added := next.Find(route.Hostname)
	if len(added) != 1 {
		return nil, errors.Wrap(errors.ErrCodeInternal, "rendered block not found after append", nil)
	}

	if err := f.commit(content); err != nil {
		return nil, err
	}
	logger.Info("vhost: added %s block at %s:%d", route.Hostname, f.path, added[0].StartLine)
	return added[0], nil
}

// Remove excises every block claiming hostname, together with at most one
// blank line directly before and one directly after each. Nothing is written
// when no block matches; the returned slice is then empty.
func (f *File) Remove(hostname string) ([]*Block, error) {
	hostname = strings.TrimSpace(hostname)
	doc, err := f.Load()
	if err != nil {
		return nil, err
	}

	matched := doc.Find(hostname)
	if len(matched) == 0 {
		logger.Debug("vhost: no block for %s", hostname)
		return nil, nil
	}

	drop := make(map[int]bool)
	for _, b := range matched {
		for n := b.StartLine; n <= b.EndLine; n++ {
			drop[n] = true
		}
		if before := b.StartLine - 1; before >= 1 && !drop[before] && isBlank(doc.Lines[before-1]) {
			drop[before] = true
		}
		if after := b.EndLine + 1; after <= len(doc.Lines) && isBlank(doc.Lines[after-1]) {
			drop[after] = true
		}
	}

	kept := make([]string, 0, len(doc.Lines)-len(drop))
	for i, line := range doc.Lines {
		if !drop[i+1] {
			kept = append(kept, line)
		}
	}
	doc.Lines = kept

	if err := f.commit(doc.String()); err != nil {
		return nil, err
	}
	logger.Info("vhost: removed %d block(s) for %s", len(matched), hostname)
	return matched, nil
}

// Cleanup removes the backups left by earlier writes.
func (f *File) Cleanup() int {
	return f.store.Cleanup(f.path)
}

// BackupWarnings returns the backup failures recorded since the last call
// and forgets them.
func (f *File) BackupWarnings() []string {
	w := f.warnings
	f.warnings = nil
	return w
}

func (f *File) commit(content string) error {
	if _, err := f.store.Backup(f.path); err != nil {
		logger.Warn("vhost: backup of %s failed, continuing: %v", f.path, err)
		f.warnings = append(f.warnings, fmt.Sprintf("%s was written without a backup: %v", f.path, err))
	}
	return f.store.AtomicWrite(f.path, content)
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// ReadLog returns the last n lines of a block's log file, or all of it when
// n <= 0. Relative log paths resolve against serverRoot.
func ReadLog(store *textstore.Store, serverRoot, logPath string, n int) ([]string, error) {
	if logPath == "" {
		return nil, errors.Validation("block has no log directive")
	}
	p := ResolvePath(serverRoot, logPath)
	content, err := store.Read(p)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if content == "" {
		lines = nil
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// ResolvePath joins a relative Apache path onto serverRoot.
func ResolvePath(serverRoot, p string) string {
	if p == "" || serverRoot == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.Contains(p, ":\\") {
		return p
	}
	return filepath.Join(serverRoot, p)
}
