package hosts

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/logger"
	"github.com/ksyq12/devhost/internal/textstore"
)

// Table edits one hosts file through a text store. Every call re-reads the
// whole file; every change backs it up and rewrites it atomically. Backups
// are left in place for the caller to clean up.
type Table struct {
	store    *textstore.Store
	path     string
	warnings []string
}

// NewTable returns a Table for the hosts file at path.
func NewTable(store *textstore.Store, path string) *Table {
	return &Table{store: store, path: path}
}

// Path returns the hosts file path.
func (t *Table) Path() string {
	return t.path
}

// Load reads and parses the hosts file.
func (t *Table) Load() (*File, error) {
	content, err := t.store.Read(t.path)
	if err != nil {
		return nil, err
	}
	return Parse(content), nil
}

// AddEntry maps hostname to address (127.0.0.1 when empty). When a line with
// the same address literal already lists the hostname nothing is written and
// added is false.
func (t *Table) AddEntry(hostname, address string) (added bool, err error) {
	hostname, err = config.ValidateHostname(hostname)
	if err != nil {
		return false, err
	}
	if address == "" {
		address = config.DefaultAddress
	}
	if _, err := netip.ParseAddr(address); err != nil {
		return false, &errors.RouteError{
			Code:     errors.ErrCodeValidation,
			Message:  "invalid address " + address,
			Hostname: hostname,
		}
	}

	f, err := t.Load()
	if err != nil {
		return false, err
	}
	if f.Has(hostname, address) {
		logger.Debug("hosts: %s -> %s already present", hostname, address)
		return false, nil
	}

	f.Append(hostname, address)
	if err := t.commit(f); err != nil {
		return false, err
	}
	logger.Info("hosts: mapped %s to %s", hostname, address)
	return true, nil
}

// DeleteEntry removes hostname from every mapping line, or only from lines
// with the given address literal when address is non-empty. Lines left with
// no hostnames are dropped. Nothing matching is not an error.
func (t *Table) DeleteEntry(hostname, address string) (removed int, err error) {
	hostname, err = config.ValidateHostname(hostname)
	if err != nil {
		return 0, err
	}

	f, err := t.Load()
	if err != nil {
		return 0, err
	}

	removed = f.Delete(hostname, address)
	if removed == 0 {
		logger.Debug("hosts: no entry for %s", hostname)
		return 0, nil
	}

	if err := t.commit(f); err != nil {
		return 0, err
	}
	logger.Info("hosts: removed %d mapping(s) for %s", removed, hostname)
	return removed, nil
}

// Lookup returns the addresses hostname is mapped to.
func (t *Table) Lookup(hostname string) ([]string, error) {
	f, err := t.Load()
	if err != nil {
		return nil, err
	}
	return f.Lookup(strings.TrimSpace(hostname)), nil
}

// Cleanup removes the backups left by earlier writes.
func (t *Table) Cleanup() int {
	return t.store.Cleanup(t.path)
}

// BackupWarnings returns the backup failures recorded since the last call
// and forgets them. A failed backup never blocks the write.
func (t *Table) BackupWarnings() []string {
	w := t.warnings
	t.warnings = nil
	return w
}

func (t *Table) commit(f *File) error {
	if _, err := t.store.Backup(t.path); err != nil {
		logger.Warn("hosts: backup of %s failed, continuing: %v", t.path, err)
		t.warnings = append(t.warnings, fmt.Sprintf("%s was written without a backup: %v", t.path, err))
	}
	return t.store.AtomicWrite(t.path, f.String())
}
