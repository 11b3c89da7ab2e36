package driver

import (
	"path/filepath"
	"strings"

	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/executor"
	"github.com/ksyq12/devhost/internal/logger"
)

// ApacheDriver implements the Driver interface for Apache httpd
type ApacheDriver struct {
	ctl  string
	exec executor.CommandExecutor
}

// NewApache creates a new Apache driver using the given control binary
// (apache2ctl, apachectl or httpd.exe)
func NewApache(ctl string) *ApacheDriver {
	return &ApacheDriver{ctl: ctl, exec: executor.NewSystemExecutor()}
}

// NewApacheWithExecutor creates a new Apache driver with a custom executor (for testing)
func NewApacheWithExecutor(ctl string, exec executor.CommandExecutor) *ApacheDriver {
	return &ApacheDriver{ctl: ctl, exec: exec}
}

// Name returns the driver name
func (a *ApacheDriver) Name() string {
	return "apache"
}

// Ctl returns the control binary
func (a *ApacheDriver) Ctl() string {
	return a.ctl
}

// Available reports whether the control binary is on PATH
func (a *ApacheDriver) Available() bool {
	_, err := a.exec.LookPath(a.ctl)
	return err == nil
}

// Test validates the apache config syntax
func (a *ApacheDriver) Test() error {
	if !a.Available() {
		return errors.NotInstalled(a.ctl)
	}
	if _, err := executor.Run(a.exec, a.ctl, "-t"); err != nil {
		return errors.Wrap(errors.ErrCodeDriver, "apache config test failed", err)
	}
	return nil
}

// Reload gracefully restarts apache. Where the service manager owns the
// process (Debian, RHEL) systemctl is tried first.
func (a *ApacheDriver) Reload() error {
	if !a.Available() {
		return errors.NotInstalled(a.ctl)
	}

	if unit := a.unit(); unit != "" {
		_, err := executor.Run(a.exec, "systemctl", "reload", unit)
		if err == nil {
			logger.Debug("reloaded %s via systemctl", unit)
			return nil
		}
		logger.Debug("systemctl reload %s failed, falling back to %s: %v", unit, a.ctl, err)
	}

	if _, err := executor.Run(a.exec, a.ctl, "-k", "graceful"); err != nil {
		return errors.Wrap(errors.ErrCodeDriver, "failed to reload apache", err)
	}
	return nil
}

// Version returns the first line of "<ctl> -v"
func (a *ApacheDriver) Version() (string, error) {
	out, err := executor.Run(a.exec, a.ctl, "-v")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDriver, "apache version query failed", err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(strings.TrimPrefix(line, "Server version:")), nil
}

// unit maps the control binary to its systemd unit, or "" when apache is
// not run as a service.
func (a *ApacheDriver) unit() string {
	switch filepath.Base(a.ctl) {
	case "apache2ctl":
		return "apache2"
	case "apachectl":
		if _, err := a.exec.LookPath("systemctl"); err == nil {
			return "httpd"
		}
	}
	return ""
}
