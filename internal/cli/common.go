package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/driver"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/input"
	"github.com/ksyq12/devhost/internal/logger"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/ksyq12/devhost/internal/reconcile"
)

// loadConfig loads and validates the configuration and opens the audit log
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AuditLog != "" {
		if err := logger.SetFile(cfg.AuditLog); err != nil {
			output.Warn("Audit log disabled: %v", err)
		}
	}
	return cfg, nil
}

// loadStack loads config and wires the stores for it
func loadStack() (*config.Config, *Stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	stack, err := deps.StackFactory.Create(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeConfig, "failed to initialize", err)
	}
	return cfg, stack, nil
}

// testAndReload tests config and optionally reloads the web server
func testAndReload(drv driver.Driver, check, reload bool) error {
	if !check && !reload {
		return nil
	}

	output.Info("Testing configuration...")
	if err := drv.Test(); err != nil {
		return fmt.Errorf("configuration test failed: %w", err)
	}

	if reload {
		output.Info("Reloading %s...", drv.Name())
		if err := drv.Reload(); err != nil {
			return fmt.Errorf("failed to reload %s: %w", drv.Name(), err)
		}
	}

	return nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// reportResult prints a reconcile result and turns a failed one into an
// exitError carrying the result's exit status.
func reportResult(res *reconcile.Result, successMsg string, args ...interface{}) error {
	if jsonOutput {
		if err := output.JSON(res); err != nil {
			return err
		}
	} else {
		printResult(res, successMsg, args...)
	}

	if !res.OK() {
		return &exitError{code: res.ExitCode(), err: res.Err, reported: true}
	}
	return nil
}

func printResult(res *reconcile.Result, successMsg string, args ...interface{}) {
	switch res.Status {
	case reconcile.StatusSuccess:
		output.Success(successMsg, args...)
	case reconcile.StatusWarning:
		output.Warn(successMsg+" with warnings", args...)
		for _, w := range res.Warnings {
			output.Warn("%s", w)
		}
		if len(res.Retained) > 0 {
			output.Info("Backups kept for %s (see 'devhost backups list')", strings.Join(res.Retained, ", "))
		}
	case reconcile.StatusNotFound:
		output.Info("No route for %s", res.Hostname)
	case reconcile.StatusAlreadyExists:
		output.Error("%v", res.Err)
		output.Info("Remove it first with 'devhost remove %s'", res.Hostname)
	default:
		output.Error("%v", res.Err)
		if len(res.Retained) > 0 {
			output.Info("Backups kept for %s (see 'devhost backups list')", strings.Join(res.Retained, ", "))
		}
	}
}

// confirm asks a yes/no question unless force is set
func confirm(force bool, format string, args ...interface{}) (bool, error) {
	if force {
		return true, nil
	}
	return input.Confirm(deps.StdinReader, os.Stderr, fmt.Sprintf(format, args...))
}

// CommandResult represents a common result structure for CLI commands
type CommandResult struct {
	Success  bool   `json:"success"`
	Hostname string `json:"hostname,omitempty"`
	Action   string `json:"action,omitempty"`
	Message  string `json:"message,omitempty"`
}

// newSuccessResult creates a success result
func newSuccessResult(hostname, action string) CommandResult {
	return CommandResult{
		Success:  true,
		Hostname: hostname,
		Action:   action,
	}
}

// yesNo renders a boolean as yes/no for tables
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
