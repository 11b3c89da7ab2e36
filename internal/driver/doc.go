// Package driver controls the Apache web server that serves devhost routes.
//
// A Driver validates and reloads the running server; it never writes
// configuration. The vhost file is edited by the vhostconf package and a
// driver is only consulted afterwards, when the user asks for --check or
// --reload.
//
// # Usage
//
//	drv := driver.New(cfg.ApacheCtl)
//	if err := drv.Test(); err != nil {
//	    // syntax error in the live configuration
//	}
//	err := drv.Reload()
//
// Reload goes through systemctl when the control binary belongs to a
// service-managed install (apache2ctl on Debian, apachectl with systemd on
// RHEL) and falls back to "<ctl> -k graceful".
//
// # Testing
//
// NewApacheWithExecutor accepts a mock executor.CommandExecutor for testing
// without actual system calls, and MockDriver stands in for a whole driver:
//
//	mockExec := &executor.MockExecutor{}
//	drv := driver.NewApacheWithExecutor("apache2ctl", mockExec)
//
// # Error Handling
//
// Failures carry the DRIVER error code and the control binary's output.
// A missing binary is reported with errors.NotInstalled.
package driver
