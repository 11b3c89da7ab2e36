// Package executor runs external tools (openssl, certbot, apachectl) behind
// an interface so callers can be tested without touching the host.
package executor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ksyq12/devhost/internal/logger"
)

// CommandExecutor is an interface for executing system commands
type CommandExecutor interface {
	// Execute runs a command with the given name and arguments
	Execute(name string, args ...string) ([]byte, error)

	// LookPath searches for an executable in the directories named by the PATH
	LookPath(file string) (string, error)
}

// CommandError is returned by Run when a command exits unsuccessfully.
type CommandError struct {
	Name   string
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, out)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Run executes a command and folds its combined output into the error on
// failure. The output is returned either way.
func Run(e CommandExecutor, name string, args ...string) (string, error) {
	out, err := e.Execute(name, args...)
	if err != nil {
		return string(out), &CommandError{Name: name, Args: args, Output: string(out), Err: err}
	}
	return string(out), nil
}

// DefaultTimeout bounds each external command run by SystemExecutor
const DefaultTimeout = 2 * time.Minute

// SystemExecutor runs commands with os/exec. A command still running after
// Timeout is killed; zero means no limit.
type SystemExecutor struct {
	Timeout time.Duration
}

// NewSystemExecutor returns an executor using DefaultTimeout
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{Timeout: DefaultTimeout}
}

// Execute runs a command and returns its combined output
func (e *SystemExecutor) Execute(name string, args ...string) ([]byte, error) {
	ctx := context.Background()
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	logger.Debug("exec: %s", CommandCall{Name: name, Args: args})
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("timed out after %s: %w", e.Timeout, ctx.Err())
	}
	return out, err
}

// LookPath searches PATH for an executable
func (e *SystemExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// MockExecutor is a mock implementation for testing
type MockExecutor struct {
	ExecuteFunc  func(name string, args ...string) ([]byte, error)
	LookPathFunc func(file string) (string, error)
	Calls        []CommandCall
}

// CommandCall records a command execution for verification
type CommandCall struct {
	Name string
	Args []string
}

// String renders the call as a shell-like command line.
func (c CommandCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Execute calls the mock function
func (m *MockExecutor) Execute(name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(name, args...)
	}
	return []byte(""), nil
}

// LookPath calls the mock function
func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}
