package cli

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const (
	testAccessLog = MockServerRoot + "/logs/app.local-access.log"
	testErrorLog  = MockServerRoot + "/logs/app.local-error.log"
)

// resetLogsFlags restores the logs command flags to their defaults
func resetLogsFlags() {
	logsAccess = false
	logsError = false
	logsFollow = false
	logsLines = 20
}

// exitStatusError mimics *exec.ExitError
type exitStatusError struct {
	code int
}

func (e *exitStatusError) Error() string { return "exit status" }
func (e *exitStatusError) ExitCode() int { return e.code }

func writeTestLogs(h *TestHelper, files ...string) {
	for _, f := range files {
		_ = afero.WriteFile(h.Stack.Fs, f, []byte("line 1\nline 2\nline 3\n"), 0644)
	}
}

func TestRunLogs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		logs       []string
		setupFlags func()
		setup      func(*TestHelper)
		wantCode   int
		validate   func(*testing.T, *TestHelper)
	}{
		{
			name:       "both logs",
			args:       []string{"app.local"},
			logs:       []string{testAccessLog, testErrorLog},
			setupFlags: func() {},
		},
		{
			name: "json output",
			args: []string{"app.local"},
			logs: []string{testAccessLog, testErrorLog},
			setupFlags: func() {
				jsonOutput = true
				logsLines = 1
			},
		},
		{
			name: "access only with error log missing",
			args: []string{"app.local"},
			logs: []string{testAccessLog},
			setupFlags: func() {
				logsAccess = true
			},
		},
		{
			name:       "no log files",
			args:       []string{"app.local"},
			setupFlags: func() {},
			wantCode:   4,
		},
		{
			name:       "unknown route",
			args:       []string{"nope.local"},
			logs:       []string{testAccessLog},
			setupFlags: func() {},
			wantCode:   4,
		},
		{
			name: "follow runs tail on every log",
			args: []string{"app.local"},
			logs: []string{testAccessLog, testErrorLog},
			setupFlags: func() {
				logsFollow = true
				logsLines = 50
			},
			validate: func(t *testing.T, h *TestHelper) {
				if len(h.Runner.Calls) != 1 {
					t.Fatalf("expected 1 tail call, got %d", len(h.Runner.Calls))
				}
				want := "tail -f -n 50 " + testAccessLog + " " + testErrorLog
				if got := strings.Join(h.Runner.Calls[0], " "); got != want {
					t.Errorf("tail call = %q, want %q", got, want)
				}
			},
		},
		{
			name: "follow error log only",
			args: []string{"app.local"},
			logs: []string{testAccessLog, testErrorLog},
			setupFlags: func() {
				logsFollow = true
				logsError = true
			},
			validate: func(t *testing.T, h *TestHelper) {
				call := h.Runner.Calls[0]
				if call[len(call)-1] != testErrorLog || strings.Contains(strings.Join(call, " "), testAccessLog) {
					t.Errorf("unexpected tail call %v", call)
				}
			},
		},
		{
			name: "follow interrupted by ctrl-c",
			args: []string{"app.local"},
			logs: []string{testAccessLog},
			setupFlags: func() {
				logsFollow = true
			},
			setup: func(h *TestHelper) {
				h.Runner.RunFunc = func(name string, args ...string) error {
					return &exitStatusError{code: 130}
				}
			},
		},
		{
			name: "follow terminated",
			args: []string{"app.local"},
			logs: []string{testAccessLog},
			setupFlags: func() {
				logsFollow = true
			},
			setup: func(h *TestHelper) {
				h.Runner.RunFunc = func(name string, args ...string) error {
					return &exitStatusError{code: 143}
				}
			},
		},
		{
			name: "follow failure",
			args: []string{"app.local"},
			logs: []string{testAccessLog},
			setupFlags: func() {
				logsFollow = true
			},
			setup: func(h *TestHelper) {
				h.Runner.RunFunc = func(name string, args ...string) error {
					return stderrors.New("tail: cannot open")
				}
			},
			wantCode: 7,
		},
		{
			name: "tail not installed",
			args: []string{"app.local"},
			logs: []string{testAccessLog},
			setupFlags: func() {
				logsFollow = true
			},
			setup: func(h *TestHelper) {
				h.Runner.LookPathFunc = func(file string) (string, error) {
					return "", stderrors.New("not found")
				}
			},
			wantCode: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHelper(t, testHosts, testVHost)
			writeTestLogs(h, tt.logs...)
			resetLogsFlags()
			defer resetLogsFlags()
			tt.setupFlags()
			if tt.setup != nil {
				tt.setup(h)
			}

			err := runLogs(nil, tt.args)
			if got := exitCode(err); got != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (err: %v)", got, tt.wantCode, err)
			}

			if tt.validate != nil {
				tt.validate(t, h)
			}
		})
	}
}

func TestInterrupted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sigint", &exitStatusError{code: 130}, true},
		{"sigterm", &exitStatusError{code: 143}, true},
		{"failure", &exitStatusError{code: 1}, false},
		{"plain error", stderrors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interrupted(tt.err); got != tt.want {
				t.Errorf("interrupted(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
