package driver

import (
	"errors"
	"testing"

	deverrors "github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/executor"
)

func TestNew(t *testing.T) {
	drv := New("")
	if drv.Name() != "apache" {
		t.Errorf("expected apache, got %s", drv.Name())
	}
	if ctl := drv.(*ApacheDriver).Ctl(); ctl != "apachectl" {
		t.Errorf("expected apachectl default, got %s", ctl)
	}

	if ctl := New("/usr/sbin/apache2ctl").(*ApacheDriver).Ctl(); ctl != "/usr/sbin/apache2ctl" {
		t.Errorf("expected explicit ctl to be kept, got %s", ctl)
	}
}

func TestApacheDriver_WithExecutor(t *testing.T) {
	t.Run("Test_success", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				if name == "apache2ctl" && len(args) > 0 && args[0] == "-t" {
					return []byte("Syntax OK"), nil
				}
				return nil, errors.New("unexpected command")
			},
		}

		drv := NewApacheWithExecutor("apache2ctl", mock)
		if err := drv.Test(); err != nil {
			t.Errorf("Test should succeed: %v", err)
		}

		// Verify the correct command was called
		if len(mock.Calls) != 1 {
			t.Fatalf("expected 1 call, got %d", len(mock.Calls))
		}
		if got := mock.Calls[0].String(); got != "apache2ctl -t" {
			t.Errorf("expected apache2ctl -t, got %s", got)
		}
	})

	t.Run("Test_failure", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("Syntax error on line 10"), errors.New("exit status 1")
			},
		}

		drv := NewApacheWithExecutor("apache2ctl", mock)
		err := drv.Test()
		if err == nil {
			t.Fatal("Test should fail for invalid config")
		}
		if deverrors.CodeOf(err) != deverrors.ErrCodeDriver {
			t.Errorf("expected DRIVER code, got %s", deverrors.CodeOf(err))
		}
	})

	t.Run("Test_not_installed", func(t *testing.T) {
		mock := &executor.MockExecutor{
			LookPathFunc: func(file string) (string, error) {
				return "", errors.New("not found")
			},
		}

		drv := NewApacheWithExecutor("apache2ctl", mock)
		if err := drv.Test(); !deverrors.Is(err, deverrors.ErrToolNotInstalled) {
			t.Errorf("expected not installed error, got %v", err)
		}
		if len(mock.Calls) != 0 {
			t.Errorf("expected no command to run, got %v", mock.Calls)
		}
	})

	t.Run("Reload_systemctl_success", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				if name == "systemctl" && len(args) >= 2 && args[0] == "reload" && args[1] == "apache2" {
					return []byte(""), nil
				}
				return nil, errors.New("unexpected command")
			},
		}

		drv := NewApacheWithExecutor("apache2ctl", mock)
		if err := drv.Reload(); err != nil {
			t.Errorf("Reload should succeed: %v", err)
		}
	})

	t.Run("Reload_fallback_success", func(t *testing.T) {
		callCount := 0
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				callCount++
				if callCount == 1 {
					// First call: systemctl fails
					return []byte("Unit apache2.service not loaded"), errors.New("exit status 5")
				}
				// Second call: apache2ctl -k graceful succeeds
				if name == "apache2ctl" && len(args) == 2 && args[0] == "-k" && args[1] == "graceful" {
					return []byte(""), nil
				}
				return nil, errors.New("unexpected command")
			},
		}

		drv := NewApacheWithExecutor("apache2ctl", mock)
		if err := drv.Reload(); err != nil {
			t.Errorf("Reload should succeed with fallback: %v", err)
		}

		if callCount != 2 {
			t.Errorf("expected 2 calls, got %d", callCount)
		}
	})

	t.Run("Reload_without_service_manager", func(t *testing.T) {
		mock := &executor.MockExecutor{
			LookPathFunc: func(file string) (string, error) {
				if file == "systemctl" {
					return "", errors.New("not found")
				}
				return "/opt/homebrew/bin/" + file, nil
			},
		}

		drv := NewApacheWithExecutor("apachectl", mock)
		if err := drv.Reload(); err != nil {
			t.Fatalf("Reload should succeed: %v", err)
		}
		if len(mock.Calls) != 1 || mock.Calls[0].String() != "apachectl -k graceful" {
			t.Errorf("expected only apachectl -k graceful, got %v", mock.Calls)
		}
	})

	t.Run("Reload_both_fail", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("error"), errors.New("command failed")
			},
		}

		drv := NewApacheWithExecutor("apache2ctl", mock)
		if err := drv.Reload(); err == nil {
			t.Error("Reload should fail when both methods fail")
		}
	})

	t.Run("Version", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("Server version: Apache/2.4.58 (Ubuntu)\nServer built:   2024-04-01\n"), nil
			},
		}

		drv := NewApacheWithExecutor("apache2ctl", mock)
		v, err := drv.Version()
		if err != nil {
			t.Fatalf("Version failed: %v", err)
		}
		if v != "Apache/2.4.58 (Ubuntu)" {
			t.Errorf("unexpected version %q", v)
		}
	})
}

func TestMockDriver(t *testing.T) {
	mock := NewMockDriver("apache")
	mock.ReloadFunc = func() error { return errors.New("boom") }

	if err := mock.Test(); err != nil {
		t.Errorf("default Test should succeed: %v", err)
	}
	if err := mock.Reload(); err == nil {
		t.Error("Reload should use ReloadFunc")
	}
	if mock.TestCalls != 1 || mock.ReloadCalls != 1 {
		t.Errorf("unexpected call counts: test=%d reload=%d", mock.TestCalls, mock.ReloadCalls)
	}

	mock.Reset()
	if mock.TestCalls != 0 || mock.ReloadCalls != 0 {
		t.Error("Reset should clear call counts")
	}
}
