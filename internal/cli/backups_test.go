package cli

import (
	"testing"

	"github.com/spf13/afero"
)

const (
	testVHostBackup = MockVHostConf + ".bak.20240101120000"
	testHostsBackup = MockHostsFile + ".bak.20240101120000"
)

func seedBackups(h *TestHelper) {
	_ = afero.WriteFile(h.Stack.Fs, testVHostBackup, []byte("Listen 80\n"), 0644)
	_ = afero.WriteFile(h.Stack.Fs, testHostsBackup, []byte("127.0.0.1\tlocalhost\n"), 0644)
}

func TestRunBackupsList(t *testing.T) {
	for _, asJSON := range []bool{false, true} {
		h := NewTestHelper(t, testHosts, testVHost)
		jsonOutput = asJSON

		if err := runBackupsList(nil, nil); err != nil {
			t.Fatalf("empty list failed: %v", err)
		}
		seedBackups(h)
		if err := runBackupsList(nil, nil); err != nil {
			t.Fatalf("list failed: %v", err)
		}
	}
}

func TestRunBackupsRestore(t *testing.T) {
	tests := []struct {
		name      string
		backup    string
		force     bool
		stdin     []string
		wantCode  int
		wantVHost string
		wantHosts string
	}{
		{
			name:      "restore vhost file",
			backup:    testVHostBackup,
			force:     true,
			wantVHost: "Listen 80\n",
			wantHosts: testHosts,
		},
		{
			name:      "restore hosts file after confirmation",
			backup:    testHostsBackup,
			stdin:     []string{"y\n"},
			wantVHost: testVHost,
			wantHosts: "127.0.0.1\tlocalhost\n",
		},
		{
			name:      "restore cancelled",
			backup:    testHostsBackup,
			stdin:     []string{"n\n"},
			wantVHost: testVHost,
			wantHosts: testHosts,
		},
		{
			name:      "foreign file is rejected",
			backup:    "/etc/passwd",
			force:     true,
			wantCode:  2,
			wantVHost: testVHost,
			wantHosts: testHosts,
		},
		{
			name:      "missing backup",
			backup:    MockHostsFile + ".bak.19990101000000",
			force:     true,
			wantCode:  4,
			wantVHost: testVHost,
			wantHosts: testHosts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHelper(t, testHosts, testVHost)
			seedBackups(h)
			h.SetStdinInput(tt.stdin...)
			forceRestore = tt.force
			defer func() { forceRestore = false }()

			err := runBackupsRestore(nil, []string{tt.backup})
			if got := exitCode(err); got != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (err: %v)", got, tt.wantCode, err)
			}
			if got := h.VHosts(); got != tt.wantVHost {
				t.Errorf("vhost file = %q, want %q", got, tt.wantVHost)
			}
			if got := h.Hosts(); got != tt.wantHosts {
				t.Errorf("hosts file = %q, want %q", got, tt.wantHosts)
			}
		})
	}
}

func TestRunBackupsClean(t *testing.T) {
	h := NewTestHelper(t, testHosts, testVHost)
	seedBackups(h)

	if err := runBackupsClean(nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range []string{testVHostBackup, testHostsBackup} {
		if ok, _ := afero.Exists(h.Stack.Fs, p); ok {
			t.Errorf("%s should be removed", p)
		}
	}
	if h.VHosts() != testVHost || h.Hosts() != testHosts {
		t.Error("managed files must not change")
	}
}

func TestIsBackupOf(t *testing.T) {
	tests := []struct {
		backup string
		path   string
		want   bool
	}{
		{"/etc/hosts.bak.20240101120000", "/etc/hosts", true},
		{"/etc/hosts.bak.x", "/etc/hosts", true},
		{"/tmp/hosts.bak.20240101120000", "/etc/hosts", false},
		{"/etc/hosts", "/etc/hosts", false},
		{"/etc/hosts.allow", "/etc/hosts", false},
	}

	for _, tt := range tests {
		if got := isBackupOf(tt.backup, tt.path); got != tt.want {
			t.Errorf("isBackupOf(%q, %q) = %v, want %v", tt.backup, tt.path, got, tt.want)
		}
	}
}
