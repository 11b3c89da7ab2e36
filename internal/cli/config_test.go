package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunConfigShow(t *testing.T) {
	for _, asJSON := range []bool{false, true} {
		_ = NewTestHelper(t, testHosts, "")
		jsonOutput = asJSON

		if err := runConfigShow(nil, nil); err != nil {
			t.Errorf("runConfigShow(json=%v) failed: %v", asJSON, err)
		}
	}
}

func TestRunConfigShowInvalid(t *testing.T) {
	h := NewTestHelper(t, testHosts, "")
	h.GetConfig().Port = 0

	if got := exitCode(runConfigShow(nil, nil)); got != 9 {
		t.Errorf("exit code = %d, want 9", got)
	}
}

func TestRunConfigInit(t *testing.T) {
	resetConfigFlags := func() {
		configPath = ""
		forceConfigInit = false
	}

	t.Run("writes the effective config", func(t *testing.T) {
		_ = NewTestHelper(t, testHosts, "")
		resetConfigFlags()
		defer resetConfigFlags()
		configPath = filepath.Join(t.TempDir(), "devhost", "config.yaml")

		if err := runConfigInit(nil, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("config not written: %v", err)
		}
		for _, want := range []string{
			"vhost_conf: " + MockVHostConf,
			"hosts_file: " + MockHostsFile,
			"cert_dir: " + MockCertDir,
		} {
			if !strings.Contains(string(data), want) {
				t.Errorf("config missing %q:\n%s", want, data)
			}
		}
	})

	t.Run("existing file needs force", func(t *testing.T) {
		_ = NewTestHelper(t, testHosts, "")
		resetConfigFlags()
		defer resetConfigFlags()
		configPath = filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configPath, []byte("port: 8080\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if got := exitCode(runConfigInit(nil, nil)); got != 3 {
			t.Errorf("exit code = %d, want 3", got)
		}
		data, _ := os.ReadFile(configPath)
		if string(data) != "port: 8080\n" {
			t.Errorf("existing config overwritten:\n%s", data)
		}

		forceConfigInit = true
		if err := runConfigInit(nil, nil); err != nil {
			t.Fatalf("forced init failed: %v", err)
		}
		data, _ = os.ReadFile(configPath)
		if !strings.Contains(string(data), "vhost_conf:") {
			t.Errorf("forced init did not rewrite config:\n%s", data)
		}
	})
}
