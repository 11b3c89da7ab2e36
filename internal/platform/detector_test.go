package platform

import (
	"runtime"
	"testing"
)

func existsOnly(present ...string) func(string) bool {
	set := make(map[string]bool, len(present))
	for _, p := range present {
		set[p] = true
	}
	return func(p string) bool { return set[p] }
}

func noEnv(string) string { return "" }

func TestDetectPaths(t *testing.T) {
	paths, err := DetectPaths()

	switch runtime.GOOS {
	case "darwin":
		if err != nil {
			t.Logf("Detection failed (may be expected if Homebrew not installed): %v", err)
			return
		}
	case "linux", "windows":
		if err != nil {
			t.Fatalf("detection should not fail on %s: %v", runtime.GOOS, err)
		}
	default:
		if err == nil {
			t.Errorf("expected error on unsupported platform %s, but got nil", runtime.GOOS)
		}
		return
	}

	if paths.HostsFile == "" {
		t.Error("hosts file path is empty")
	}
	if paths.VHostConf == "" {
		t.Error("vhost conf path is empty")
	}
	if paths.ApacheCtl == "" {
		t.Error("apache control binary is empty")
	}
}

func TestDetectLinuxPaths(t *testing.T) {
	tests := []struct {
		name       string
		exists     func(string) bool
		wantLayout Layout
		wantConf   string
		wantCtl    string
	}{
		{"debian", existsOnly("/etc/apache2"), LayoutDebian, "/etc/apache2/sites-available/devhost.conf", "apache2ctl"},
		{"rhel", existsOnly("/etc/httpd"), LayoutRHEL, "/etc/httpd/conf.d/devhost.conf", "apachectl"},
		{"both prefers debian", existsOnly("/etc/httpd", "/etc/apache2"), LayoutDebian, "/etc/apache2/sites-available/devhost.conf", "apache2ctl"},
		{"none falls back to debian", existsOnly(), LayoutDebian, "/etc/apache2/sites-available/devhost.conf", "apache2ctl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := detectLinuxPaths(tt.exists)
			if paths.Layout != tt.wantLayout {
				t.Errorf("Layout = %s, want %s", paths.Layout, tt.wantLayout)
			}
			if paths.VHostConf != tt.wantConf {
				t.Errorf("VHostConf = %s, want %s", paths.VHostConf, tt.wantConf)
			}
			if paths.ApacheCtl != tt.wantCtl {
				t.Errorf("ApacheCtl = %s, want %s", paths.ApacheCtl, tt.wantCtl)
			}
			if paths.HostsFile != "/etc/hosts" {
				t.Errorf("HostsFile = %s, want /etc/hosts", paths.HostsFile)
			}
		})
	}
}

func TestDetectDarwinPaths(t *testing.T) {
	t.Run("apple silicon", func(t *testing.T) {
		paths, err := detectDarwinPaths(existsOnly("/opt/homebrew", "/usr/local"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if paths.VHostConf != "/opt/homebrew/etc/httpd/extra/httpd-vhosts.conf" {
			t.Errorf("unexpected vhost conf: %s", paths.VHostConf)
		}
	})

	t.Run("intel", func(t *testing.T) {
		paths, err := detectDarwinPaths(existsOnly("/usr/local"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if paths.CertDir != "/usr/local/etc/httpd/cert" {
			t.Errorf("unexpected cert dir: %s", paths.CertDir)
		}
	})

	t.Run("no homebrew", func(t *testing.T) {
		if _, err := detectDarwinPaths(existsOnly()); err == nil {
			t.Error("expected error without homebrew")
		}
	})
}

func TestDetectWindowsPaths(t *testing.T) {
	paths, err := detect("windows", existsOnly(), func(key string) string {
		if key == "SystemDrive" {
			return "D:"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if paths.HostsFile != `D:\Windows\System32\drivers\etc\hosts` {
		t.Errorf("unexpected hosts file: %s", paths.HostsFile)
	}
	if paths.VHostConf != `D:\devhost\bin\apache\Apache24\conf\extra\httpd-vhosts.conf` {
		t.Errorf("unexpected vhost conf: %s", paths.VHostConf)
	}

	paths = detectWindowsPaths(noEnv)
	if paths.WWWDir != `C:\devhost\www` {
		t.Errorf("default drive not applied: %s", paths.WWWDir)
	}
}

func TestDetectUnsupported(t *testing.T) {
	if _, err := detect("plan9", existsOnly(), noEnv); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestPathExists(t *testing.T) {
	if !pathExists("/") {
		t.Error("root path should exist")
	}
	if pathExists("/this/path/should/definitely/not/exist/anywhere") {
		t.Error("non-existent path should return false")
	}
}

func TestPlatform(t *testing.T) {
	expected := runtime.GOOS + "/" + runtime.GOARCH
	if p := Platform(); p != expected {
		t.Errorf("expected %s, got %s", expected, p)
	}
}
