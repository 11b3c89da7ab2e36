package cli

import (
	"testing"

	"github.com/ksyq12/devhost/internal/vhostconf"
)

const sslVHost = `<VirtualHost *:443>
    DocumentRoot "/var/www/secure.local"
    ServerName secure.local
    SSLEngine on
    SSLCertificateKeyFile "/etc/apache2/cert/secure.local.key"
    SSLCertificateFile "/etc/apache2/cert/secure.local.crt"
</VirtualHost>
`

func TestNewShowDetail(t *testing.T) {
	h := NewTestHelper(t, testHosts, "")
	cfg := h.GetConfig()
	stack, err := h.Stack.Create(cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	doc, err := vhostconf.Parse(MockVHostConf, balancerVHost+"\n"+sslVHost)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	t.Run("docroot block", func(t *testing.T) {
		d := newShowDetail(cfg, stack, doc.Blocks[0], []string{"127.0.0.1"})
		if d.Hostname != "app.local" || d.Mode != "docroot" {
			t.Errorf("unexpected detail %+v", d)
		}
		if d.ErrorLog != "/etc/apache2/logs/app.local-error.log" {
			t.Errorf("ErrorLog = %q", d.ErrorLog)
		}
		if d.AccessLog != "/etc/apache2/logs/app.local-access.log" {
			t.Errorf("AccessLog = %q", d.AccessLog)
		}
		if d.StartLine != 3 || d.EndLine != 9 {
			t.Errorf("lines = %d-%d, want 3-9", d.StartLine, d.EndLine)
		}
		if d.File != MockVHostConf {
			t.Errorf("File = %q", d.File)
		}
		if len(d.Addresses) != 1 {
			t.Errorf("Addresses = %v", d.Addresses)
		}
	})

	t.Run("balancer block lists members", func(t *testing.T) {
		d := newShowDetail(cfg, stack, doc.Blocks[1], nil)
		if d.Mode != "balancer" {
			t.Errorf("Mode = %q", d.Mode)
		}
		if len(d.Members) != 1 || d.Members[0] != "http://127.0.0.1:9001" {
			t.Errorf("Members = %v", d.Members)
		}
		if d.Target != "" {
			t.Errorf("Target should be empty for balancers, got %q", d.Target)
		}
		if d.Addresses == nil {
			t.Error("Addresses should be an empty slice, not nil")
		}
	})

	t.Run("ssl block reads expiry", func(t *testing.T) {
		h.Stack.Exec.ExecuteFunc = func(name string, args ...string) ([]byte, error) {
			return []byte("notAfter=Mar  4 10:20:30 2035 GMT\n"), nil
		}
		d := newShowDetail(cfg, stack, doc.Blocks[2], nil)
		if !d.SSL {
			t.Fatal("SSL should be detected")
		}
		if d.SSLCert != "/etc/apache2/cert/secure.local.crt" || d.SSLKey != "/etc/apache2/cert/secure.local.key" {
			t.Errorf("unexpected cert pair %q %q", d.SSLCert, d.SSLKey)
		}
		if d.SSLExpires == nil || d.SSLExpires.Year() != 2035 {
			t.Errorf("SSLExpires = %v", d.SSLExpires)
		}
	})

	t.Run("ssl expiry failure is ignored", func(t *testing.T) {
		h.FailOpenSSL()
		d := newShowDetail(cfg, stack, doc.Blocks[2], nil)
		if d.SSLExpires != nil {
			t.Errorf("SSLExpires should be nil, got %v", d.SSLExpires)
		}
	})
}

func TestRunShow(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		vhost    string
		json     bool
		wantCode int
	}{
		{"existing route", []string{"app.local"}, testVHost, false, 0},
		{"existing route json", []string{"app.local"}, testVHost, true, 0},
		{"by alias", []string{"www.app.local"}, testVHost, false, 0},
		{"case insensitive", []string{"APP.local"}, testVHost, false, 0},
		{"unknown route", []string{"nope.local"}, testVHost, false, 4},
		{"no vhost file", []string{"app.local"}, "", false, 4},
		{"invalid hostname", []string{"a b"}, testVHost, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = NewTestHelper(t, testHosts, tt.vhost)
			jsonOutput = tt.json

			err := runShow(nil, tt.args)
			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}
