package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	// Disable color for tests
	color.NoColor = true
}

// capture redirects both writers for the duration of f
func capture(t *testing.T, f func()) (out, errOut string) {
	t.Helper()
	var o, e bytes.Buffer
	restore := SetOutput(&o, &e)
	defer restore()
	f()
	return o.String(), e.String()
}

func TestJSON(t *testing.T) {
	type route struct {
		Hostname string   `json:"hostname"`
		Port     int      `json:"port"`
		Aliases  []string `json:"aliases,omitempty"`
	}

	tests := []struct {
		name string
		data interface{}
		want string
	}{
		{"struct", route{Hostname: "dev.local", Port: 80}, `{"hostname":"dev.local","port":80}`},
		{"slice", []route{{Hostname: "a.local", Port: 443, Aliases: []string{"www.a.local"}}}, `[{"hostname":"a.local","port":443,"aliases":["www.a.local"]}]`},
		{"empty object", map[string]int{}, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := capture(t, func() {
				if err := JSON(tt.data); err != nil {
					t.Fatalf("JSON() error: %v", err)
				}
			})

			var compact bytes.Buffer
			if err := json.Compact(&compact, []byte(out)); err != nil {
				t.Fatalf("invalid JSON %q: %v", out, err)
			}
			if compact.String() != tt.want {
				t.Errorf("JSON() = %s, want %s", compact.String(), tt.want)
			}
			if !strings.Contains(out, "\n  ") && tt.name != "empty object" {
				t.Errorf("expected indented output, got %q", out)
			}
		})
	}
}

func TestTable(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		rows    [][]string
		want    string
	}{
		{
			name:    "routes",
			headers: []string{"HOSTNAME", "MODE", "TARGET"},
			rows: [][]string{
				{"dev.local", "docroot", "/var/www/dev.local"},
				{"api.local", "balancer", "127.0.0.1:9001"},
			},
			want: "HOSTNAME   MODE      TARGET\n" +
				"---------  --------  ------------------\n" +
				"dev.local  docroot   /var/www/dev.local\n" +
				"api.local  balancer  127.0.0.1:9001\n",
		},
		{
			name:    "no rows",
			headers: []string{"FILE", "BACKUP"},
			want:    "FILE  BACKUP\n----  ------\n",
		},
		{
			name:    "missing and extra cells",
			headers: []string{"A", "B"},
			rows:    [][]string{{"x"}, {"y", "z", "dropped"}},
			want:    "A  B\n-  -\nx\ny  z\n",
		},
		{
			name:    "no headers",
			headers: nil,
			rows:    [][]string{{"ignored"}},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := capture(t, func() {
				Table(tt.headers, tt.rows)
			})
			if out != tt.want {
				t.Errorf("Table() =\n%q\nwant\n%q", out, tt.want)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name    string
		print   func()
		wantOut string
		wantErr string
	}{
		{"success", func() { Success("Route %s added", "dev.local") }, "✓ Route dev.local added\n", ""},
		{"info", func() { Info("No routes") }, "→ No routes\n", ""},
		{"print", func() { Print("Value: %d", 42) }, "Value: 42\n", ""},
		{"warn goes to stderr", func() { Warn("hosts file %s not updated", "/etc/hosts") }, "", "! hosts file /etc/hosts not updated\n"},
		{"error goes to stderr", func() { Error("permission denied") }, "", "✗ permission denied\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := capture(t, tt.print)
			if out != tt.wantOut {
				t.Errorf("stdout = %q, want %q", out, tt.wantOut)
			}
			if errOut != tt.wantErr {
				t.Errorf("stderr = %q, want %q", errOut, tt.wantErr)
			}
		})
	}
}

func TestField(t *testing.T) {
	out, _ := capture(t, func() {
		Field("Hostname", "dev.local")
	})

	if !strings.HasPrefix(out, "Hostname:") {
		t.Errorf("expected label first, got %q", out)
	}
	if !strings.HasSuffix(out, " dev.local\n") {
		t.Errorf("expected value at end, got %q", out)
	}
}

func TestBlock(t *testing.T) {
	out, _ := capture(t, func() {
		Block("<VirtualHost *:80>\n    ServerName dev.local\n</VirtualHost>\n")
	})

	want := "  <VirtualHost *:80>\n      ServerName dev.local\n  </VirtualHost>\n"
	if out != want {
		t.Errorf("Block() = %q, want %q", out, want)
	}
}

func TestSetOutputRestores(t *testing.T) {
	var first, second bytes.Buffer
	restore := SetOutput(&first, &first)
	inner := SetOutput(&second, &second)
	Print("inner")
	inner()
	Print("outer")
	restore()

	if first.String() != "outer\n" || second.String() != "inner\n" {
		t.Errorf("writers not restored: first=%q second=%q", first.String(), second.String())
	}
}
