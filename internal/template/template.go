package template

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/ssl"
)

//go:embed apache/*.tmpl
var apacheTemplates embed.FS

// TemplateData contains data for rendering templates
type TemplateData struct {
	Hostname string
	Port     int
	Root     string
	Aliases  []string
	Members  []string
	SSL      bool
	SSLCert  string
	SSLKey   string
}

var funcMap = template.FuncMap{
	"cluster": ClusterName,
	"member":  MemberURL,
}

// Render renders the vhost block for route. cert is required when the
// route has SSL enabled. The result always ends with a newline.
func Render(route *config.Route, cert *ssl.CertPair) (string, error) {
	name := route.Mode()
	content, err := apacheTemplates.ReadFile("apache/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("template not found: apache/%s", name)
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := TemplateData{
		Hostname: route.Hostname,
		Port:     route.Port,
		Root:     route.Target,
		Aliases:  route.Aliases,
		Members:  route.Members,
		SSL:      route.SSL,
	}
	if route.SSL {
		if cert == nil {
			return "", fmt.Errorf("ssl enabled for %s but no certificate provided", route.Hostname)
		}
		data.SSLCert = cert.CertFile
		data.SSLKey = cert.KeyFile
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}

// ClusterName returns the balancer cluster name for hostname.
func ClusterName(hostname string) string {
	return hostname + "_cluster"
}

// MemberURL prefixes members given as host:port with http://.
func MemberURL(member string) string {
	if strings.Contains(member, "://") {
		return member
	}
	return "http://" + member
}

// Available returns the embedded template names.
func Available() []string {
	entries, err := apacheTemplates.ReadDir("apache")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	return names
}
