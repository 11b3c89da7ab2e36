package config

import (
	"net/netip"
	"strings"

	"github.com/ksyq12/devhost/internal/errors"
)

// Route defaults.
const (
	DefaultAddress = "127.0.0.1"
	DefaultPort    = 80
)

// Route is the validated intent for one hostname. It is built per operation
// and never persisted; its projections are a vhost block and hosts entries.
type Route struct {
	Hostname string   `json:"hostname"`
	Port     int      `json:"port"`
	Target   string   `json:"target,omitempty"`
	SSL      bool     `json:"ssl"`
	Balancer bool     `json:"balancer"`
	Members  []string `json:"members,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
	Address  string   `json:"address"`
}

// RouteOptions is the raw, unvalidated route intent.
type RouteOptions struct {
	Hostname string
	Port     int
	Target   string
	SSL      bool
	Balancer bool
	Members  []string
	Aliases  []string
	Address  string
}

// Mode names the active serving mode.
func (r *Route) Mode() string {
	if r.Balancer {
		return "balancer"
	}
	return "docroot"
}

// Names returns the hostname followed by its aliases.
func (r *Route) Names() []string {
	return append([]string{r.Hostname}, r.Aliases...)
}

// NewRoute validates opts and returns the route. No file is touched.
func NewRoute(opts RouteOptions) (*Route, error) {
	hostname, err := ValidateHostname(opts.Hostname)
	if err != nil {
		return nil, err
	}

	if opts.Port < 1 || opts.Port > 65535 {
		return nil, errors.Validationf("port %d out of range (1-65535)", opts.Port)
	}

	address := strings.TrimSpace(opts.Address)
	if address == "" {
		address = DefaultAddress
	}
	if _, err := netip.ParseAddr(address); err != nil {
		return nil, errors.Validationf("address %q is not an IP literal", address)
	}

	r := &Route{
		Hostname: hostname,
		Port:     opts.Port,
		SSL:      opts.SSL,
		Balancer: opts.Balancer,
		Address:  address,
	}

	target := strings.TrimSpace(opts.Target)
	if opts.Balancer {
		if target != "" {
			return nil, errors.Validation("document root cannot be combined with balancer mode")
		}
		if len(opts.Members) == 0 {
			return nil, errors.Validation("balancer mode requires at least one member")
		}
		for _, m := range opts.Members {
			m = strings.TrimSpace(m)
			if m == "" || strings.ContainsAny(m, " \t\"<>") {
				return nil, errors.Validationf("invalid balancer member %q", m)
			}
			r.Members = append(r.Members, m)
		}
	} else {
		if len(opts.Members) > 0 {
			return nil, errors.Validation("members require balancer mode")
		}
		if target == "" {
			return nil, errors.Validation("document root is required unless balancer mode is set")
		}
		if strings.ContainsAny(target, "\"\n") {
			return nil, errors.Validationf("invalid document root %q", target)
		}
		r.Target = target
	}

	seen := map[string]bool{strings.ToLower(hostname): true}
	for _, a := range opts.Aliases {
		alias, err := ValidateHostname(a)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(alias)
		if seen[key] {
			continue
		}
		seen[key] = true
		r.Aliases = append(r.Aliases, alias)
	}

	return r, nil
}

// ValidateHostname trims name and rejects anything that cannot appear as a
// single token in both a ServerName directive and a hosts line.
func ValidateHostname(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.Validation("hostname is required")
	}
	if len(name) > 253 {
		return "", errors.Validationf("hostname %q is too long", name)
	}
	if strings.ContainsAny(name, " \t\r\n#<>\"'/\\:") {
		return "", errors.Validationf("hostname %q contains invalid characters", name)
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" {
			return "", errors.Validationf("hostname %q has an empty label", name)
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "", errors.Validationf("hostname %q: label %q cannot start or end with a hyphen", name, label)
		}
	}
	return name, nil
}
