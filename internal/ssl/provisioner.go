package ssl

import (
	"fmt"

	"github.com/ksyq12/devhost/internal/executor"
	"github.com/spf13/afero"
)

// CertPair locates the certificate and key for one hostname.
type CertPair struct {
	Hostname string `json:"hostname"`
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	// Created is true when this call generated the pair.
	Created bool `json:"created"`
}

// Provisioner obtains certificates for hostnames. Provision is idempotent
// unless force is set: an existing pair is returned untouched.
type Provisioner interface {
	Name() string
	Paths(hostname string) *CertPair
	Provision(hostname string, force bool) (*CertPair, error)
	List() ([]string, error)
	Delete(hostname string) error
}

// Options configures New.
type Options struct {
	Provider string
	CertDir  string
	Email    string
	Fs       afero.Fs
	Executor executor.CommandExecutor
}

// New returns the provisioner named by opts.Provider ("openssl" or "certbot").
func New(opts Options) (Provisioner, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Executor == nil {
		opts.Executor = executor.NewSystemExecutor()
	}

	switch opts.Provider {
	case "", "openssl":
		return NewOpenSSL(opts.CertDir, opts.Fs, opts.Executor), nil
	case "certbot":
		return NewCertbot(opts.Email, opts.Fs, opts.Executor), nil
	default:
		return nil, fmt.Errorf("unknown ssl provider: %s (available: openssl, certbot)", opts.Provider)
	}
}

func bothExist(fs afero.Fs, pair *CertPair) bool {
	for _, p := range []string{pair.CertFile, pair.KeyFile} {
		if ok, err := afero.Exists(fs, p); err != nil || !ok {
			return false
		}
	}
	return true
}
