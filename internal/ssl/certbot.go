package ssl

import (
	"path/filepath"
	"strings"

	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/executor"
	"github.com/ksyq12/devhost/internal/logger"
	"github.com/spf13/afero"
)

// letsencryptDir is the base directory for Let's Encrypt certificates
const letsencryptDir = "/etc/letsencrypt/live"

// Certbot obtains certificates from Let's Encrypt in standalone mode. It
// only works for hostnames that resolve publicly; local-only names need the
// OpenSSL provisioner.
type Certbot struct {
	Email   string
	LiveDir string
	fs      afero.Fs
	exec    executor.CommandExecutor
}

// NewCertbot returns a certbot-backed provisioner.
func NewCertbot(email string, fs afero.Fs, exec executor.CommandExecutor) *Certbot {
	return &Certbot{Email: email, LiveDir: letsencryptDir, fs: fs, exec: exec}
}

// Name implements Provisioner.
func (c *Certbot) Name() string {
	return "certbot"
}

// IsInstalled checks if certbot is installed
func (c *Certbot) IsInstalled() bool {
	_, err := c.exec.LookPath("certbot")
	return err == nil
}

// run executes certbot with the given arguments
func (c *Certbot) run(args ...string) (string, error) {
	if !c.IsInstalled() {
		return "", errors.NotInstalled("certbot")
	}
	return executor.Run(c.exec, "certbot", args...)
}

// Paths implements Provisioner.
func (c *Certbot) Paths(hostname string) *CertPair {
	return &CertPair{
		Hostname: hostname,
		CertFile: filepath.Join(c.LiveDir, hostname, "fullchain.pem"),
		KeyFile:  filepath.Join(c.LiveDir, hostname, "privkey.pem"),
	}
}

// Provision implements Provisioner.
func (c *Certbot) Provision(hostname string, force bool) (*CertPair, error) {
	pair := c.Paths(hostname)
	if !force && bothExist(c.fs, pair) {
		logger.Debug("certbot certificate for %s already present", hostname)
		return pair, nil
	}
	if c.Email == "" {
		return nil, errors.Certificate(hostname, errors.New("ssl_email is required for certbot"))
	}

	args := []string{
		"certonly",
		"--standalone",
		"-d", hostname,
		"--email", c.Email,
		"--agree-tos",
		"--non-interactive",
	}
	if force {
		args = append(args, "--force-renewal")
	}

	if _, err := c.run(args...); err != nil {
		return nil, errors.Certificate(hostname, err)
	}

	logger.Info("obtained certbot certificate for %s", hostname)
	pair.Created = true
	return pair, nil
}

// Delete implements Provisioner.
func (c *Certbot) Delete(hostname string) error {
	_, err := c.run("delete", "--cert-name", hostname, "--non-interactive")
	if err != nil {
		return errors.Certificate(hostname, err)
	}
	return nil
}

// List implements Provisioner. It returns the certificate names certbot
// manages.
func (c *Certbot) List() ([]string, error) {
	out, err := c.run("certificates")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Certificate Name:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				names = append(names, strings.TrimSpace(parts[1]))
			}
		}
	}
	return names, nil
}

// RenewAll renews every certificate certbot manages.
func (c *Certbot) RenewAll() error {
	_, err := c.run("renew", "--non-interactive")
	return err
}
