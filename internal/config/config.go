package config

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/platform"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	VHostConf   string `yaml:"vhost_conf" json:"vhost_conf" env:"DEVHOST_VHOST_CONF"`
	HostsFile   string `yaml:"hosts_file" json:"hosts_file" env:"DEVHOST_HOSTS_FILE"`
	ServerRoot  string `yaml:"server_root" json:"server_root" env:"DEVHOST_SERVER_ROOT"`
	CertDir     string `yaml:"cert_dir" json:"cert_dir" env:"DEVHOST_CERT_DIR"`
	WWWDir      string `yaml:"www_dir" json:"www_dir" env:"DEVHOST_WWW_DIR"`
	ApacheCtl   string `yaml:"apache_ctl" json:"apache_ctl" env:"DEVHOST_APACHE_CTL"`
	Address     string `yaml:"address" json:"address" env:"DEVHOST_ADDRESS"`
	Port        int    `yaml:"port" json:"port" env:"DEVHOST_PORT"`
	SSLProvider string `yaml:"ssl_provider" json:"ssl_provider" env:"DEVHOST_SSL_PROVIDER"`
	SSLEmail    string `yaml:"ssl_email,omitempty" json:"ssl_email,omitempty" env:"DEVHOST_SSL_EMAIL"`
	CreateRoot  bool   `yaml:"create_root" json:"create_root" env:"DEVHOST_CREATE_ROOT"`
	AuditLog    string `yaml:"audit_log,omitempty" json:"audit_log,omitempty" env:"DEVHOST_AUDIT_LOG"`
}

// configDir is the default config directory
const configDir = ".config/devhost"
const configFile = "config.yaml"

// SSL providers.
const (
	SSLProviderOpenSSL = "openssl"
	SSLProviderCertbot = "certbot"
)

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Address:     DefaultAddress,
		Port:        DefaultPort,
		SSLProvider: SSLProviderOpenSSL,
		CreateRoot:  true,
	}
}

// NewForPlatform returns defaults filled with the detected platform paths.
func NewForPlatform(p *platform.PlatformPaths) *Config {
	cfg := New()
	if p == nil {
		return cfg
	}
	cfg.VHostConf = p.VHostConf
	cfg.HostsFile = p.HostsFile
	cfg.ServerRoot = p.ServerRoot
	cfg.CertDir = p.CertDir
	cfg.WWWDir = p.WWWDir
	cfg.ApacheCtl = p.ApacheCtl
	return cfg
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load builds the configuration in layers: platform defaults, the YAML file
// at path (ConfigPath when empty), a .env file in the working directory, and
// finally DEVHOST_* environment variables.
func Load(path string) (*Config, error) {
	paths, err := platform.DetectPaths()
	if err != nil {
		paths = nil
	}
	return load(path, paths)
}

func load(path string, paths *platform.PlatformPaths) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := NewForPlatform(paths)

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to read config", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, "failed to parse config", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to load .env", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to parse environment", err)
	}

	if cfg.CertDir == "" && cfg.ServerRoot != "" {
		cfg.CertDir = filepath.Join(cfg.ServerRoot, "cert")
	}

	return cfg, nil
}

// Validate checks the values a route operation depends on.
func (c *Config) Validate() error {
	if c.VHostConf == "" {
		return errors.Wrap(errors.ErrCodeConfig, "vhost_conf is not set", nil)
	}
	if c.HostsFile == "" {
		return errors.Wrap(errors.ErrCodeConfig, "hosts_file is not set", nil)
	}
	if _, err := netip.ParseAddr(c.Address); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("address %q is not an IP literal", c.Address), nil)
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("port %d out of range", c.Port), nil)
	}
	switch c.SSLProvider {
	case SSLProviderOpenSSL, SSLProviderCertbot:
	default:
		return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("unknown ssl_provider %q (available: openssl, certbot)", c.SSLProvider), nil)
	}
	return nil
}

// Save writes the config to path (ConfigPath when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultRoot returns the document root used when a route names none.
func (c *Config) DefaultRoot(hostname string) string {
	return filepath.Join(c.WWWDir, hostname)
}
