package cli

import (
	"os"
	"os/exec"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/driver"
	"github.com/ksyq12/devhost/internal/executor"
	"github.com/ksyq12/devhost/internal/hosts"
	"github.com/ksyq12/devhost/internal/input"
	"github.com/ksyq12/devhost/internal/reconcile"
	"github.com/ksyq12/devhost/internal/ssl"
	"github.com/ksyq12/devhost/internal/textstore"
	"github.com/ksyq12/devhost/internal/vhostconf"
	"github.com/spf13/afero"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader ConfigLoader
	StackFactory StackFactory
	StdinReader  input.Reader
	Runner       CommandRunner
}

// ConfigLoader handles configuration loading
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
}

// StackFactory wires the stores, provisioner and driver for a configuration
type StackFactory interface {
	Create(cfg *config.Config) (*Stack, error)
}

// CommandRunner runs commands attached to the terminal (tail -f)
type CommandRunner interface {
	RunInteractive(name string, args ...string) error
	LookPath(file string) (string, error)
}

// Stack is everything one command needs to act on the configured files.
type Stack struct {
	Fs         afero.Fs
	Store      *textstore.Store
	VHosts     *vhostconf.File
	Hosts      *hosts.Table
	Certs      ssl.Provisioner
	Driver     driver.Driver
	Exec       executor.CommandExecutor
	Reconciler *reconcile.Reconciler
}

// NewStack builds a Stack over fs using exec for external tools and drv for
// the web server.
func NewStack(cfg *config.Config, fs afero.Fs, exec executor.CommandExecutor, drv driver.Driver) (*Stack, error) {
	certs, err := ssl.New(ssl.Options{
		Provider: cfg.SSLProvider,
		CertDir:  cfg.CertDir,
		Email:    cfg.SSLEmail,
		Fs:       fs,
		Executor: exec,
	})
	if err != nil {
		return nil, err
	}

	store := textstore.New(fs)
	s := &Stack{
		Fs:     fs,
		Store:  store,
		VHosts: vhostconf.NewFile(store, cfg.VHostConf),
		Hosts:  hosts.NewTable(store, cfg.HostsFile),
		Certs:  certs,
		Driver: drv,
		Exec:   exec,
	}
	s.Reconciler = reconcile.New(reconcile.Options{
		VHosts:     s.VHosts,
		Hosts:      s.Hosts,
		Certs:      certs,
		Fs:         fs,
		CreateRoot: cfg.CreateRoot,
	})
	return s, nil
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader: &realConfigLoader{},
	StackFactory: &realStackFactory{},
	StdinReader:  input.NewStdinReader(),
	Runner:       &realCommandRunner{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	return config.Load(path)
}

type realStackFactory struct{}

func (r *realStackFactory) Create(cfg *config.Config) (*Stack, error) {
	exec := executor.NewSystemExecutor()
	return NewStack(cfg, afero.NewOsFs(), exec, driver.New(cfg.ApacheCtl))
}

type realCommandRunner struct{}

func (r *realCommandRunner) RunInteractive(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (r *realCommandRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
