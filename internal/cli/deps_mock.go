package cli

import (
	"errors"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/driver"
	"github.com/ksyq12/devhost/internal/executor"
	"github.com/ksyq12/devhost/internal/input"
	"github.com/spf13/afero"
)

// Fixture paths used by the mock stack.
const (
	MockVHostConf  = "/etc/apache2/sites-available/devhost.conf"
	MockHostsFile  = "/etc/hosts"
	MockServerRoot = "/etc/apache2"
	MockCertDir    = "/etc/apache2/cert"
	MockWWWDir     = "/var/www"
)

// MockConfig returns a configuration pointing at the mock fixture paths.
func MockConfig() *config.Config {
	cfg := config.New()
	cfg.VHostConf = MockVHostConf
	cfg.HostsFile = MockHostsFile
	cfg.ServerRoot = MockServerRoot
	cfg.CertDir = MockCertDir
	cfg.WWWDir = MockWWWDir
	cfg.ApacheCtl = "apache2ctl"
	return cfg
}

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	LoadCalls []string
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	m.LoadCalls = append(m.LoadCalls, path)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = MockConfig()
	}
	return m.Cfg, nil
}

// MockStackFactory builds stacks over an in-memory filesystem. The external
// openssl is simulated by writing the requested files into Fs.
type MockStackFactory struct {
	Fs     afero.Fs
	Exec   *executor.MockExecutor
	Driver *driver.MockDriver
	Err    error
}

// NewMockStackFactory seeds an in-memory filesystem with the given hosts and
// vhost file content.
func NewMockStackFactory(hostsContent, vhostContent string) *MockStackFactory {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, MockHostsFile, []byte(hostsContent), 0644)
	if vhostContent != "" {
		_ = afero.WriteFile(fs, MockVHostConf, []byte(vhostContent), 0644)
	}
	return &MockStackFactory{
		Fs:     fs,
		Exec:   fakeOpenSSLExecutor(fs),
		Driver: driver.NewMockDriver("apache"),
	}
}

func (m *MockStackFactory) Create(cfg *config.Config) (*Stack, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return NewStack(cfg, m.Fs, m.Exec, m.Driver)
}

// Read returns the content of path in the mock filesystem, or "" when absent.
func (m *MockStackFactory) Read(path string) string {
	data, err := afero.ReadFile(m.Fs, path)
	if err != nil {
		return ""
	}
	return string(data)
}

func fakeOpenSSLExecutor(fs afero.Fs) *executor.MockExecutor {
	return &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			if name != "openssl" {
				return nil, nil
			}
			for i := 0; i < len(args)-1; i++ {
				if args[i] == "-keyout" || args[i] == "-out" {
					_ = afero.WriteFile(fs, args[i+1], []byte("PEM"), 0600)
				}
			}
			return nil, nil
		},
	}
}

// MockCommandRunner is a test double for CommandRunner
type MockCommandRunner struct {
	Calls        [][]string
	LookPathFunc func(file string) (string, error)
	RunFunc      func(name string, args ...string) error
	Err          error
}

func (m *MockCommandRunner) RunInteractive(name string, args ...string) error {
	m.Calls = append(m.Calls, append([]string{name}, args...))
	if m.RunFunc != nil {
		return m.RunFunc(name, args...)
	}
	return m.Err
}

func (m *MockCommandRunner) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return "/usr/bin/" + file, nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader: &MockConfigLoader{Cfg: MockConfig()},
			StackFactory: NewMockStackFactory("127.0.0.1 localhost\n", ""),
			StdinReader:  input.NewAnswers("y\n"),
			Runner:       &MockCommandRunner{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithStackFactory sets a custom stack factory
func (b *MockDependenciesBuilder) WithStackFactory(factory StackFactory) *MockDependenciesBuilder {
	b.deps.StackFactory = factory
	return b
}

// WithStdinInput sets the stdin input for the mock
func (b *MockDependenciesBuilder) WithStdinInput(inputs ...string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewAnswers(inputs...)
	return b
}

// WithRunner sets the command runner
func (b *MockDependenciesBuilder) WithRunner(r CommandRunner) *MockDependenciesBuilder {
	b.deps.Runner = r
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// TestHelper provides utilities for CLI tests
type TestHelper struct {
	T interface {
		Helper()
		Cleanup(func())
	}
	OldDeps    *Dependencies
	Stack      *MockStackFactory
	MockDriver *driver.MockDriver
	MockConfig *MockConfigLoader
	Runner     *MockCommandRunner
}

// NewTestHelper installs mock dependencies over the given hosts and vhost
// file content and restores the real ones when the test ends.
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
}, hostsContent, vhostContent string) *TestHelper {
	t.Helper()

	stack := NewMockStackFactory(hostsContent, vhostContent)
	mockConfig := &MockConfigLoader{Cfg: MockConfig()}
	runner := &MockCommandRunner{}

	helper := &TestHelper{
		T:          t,
		OldDeps:    deps,
		Stack:      stack,
		MockDriver: stack.Driver,
		MockConfig: mockConfig,
		Runner:     runner,
	}

	deps = NewMockDeps().
		WithStackFactory(stack).
		WithConfigLoader(mockConfig).
		WithRunner(runner).
		Build()

	oldJSON := jsonOutput
	t.Cleanup(func() {
		deps = helper.OldDeps
		jsonOutput = oldJSON
	})

	return helper
}

// SetStdinInput sets the stdin input
func (h *TestHelper) SetStdinInput(inputs ...string) {
	deps.StdinReader = input.NewAnswers(inputs...)
}

// GetConfig returns the current mock config
func (h *TestHelper) GetConfig() *config.Config {
	return h.MockConfig.Cfg
}

// Hosts returns the current hosts file content
func (h *TestHelper) Hosts() string {
	return h.Stack.Read(MockHostsFile)
}

// VHosts returns the current vhost file content
func (h *TestHelper) VHosts() string {
	return h.Stack.Read(MockVHostConf)
}

// FailOpenSSL makes every openssl invocation fail
func (h *TestHelper) FailOpenSSL() {
	h.Stack.Exec.ExecuteFunc = func(name string, args ...string) ([]byte, error) {
		return []byte("unable to write 'random state'"), errors.New("exit status 1")
	}
}
