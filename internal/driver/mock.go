package driver

// MockDriver is a test double for Driver interface
type MockDriver struct {
	name string

	// Function mocks - set these to customize behavior
	AvailableFunc func() bool
	TestFunc      func() error
	ReloadFunc    func() error
	VersionFunc   func() (string, error)

	// Call tracking - check these to verify interactions
	TestCalls    int
	ReloadCalls  int
	VersionCalls int
}

// NewMockDriver creates a new MockDriver with default no-op implementations
func NewMockDriver(name string) *MockDriver {
	return &MockDriver{name: name}
}

// Name returns the driver name
func (m *MockDriver) Name() string {
	return m.name
}

// Available invokes the mock function if set, otherwise reports true
func (m *MockDriver) Available() bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return true
}

// Test records the call and invokes the mock function if set
func (m *MockDriver) Test() error {
	m.TestCalls++
	if m.TestFunc != nil {
		return m.TestFunc()
	}
	return nil
}

// Reload records the call and invokes the mock function if set
func (m *MockDriver) Reload() error {
	m.ReloadCalls++
	if m.ReloadFunc != nil {
		return m.ReloadFunc()
	}
	return nil
}

// Version records the call and invokes the mock function if set
func (m *MockDriver) Version() (string, error) {
	m.VersionCalls++
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "Apache/2.4.58 (mock)", nil
}

// Reset clears all call tracking
func (m *MockDriver) Reset() {
	m.TestCalls = 0
	m.ReloadCalls = 0
	m.VersionCalls = 0
}
