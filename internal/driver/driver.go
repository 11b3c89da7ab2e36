package driver

// Driver controls the running web server. It never edits configuration;
// vhost blocks are written by the vhostconf package.
type Driver interface {
	// Name returns the driver name
	Name() string

	// Available reports whether the control binary can be found
	Available() bool

	// Test validates the web server config syntax
	Test() error

	// Reload applies the current configuration without dropping connections
	Reload() error

	// Version returns the server version banner
	Version() (string, error)
}

// New returns the driver for the given control binary. An empty ctl
// selects apachectl.
func New(ctl string) Driver {
	if ctl == "" {
		ctl = "apachectl"
	}
	return NewApache(ctl)
}
