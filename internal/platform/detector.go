// Package platform provides OS-specific default locations for the Apache
// vhost file, the hosts table and the development web root.
package platform

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"
)

// Layout names the detected installation layout.
type Layout string

const (
	LayoutDebian   Layout = "debian"
	LayoutRHEL     Layout = "rhel"
	LayoutHomebrew Layout = "homebrew"
	LayoutWindows  Layout = "windows"
)

// PlatformPaths contains the detected default paths for one host.
type PlatformPaths struct {
	Layout     Layout
	HostsFile  string
	ServerRoot string
	VHostConf  string
	CertDir    string
	WWWDir     string
	ApacheCtl  string
}

// DetectPaths returns platform-specific default paths.
// It checks for common Apache installation locations for the running OS.
func DetectPaths() (*PlatformPaths, error) {
	return detect(runtime.GOOS, pathExists, os.Getenv)
}

func detect(goos string, exists func(string) bool, getenv func(string) string) (*PlatformPaths, error) {
	switch goos {
	case "darwin":
		return detectDarwinPaths(exists)
	case "linux":
		return detectLinuxPaths(exists), nil
	case "windows":
		return detectWindowsPaths(getenv), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// detectDarwinPaths detects paths for macOS (Homebrew installations).
func detectDarwinPaths(exists func(string) bool) (*PlatformPaths, error) {
	for _, prefix := range []string{"/opt/homebrew", "/usr/local"} {
		if !exists(prefix) {
			continue
		}
		root := path.Join(prefix, "etc/httpd")
		return &PlatformPaths{
			Layout:     LayoutHomebrew,
			HostsFile:  "/etc/hosts",
			ServerRoot: root,
			VHostConf:  path.Join(root, "extra/httpd-vhosts.conf"),
			CertDir:    path.Join(root, "cert"),
			WWWDir:     path.Join(prefix, "var/www"),
			ApacheCtl:  "apachectl",
		}, nil
	}

	return nil, fmt.Errorf("homebrew installation not found (checked /opt/homebrew and /usr/local)")
}

// detectLinuxPaths prefers the RHEL layout only when it is the one present.
func detectLinuxPaths(exists func(string) bool) *PlatformPaths {
	if exists("/etc/httpd") && !exists("/etc/apache2") {
		return &PlatformPaths{
			Layout:     LayoutRHEL,
			HostsFile:  "/etc/hosts",
			ServerRoot: "/etc/httpd",
			VHostConf:  "/etc/httpd/conf.d/devhost.conf",
			CertDir:    "/etc/httpd/cert",
			WWWDir:     "/var/www",
			ApacheCtl:  "apachectl",
		}
	}

	return &PlatformPaths{
		Layout:     LayoutDebian,
		HostsFile:  "/etc/hosts",
		ServerRoot: "/etc/apache2",
		VHostConf:  "/etc/apache2/sites-available/devhost.conf",
		CertDir:    "/etc/apache2/cert",
		WWWDir:     "/var/www",
		ApacheCtl:  "apache2ctl",
	}
}

// detectWindowsPaths lays the stack out under <SystemDrive>\devhost.
func detectWindowsPaths(getenv func(string) string) *PlatformPaths {
	drive := getenv("SystemDrive")
	if drive == "" {
		drive = "C:"
	}
	deploy := winJoin(drive, "devhost")
	root := winJoin(deploy, "bin", "apache", "Apache24")

	return &PlatformPaths{
		Layout:     LayoutWindows,
		HostsFile:  winJoin(drive, "Windows", "System32", "drivers", "etc", "hosts"),
		ServerRoot: root,
		VHostConf:  winJoin(root, "conf", "extra", "httpd-vhosts.conf"),
		CertDir:    winJoin(root, "cert"),
		WWWDir:     winJoin(deploy, "www"),
		ApacheCtl:  winJoin(root, "bin", "httpd.exe"),
	}
}

func winJoin(parts ...string) string {
	return strings.Join(parts, `\`)
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
