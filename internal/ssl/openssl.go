package ssl

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/executor"
	"github.com/ksyq12/devhost/internal/logger"
	"github.com/spf13/afero"
)

// certValidityDays matches a ten-year local development certificate.
const certValidityDays = "3650"

// OpenSSL generates self-signed certificates into a directory as
// <hostname>.crt and <hostname>.key.
type OpenSSL struct {
	Dir  string
	fs   afero.Fs
	exec executor.CommandExecutor
}

// NewOpenSSL returns an OpenSSL provisioner writing to dir.
func NewOpenSSL(dir string, fs afero.Fs, exec executor.CommandExecutor) *OpenSSL {
	return &OpenSSL{Dir: dir, fs: fs, exec: exec}
}

// Name implements Provisioner.
func (o *OpenSSL) Name() string {
	return "openssl"
}

// Paths implements Provisioner.
func (o *OpenSSL) Paths(hostname string) *CertPair {
	return &CertPair{
		Hostname: hostname,
		CertFile: filepath.Join(o.Dir, hostname+".crt"),
		KeyFile:  filepath.Join(o.Dir, hostname+".key"),
	}
}

// IsInstalled reports whether the openssl binary is on PATH.
func (o *OpenSSL) IsInstalled() bool {
	_, err := o.exec.LookPath("openssl")
	return err == nil
}

// Provision implements Provisioner.
func (o *OpenSSL) Provision(hostname string, force bool) (*CertPair, error) {
	pair := o.Paths(hostname)
	if !force && bothExist(o.fs, pair) {
		logger.Debug("certificate for %s already present in %s", hostname, o.Dir)
		return pair, nil
	}

	if o.Dir == "" {
		return nil, errors.Certificate(hostname, errors.New("certificate directory is not configured"))
	}
	if !o.IsInstalled() {
		return nil, errors.Certificate(hostname, errors.NotInstalled("openssl"))
	}
	if err := o.fs.MkdirAll(o.Dir, 0755); err != nil {
		return nil, errors.Certificate(hostname, err)
	}

	args := []string{
		"req", "-x509", "-nodes",
		"-days", certValidityDays,
		"-newkey", "rsa:2048",
		"-keyout", pair.KeyFile,
		"-out", pair.CertFile,
		"-subj", "/CN=" + hostname + "/O=Dev/C=IN",
	}
	if _, err := executor.Run(o.exec, "openssl", args...); err != nil {
		return nil, errors.Certificate(hostname, err)
	}
	if !bothExist(o.fs, pair) {
		return nil, errors.Certificate(hostname, errors.New("openssl reported success but files are missing"))
	}

	logger.Info("generated self-signed certificate for %s", hostname)
	pair.Created = true
	return pair, nil
}

// List implements Provisioner. It returns hostnames with a .crt file.
func (o *OpenSSL) List() ([]string, error) {
	infos, err := afero.ReadDir(o.fs, o.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.FromFS("list certificates", o.Dir, err)
	}

	var hosts []string
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".crt") {
			hosts = append(hosts, strings.TrimSuffix(info.Name(), ".crt"))
		}
	}
	sort.Strings(hosts)
	return hosts, nil
}

// Delete implements Provisioner. Missing files are ignored.
func (o *OpenSSL) Delete(hostname string) error {
	pair := o.Paths(hostname)
	for _, p := range []string{pair.CertFile, pair.KeyFile} {
		if err := o.fs.Remove(p); err != nil && !os.IsNotExist(err) {
			return errors.FromFS("delete certificate", p, err)
		}
	}
	return nil
}

// Expiry returns the notAfter date of certFile as reported by
// "openssl x509 -enddate".
func Expiry(exec executor.CommandExecutor, certFile string) (time.Time, error) {
	out, err := executor.Run(exec, "openssl", "x509", "-enddate", "-noout", "-in", certFile)
	if err != nil {
		return time.Time{}, err
	}
	_, date, ok := strings.Cut(strings.TrimSpace(out), "=")
	if !ok {
		return time.Time{}, errors.Validationf("unexpected openssl output %q", out)
	}
	return time.Parse("Jan _2 15:04:05 2006 MST", strings.TrimSpace(date))
}
