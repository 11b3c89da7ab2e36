// Package ssl provisions certificates for route hostnames.
//
// Two Provisioners exist:
//   - OpenSSL (default): a self-signed pair written to the configured
//     certificate directory as <hostname>.crt and <hostname>.key. Works for
//     names that only resolve through the local hosts table.
//   - Certbot: a Let's Encrypt pair under /etc/letsencrypt/live/<hostname>,
//     obtained in standalone mode. Needs a publicly resolvable hostname and
//     ssl_email.
//
// # Usage
//
//	p, err := ssl.New(ssl.Options{Provider: cfg.SSLProvider, CertDir: cfg.CertDir})
//	pair, err := p.Provision("dev.local", false)
//	fmt.Println(pair.CertFile, pair.KeyFile)
//
// Provision is idempotent: an existing pair is returned untouched unless
// force is set. All failures carry the CERTIFICATE error code and the
// external tool's output.
//
// # Testing
//
// Both provisioners take an afero.Fs and an executor.CommandExecutor, so
// tests can run against afero.NewMemMapFs and executor.MockExecutor.
package ssl
