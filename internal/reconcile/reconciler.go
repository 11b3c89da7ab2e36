// Package reconcile applies a route to the vhost file and the hosts table as
// one logical operation.
//
// AddRoute provisions a certificate when needed, appends the vhost block and
// then maps every route name in the hosts table. RemoveRoute excises every
// matching block and unmaps the hostname and every name those blocks served.
//
// Consistency between the two files is asymmetric. A failed vhost step
// aborts the operation with the hosts table untouched. A failed hosts step
// after the vhost write keeps the new vhost state and downgrades the result
// to a warning. Backups are cleaned only when every step succeeded; on a
// failure or warning they stay behind for `devhost backups restore`.
//
// There is no file lock. Two concurrent runs are last-write-wins.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/logger"
	"github.com/ksyq12/devhost/internal/ssl"
	"github.com/ksyq12/devhost/internal/vhostconf"
	"github.com/spf13/afero"
)

// VHostStore is the vhost file as the reconciler uses it.
type VHostStore interface {
	Path() string
	Exists(hostname string) (bool, error)
	Render(route *config.Route, cert *ssl.CertPair) (string, error)
	Add(route *config.Route, cert *ssl.CertPair) (*vhostconf.Block, error)
	Remove(hostname string) ([]*vhostconf.Block, error)
	Cleanup() int
	BackupWarnings() []string
}

// HostsStore is the hosts table as the reconciler uses it.
type HostsStore interface {
	Path() string
	AddEntry(hostname, address string) (bool, error)
	DeleteEntry(hostname, address string) (int, error)
	Cleanup() int
	BackupWarnings() []string
}

// Options configures a Reconciler.
type Options struct {
	VHosts VHostStore
	Hosts  HostsStore
	// Certs is required only for SSL routes.
	Certs ssl.Provisioner
	// Fs is where document roots are created. Defaults to the OS filesystem.
	Fs         afero.Fs
	CreateRoot bool
}

// Reconciler coordinates one vhost file and one hosts table.
type Reconciler struct {
	vhosts     VHostStore
	hosts      HostsStore
	certs      ssl.Provisioner
	fs         afero.Fs
	createRoot bool
	newID      func() string
}

// AddOptions tunes AddRoute.
type AddOptions struct {
	// ForceCert regenerates the certificate even when one exists.
	ForceCert bool
}

// New returns a Reconciler.
func New(opts Options) *Reconciler {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &Reconciler{
		vhosts:     opts.VHosts,
		hosts:      opts.Hosts,
		certs:      opts.Certs,
		fs:         opts.Fs,
		createRoot: opts.CreateRoot,
		newID:      uuid.NewString,
	}
}

// Preview renders the block AddRoute would append. Nothing is written and
// no certificate is generated; SSL routes show the paths the provisioner
// would use.
func (r *Reconciler) Preview(route *config.Route) (string, error) {
	if route == nil {
		return "", errors.ErrInvalidRoute
	}
	var cert *ssl.CertPair
	if route.SSL {
		if r.certs == nil {
			return "", errors.Certificate(route.Hostname, errors.New("no certificate provisioner configured"))
		}
		cert = r.certs.Paths(route.Hostname)
	}
	return r.vhosts.Render(route, cert)
}

// AddRoute publishes route in both files. route must come from
// config.NewRoute.
func (r *Reconciler) AddRoute(route *config.Route, opts AddOptions) *Result {
	res := &Result{OperationID: r.newID(), Action: "add", State: StatePending}
	if route == nil {
		return res.fail(errors.ErrInvalidRoute)
	}
	res.Hostname = route.Hostname
	res.State = StateValidated
	r.log(res, "adding route", map[string]interface{}{"mode": route.Mode(), "port": route.Port, "ssl": route.SSL})

	// Nothing is created before every name is known to be free.
	for _, name := range route.Names() {
		exists, err := r.vhosts.Exists(name)
		if err != nil {
			return r.abort(res, err)
		}
		if exists {
			return r.abort(res, errors.DuplicateRoute(name))
		}
	}

	if r.createRoot && !route.Balancer && route.Target != "" {
		created, err := r.ensureRoot(route.Target)
		if err != nil {
			return r.abort(res, err)
		}
		if created {
			res.RootCreated = route.Target
		}
	}

	var cert *ssl.CertPair
	if route.SSL {
		if r.certs == nil {
			return r.abort(res, errors.Certificate(route.Hostname, errors.New("no certificate provisioner configured")))
		}
		pair, err := r.certs.Provision(route.Hostname, opts.ForceCert)
		if err != nil {
			return r.abort(res, err)
		}
		cert = pair
		res.Cert = pair
		res.State = StateCertProvisioned
	}

	block, err := r.vhosts.Add(route, cert)
	if err != nil {
		if retainsBackup(err) {
			res.Retained = []string{r.vhosts.Path()}
		}
		return r.abort(res, err)
	}
	res.Block = block
	res.State = StateVHostMutated

	for _, name := range route.Names() {
		added, err := r.hosts.AddEntry(name, route.Address)
		if err != nil {
			res.warn(fmt.Sprintf("vhost block kept but hosts entry for %s failed: %v", name, err))
			logger.WarnFields("hosts update failed", map[string]interface{}{"op": res.OperationID, "hostname": name, "error": err.Error()})
			break
		}
		if added {
			res.HostsAdded = append(res.HostsAdded, name)
		}
	}

	return r.finish(res)
}

// RemoveRoute withdraws hostname from both files. A hostname no block
// claims is not an error: the result is not_found and the hosts table is
// still cleaned.
func (r *Reconciler) RemoveRoute(hostname string) *Result {
	res := &Result{OperationID: r.newID(), Action: "remove", Hostname: strings.TrimSpace(hostname), State: StatePending}

	host, err := config.ValidateHostname(hostname)
	if err != nil {
		return res.fail(err)
	}
	res.Hostname = host
	res.State = StateValidated
	r.log(res, "removing route", nil)

	removed, err := r.vhosts.Remove(host)
	if err != nil {
		if retainsBackup(err) {
			res.Retained = []string{r.vhosts.Path()}
		}
		return r.abort(res, err)
	}
	res.Removed = removed
	res.State = StateVHostMutated

	for _, name := range namesToUnmap(host, removed) {
		n, err := r.hosts.DeleteEntry(name, "")
		if err != nil {
			res.warn(fmt.Sprintf("vhost block removed but hosts entry for %s could not be deleted: %v", name, err))
			logger.WarnFields("hosts update failed", map[string]interface{}{"op": res.OperationID, "hostname": name, "error": err.Error()})
			break
		}
		res.HostsRemoved += n
	}

	res = r.finish(res)
	if len(removed) == 0 && res.Status == StatusSuccess {
		res.Status = StatusNotFound
	}
	return res
}

// finish settles the status once the vhost step succeeded.
func (r *Reconciler) finish(res *Result) *Result {
	partial := len(res.Warnings) > 0
	res.Warnings = append(res.Warnings, r.backupWarnings()...)
	if partial {
		res.Status = StatusWarning
		res.Retained = []string{r.vhosts.Path(), r.hosts.Path()}
		r.log(res, "route partially applied, backups retained", map[string]interface{}{"warnings": len(res.Warnings)})
		return res
	}

	res.State = StateHostsMutated
	cleaned := r.vhosts.Cleanup() + r.hosts.Cleanup()
	res.State = StateCleanedUp
	res.Status = StatusSuccess
	if len(res.Warnings) > 0 {
		res.Status = StatusWarning
	}
	r.log(res, "route applied", map[string]interface{}{"backups_removed": cleaned})
	return res
}

func (r *Reconciler) abort(res *Result, err error) *Result {
	res.fail(err)
	res.Warnings = append(res.Warnings, r.backupWarnings()...)
	logger.ErrorFields("operation aborted", map[string]interface{}{
		"op":       res.OperationID,
		"action":   res.Action,
		"hostname": res.Hostname,
		"state":    string(res.State),
		"error":    err.Error(),
	})
	return res
}

func (r *Reconciler) log(res *Result, msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["op"] = res.OperationID
	fields["action"] = res.Action
	fields["hostname"] = res.Hostname
	fields["state"] = string(res.State)
	logger.InfoFields(msg, fields)
}

// backupWarnings drains the backup failures both stores recorded.
func (r *Reconciler) backupWarnings() []string {
	return append(r.vhosts.BackupWarnings(), r.hosts.BackupWarnings()...)
}

// ensureRoot creates dir when it is missing.
func (r *Reconciler) ensureRoot(dir string) (bool, error) {
	ok, err := afero.DirExists(r.fs, dir)
	if err != nil {
		return false, errors.FromFS("stat", dir, err)
	}
	if ok {
		return false, nil
	}
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return false, errors.FromFS("create document root", dir, err)
	}
	return true, nil
}

// retainsBackup reports whether a failed write may have left a backup
// behind. Rejections found while reading never write.
func retainsBackup(err error) bool {
	switch errors.CodeOf(err) {
	case errors.ErrCodeIO, errors.ErrCodePermission:
		return true
	}
	return false
}

// namesToUnmap returns hostname followed by every name the removed blocks
// served, without case-insensitive duplicates.
func namesToUnmap(hostname string, removed []*vhostconf.Block) []string {
	seen := map[string]bool{strings.ToLower(hostname): true}
	names := []string{hostname}
	for _, b := range removed {
		for _, n := range b.Names() {
			if key := strings.ToLower(n); !seen[key] {
				seen[key] = true
				names = append(names, n)
			}
		}
	}
	return names
}
