package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/hosts"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/ksyq12/devhost/internal/ssl"
	"github.com/ksyq12/devhost/internal/vhostconf"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/txn2/txeh"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks on the system and the devhost routes.

Checks:
  - Apache control binary and version
  - Certificate tooling for the configured provider
  - Vhost file syntax and apache config test
  - Hosts file mappings for every route
  - Document roots and certificates referenced by routes

Examples:
  devhost doctor
  devhost doctor --json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// Check statuses
const (
	checkSuccess = "success"
	checkWarning = "warning"
	checkError   = "error"
)

// certExpiryWarning is how close to expiry a certificate gets flagged
const certExpiryWarning = 14 * 24 * time.Hour

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// RouteStatus represents the status of a single route
type RouteStatus struct {
	Hostname string        `json:"hostname"`
	Line     int           `json:"line"`
	Checks   []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Routes             []RouteStatus `json:"routes"`
}

// Status returns the most severe status in the report
func (r *DoctorReport) Status() string {
	worst := checkSuccess
	all := append(append([]CheckResult{}, r.SystemRequirements...), r.Configuration...)
	for _, route := range r.Routes {
		all = append(all, route.Checks...)
	}
	for _, c := range all {
		if c.Status == checkError {
			return checkError
		}
		if c.Status == checkWarning {
			worst = checkWarning
		}
	}
	return worst
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, stack, err := loadStack()
	if err != nil {
		return err
	}

	// Run all checks
	report := &DoctorReport{}
	report.SystemRequirements = checkSystemRequirements(stack)
	report.Configuration = checkConfiguration(cfg, stack)
	report.Routes = checkRoutes(cfg, stack)

	// Output results
	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkSystemRequirements(stack *Stack) []CheckResult {
	results := []CheckResult{}

	drv := stack.Driver
	if drv.Available() {
		version := "unknown"
		if v, err := drv.Version(); err == nil {
			version = v
		}
		results = append(results, CheckResult{
			Status:  checkSuccess,
			Message: fmt.Sprintf("%s installed (%s)", capitalize(drv.Name()), version),
		})
	} else {
		results = append(results, CheckResult{
			Status:  checkError,
			Message: fmt.Sprintf("%s not installed", capitalize(drv.Name())),
		})
	}

	// Certificate tooling is only needed for --ssl routes
	if p, ok := stack.Certs.(interface{ IsInstalled() bool }); ok {
		if p.IsInstalled() {
			results = append(results, CheckResult{
				Status:  checkSuccess,
				Message: fmt.Sprintf("%s installed", capitalize(stack.Certs.Name())),
			})
		} else {
			results = append(results, CheckResult{
				Status:  checkWarning,
				Message: fmt.Sprintf("%s not installed (needed for --ssl)", capitalize(stack.Certs.Name())),
			})
		}
	}

	if _, err := deps.Runner.LookPath("tail"); err != nil {
		results = append(results, CheckResult{
			Status:  checkWarning,
			Message: "tail not installed (needed for logs --follow)",
		})
	}

	return results
}

func checkConfiguration(cfg *config.Config, stack *Stack) []CheckResult {
	results := []CheckResult{}

	// Check config file exists
	path := configPath
	if path == "" {
		path, _ = config.ConfigPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			// Use ~ notation for display
			displayPath := path
			if home := os.Getenv("HOME"); home != "" {
				displayPath = strings.Replace(path, home, "~", 1)
			}
			results = append(results, CheckResult{
				Status:  checkSuccess,
				Message: fmt.Sprintf("Config file exists (%s)", displayPath),
			})
		} else {
			results = append(results, CheckResult{
				Status:  checkWarning,
				Message: "Config file not found, using defaults",
			})
		}
	}

	// Vhost file syntax
	if !stack.Store.Exists(cfg.VHostConf) {
		results = append(results, CheckResult{
			Status:  checkWarning,
			Message: fmt.Sprintf("Vhost file %s does not exist yet", cfg.VHostConf),
		})
	} else if _, err := stack.VHosts.Load(); err != nil {
		results = append(results, CheckResult{
			Status:  checkError,
			Message: fmt.Sprintf("Vhost file invalid: %v", err),
		})
	} else {
		results = append(results, CheckResult{
			Status:  checkSuccess,
			Message: fmt.Sprintf("Vhost file OK (%s)", cfg.VHostConf),
		})
	}

	// Hosts file readable
	if _, err := stack.Hosts.Load(); err != nil {
		results = append(results, CheckResult{
			Status:  checkError,
			Message: fmt.Sprintf("Hosts file unreadable: %v", err),
		})
	} else {
		results = append(results, CheckResult{
			Status:  checkSuccess,
			Message: fmt.Sprintf("Hosts file OK (%s)", cfg.HostsFile),
		})
	}

	// Leftover backups mean an earlier operation stopped half way
	for _, p := range managedFiles(stack) {
		if backups, err := stack.Store.Backups(p); err == nil && len(backups) > 0 {
			results = append(results, CheckResult{
				Status:  checkWarning,
				Message: fmt.Sprintf("%d backup(s) of %s left behind (see 'devhost backups list')", len(backups), p),
			})
		}
	}

	// Test web server config syntax
	drv := stack.Driver
	if !drv.Available() {
		return results
	}
	if err := drv.Test(); err == nil {
		results = append(results, CheckResult{
			Status:  checkSuccess,
			Message: fmt.Sprintf("%s config syntax OK", capitalize(drv.Name())),
		})
	} else {
		results = append(results, CheckResult{
			Status:  checkError,
			Message: fmt.Sprintf("%s config syntax error", capitalize(drv.Name())),
		})
	}

	return results
}

func checkRoutes(cfg *config.Config, stack *Stack) []RouteStatus {
	statuses := []RouteStatus{}

	blocks, err := stack.VHosts.List()
	if err != nil {
		return statuses
	}

	table, err := stack.Hosts.Load()
	if err != nil {
		table = hosts.Parse("")
	}
	independent := loadIndependentHosts(stack, cfg.HostsFile)

	for _, b := range blocks {
		status := RouteStatus{
			Hostname: b.ServerName,
			Line:     b.StartLine,
			Checks:   []CheckResult{},
		}
		if b.ServerName == "" {
			status.Checks = append(status.Checks, CheckResult{
				Status:  checkWarning,
				Message: "block has no ServerName",
			})
			statuses = append(statuses, status)
			continue
		}

		status.Checks = append(status.Checks, checkMappings(b, table, independent)...)
		status.Checks = append(status.Checks, checkRouteFiles(cfg, stack, b)...)

		if len(status.Checks) == 0 {
			status.Checks = append(status.Checks, CheckResult{
				Status:  checkSuccess,
				Message: "mapped, files present",
			})
		}
		statuses = append(statuses, status)
	}

	return statuses
}

// loadIndependentHosts parses the hosts file a second time with txeh so the
// two parsers can be compared. It returns nil when txeh cannot read it.
func loadIndependentHosts(stack *Stack, path string) *txeh.Hosts {
	content, err := stack.Store.Read(path)
	if err != nil {
		return nil
	}
	h, err := txeh.NewHosts(&txeh.HostsConfig{RawText: &content})
	if err != nil {
		return nil
	}
	return h
}

func checkMappings(b *vhostconf.Block, table *hosts.File, independent *txeh.Hosts) []CheckResult {
	var results []CheckResult
	for _, name := range b.Names() {
		addresses := table.Lookup(name)
		if len(addresses) == 0 {
			results = append(results, CheckResult{
				Status:  checkWarning,
				Message: fmt.Sprintf("%s not mapped in hosts file", name),
			})
			continue
		}
		if independent == nil {
			continue
		}
		for _, addr := range addresses {
			if !containsFold(independent.ListHostsByIP(addr), name) {
				results = append(results, CheckResult{
					Status:  checkWarning,
					Message: fmt.Sprintf("second hosts parser disagrees on %s -> %s", name, addr),
				})
			}
		}
	}
	return results
}

func checkRouteFiles(cfg *config.Config, stack *Stack, b *vhostconf.Block) []CheckResult {
	var results []CheckResult

	if root := b.Value("DocumentRoot"); root != "" {
		if ok, _ := afero.DirExists(stack.Fs, root); !ok {
			results = append(results, CheckResult{
				Status:  checkWarning,
				Message: fmt.Sprintf("document root %s missing", root),
			})
		}
	}

	if !b.SSL() {
		return results
	}
	for _, directive := range []string{"SSLCertificateFile", "SSLCertificateKeyFile"} {
		p := vhostconf.ResolvePath(cfg.ServerRoot, b.Value(directive))
		if p == "" {
			results = append(results, CheckResult{
				Status:  checkError,
				Message: fmt.Sprintf("SSLEngine on without %s", directive),
			})
			continue
		}
		if ok, _ := afero.Exists(stack.Fs, p); !ok {
			results = append(results, CheckResult{
				Status:  checkError,
				Message: fmt.Sprintf("%s missing (%s)", directive, p),
			})
		}
	}

	certFile := vhostconf.ResolvePath(cfg.ServerRoot, b.Value("SSLCertificateFile"))
	if expiry, err := ssl.Expiry(stack.Exec, certFile); err == nil && time.Until(expiry) < certExpiryWarning {
		results = append(results, CheckResult{
			Status:  checkWarning,
			Message: fmt.Sprintf("certificate expires %s (run 'devhost cert %s --force')", expiry.Format("2006-01-02"), b.ServerName),
		})
	}
	return results
}

func displayDoctorResults(report *DoctorReport) {
	// System requirements
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck(check)
	}
	output.Print("")

	// Configuration
	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck(check)
	}
	output.Print("")

	// Routes
	if len(report.Routes) == 0 {
		output.Print("No routes configured")
	} else {
		output.Print("Checking routes...")
		for _, route := range report.Routes {
			for _, check := range route.Checks {
				displayCheck(CheckResult{
					Status:  check.Status,
					Message: fmt.Sprintf("%s - %s", route.Hostname, check.Message),
				})
			}
		}
	}
	output.Print("")

	switch report.Status() {
	case checkError:
		output.Error("Problems found")
	case checkWarning:
		output.Warn("No errors, some warnings")
	default:
		output.Success("Everything looks good")
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case checkSuccess:
		output.Success("%s", check.Message)
	case checkWarning:
		output.Warn("%s", check.Message)
	case checkError:
		output.Error("%s", check.Message)
	}
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
