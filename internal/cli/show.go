package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/ksyq12/devhost/internal/ssl"
	"github.com/ksyq12/devhost/internal/vhostconf"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <hostname>",
	Short: "Show details of a route",
	Long: `Show the vhost block and hosts entries for a hostname.

Examples:
  devhost show dev.local
  devhost show dev.local --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// showDetail represents the detailed route information for output
type showDetail struct {
	Hostname   string     `json:"hostname"`
	Aliases    []string   `json:"aliases,omitempty"`
	Listen     string     `json:"listen"`
	Mode       string     `json:"mode"`
	Target     string     `json:"target,omitempty"`
	Members    []string   `json:"members,omitempty"`
	SSL        bool       `json:"ssl"`
	SSLCert    string     `json:"ssl_cert,omitempty"`
	SSLKey     string     `json:"ssl_key,omitempty"`
	SSLExpires *time.Time `json:"ssl_expires,omitempty"`
	ErrorLog   string     `json:"error_log,omitempty"`
	AccessLog  string     `json:"access_log,omitempty"`
	Addresses  []string   `json:"addresses"`
	File       string     `json:"file"`
	StartLine  int        `json:"start_line"`
	EndLine    int        `json:"end_line"`
	Block      string     `json:"block"`
}

func runShow(cmd *cobra.Command, args []string) error {
	hostname, err := config.ValidateHostname(args[0])
	if err != nil {
		return err
	}

	cfg, stack, err := loadStack()
	if err != nil {
		return err
	}

	blocks, err := stack.VHosts.Find(hostname)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return errors.NotFound(hostname)
	}

	addresses, err := stack.Hosts.Lookup(hostname)
	if err != nil {
		output.Warn("Could not read hosts file: %v", err)
	}

	details := make([]showDetail, 0, len(blocks))
	for _, b := range blocks {
		details = append(details, newShowDetail(cfg, stack, b, addresses))
	}

	// Output JSON if requested
	if jsonOutput {
		if len(details) == 1 {
			return output.JSON(details[0])
		}
		return output.JSON(details)
	}

	for _, d := range details {
		printShowDetail(d)
	}
	return nil
}

func newShowDetail(cfg *config.Config, stack *Stack, b *vhostconf.Block, addresses []string) showDetail {
	item := newRouteListItem(b, nil)
	d := showDetail{
		Hostname:  b.ServerName,
		Aliases:   b.ServerAliases,
		Listen:    b.Address,
		Mode:      item.Mode,
		Target:    item.Target,
		SSL:       b.SSL(),
		SSLCert:   b.Value("SSLCertificateFile"),
		SSLKey:    b.Value("SSLCertificateKeyFile"),
		ErrorLog:  vhostconf.ResolvePath(cfg.ServerRoot, b.Value("ErrorLog")),
		AccessLog: vhostconf.ResolvePath(cfg.ServerRoot, b.Value("CustomLog")),
		Addresses: addresses,
		File:      cfg.VHostConf,
		StartLine: b.StartLine,
		EndLine:   b.EndLine,
		Block:     b.Raw,
	}
	if d.Mode == "balancer" {
		d.Members = b.Values("BalancerMember")
		d.Target = ""
	}
	if d.Addresses == nil {
		d.Addresses = []string{}
	}

	// Get SSL expiry if SSL is enabled
	if d.SSL && d.SSLCert != "" {
		if expiry, err := ssl.Expiry(stack.Exec, d.SSLCert); err == nil {
			d.SSLExpires = &expiry
		}
	}
	return d
}

func printShowDetail(d showDetail) {
	output.Print("")
	output.Field("Hostname", d.Hostname)
	if len(d.Aliases) > 0 {
		output.Field("Aliases", strings.Join(d.Aliases, " "))
	}
	output.Field("Listen", d.Listen)
	output.Field("Mode", d.Mode)
	if d.Target != "" {
		output.Field("Target", d.Target)
	}
	for _, m := range d.Members {
		output.Field("Member", m)
	}

	if d.SSL {
		output.Field("SSL", "enabled")
		if d.SSLCert != "" {
			output.Field("  Cert", d.SSLCert)
		}
		if d.SSLKey != "" {
			output.Field("  Key", d.SSLKey)
		}
		if d.SSLExpires != nil {
			output.Field("  Expires", d.SSLExpires.Format("2006-01-02"))
		}
	} else {
		output.Field("SSL", "disabled")
	}

	if len(d.Addresses) > 0 {
		output.Field("Hosts", strings.Join(d.Addresses, ", "))
	} else {
		output.Field("Hosts", "not mapped")
	}
	if d.ErrorLog != "" {
		output.Field("Error log", d.ErrorLog)
	}
	if d.AccessLog != "" {
		output.Field("Access log", d.AccessLog)
	}
	output.Field("Defined in", fmt.Sprintf("%s:%d-%d", d.File, d.StartLine, d.EndLine))
	output.Print("")
	output.Block(d.Block)
	output.Print("")
}
