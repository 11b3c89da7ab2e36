package cli

import (
	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/ksyq12/devhost/internal/ssl"
	"github.com/spf13/cobra"
)

var (
	forceCertRenew  bool
	forceCertDelete bool
)

var certCmd = &cobra.Command{
	Use:   "cert <hostname>",
	Short: "Provision a certificate for a hostname",
	Long: `Provision a certificate for a hostname with the configured ssl_provider.

An existing certificate and key are kept unless --force is given. The vhost
file is not touched; use 'devhost add --ssl' to serve the route over TLS.

Examples:
  devhost cert dev.local
  devhost cert dev.local --force
  devhost cert list
  devhost cert renew
  devhost cert delete dev.local`,
	Args: cobra.ExactArgs(1),
	RunE: runCert,
}

var certListCmd = &cobra.Command{
	Use:   "list",
	Short: "List provisioned certificates",
	Args:  cobra.NoArgs,
	RunE:  runCertList,
}

var certRenewCmd = &cobra.Command{
	Use:   "renew",
	Short: "Renew every provisioned certificate",
	Long: `Renew every certificate of the configured ssl_provider. certbot renews
through its own scheduler; openssl regenerates each self-signed pair.`,
	Args: cobra.NoArgs,
	RunE: runCertRenew,
}

var certDeleteCmd = &cobra.Command{
	Use:   "delete <hostname>",
	Short: "Delete the certificate of a hostname",
	Args:  cobra.ExactArgs(1),
	RunE:  runCertDelete,
}

func init() {
	certCmd.Flags().BoolVar(&forceCertRenew, "force", false, "Regenerate the certificate even if one exists")
	certDeleteCmd.Flags().BoolVarP(&forceCertDelete, "force", "f", false, "Delete without confirmation")

	certCmd.AddCommand(certListCmd)
	certCmd.AddCommand(certRenewCmd)
	certCmd.AddCommand(certDeleteCmd)

	rootCmd.AddCommand(certCmd)
}

func runCert(cmd *cobra.Command, args []string) error {
	hostname, err := config.ValidateHostname(args[0])
	if err != nil {
		return err
	}

	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	pair, err := stack.Certs.Provision(hostname, forceCertRenew)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(pair)
	}

	if pair.Created {
		output.Success("Certificate for %s created (%s)", hostname, stack.Certs.Name())
	} else {
		output.Info("Certificate for %s already present, use --force to regenerate", hostname)
	}
	output.Field("Cert", pair.CertFile)
	output.Field("Key", pair.KeyFile)
	return nil
}

// certListItem is one row of cert list
type certListItem struct {
	Hostname string `json:"hostname"`
	CertFile string `json:"cert_file"`
	Expires  string `json:"expires,omitempty"`
}

func runCertList(cmd *cobra.Command, args []string) error {
	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	hostnames, err := stack.Certs.List()
	if err != nil {
		return err
	}

	items := make([]certListItem, 0, len(hostnames))
	for _, h := range hostnames {
		item := certListItem{Hostname: h, CertFile: stack.Certs.Paths(h).CertFile}
		if expiry, err := ssl.Expiry(stack.Exec, item.CertFile); err == nil {
			item.Expires = expiry.Format("2006-01-02")
		}
		items = append(items, item)
	}

	if jsonOutput {
		return output.JSON(items)
	}

	if len(items) == 0 {
		output.Info("No certificates provisioned")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		expires := item.Expires
		if expires == "" {
			expires = "unknown"
		}
		rows = append(rows, []string{item.Hostname, item.CertFile, expires})
	}
	output.Table([]string{"HOSTNAME", "CERT", "EXPIRES"}, rows)
	return nil
}

// renewer is a provisioner with a native bulk renewal
type renewer interface {
	RenewAll() error
}

// certRenewResult lists the hostnames whose pair was regenerated
type certRenewResult struct {
	CommandResult
	Renewed []string `json:"renewed,omitempty"`
}

func runCertRenew(cmd *cobra.Command, args []string) error {
	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	res := certRenewResult{CommandResult: newSuccessResult("", "cert_renewed")}

	if r, ok := stack.Certs.(renewer); ok {
		if err := r.RenewAll(); err != nil {
			var re *errors.RouteError
			if !errors.As(err, &re) {
				err = errors.Certificate("", err)
			}
			return err
		}
		return outputResult(res, "Certificates renewed by %s", stack.Certs.Name())
	}

	hostnames, err := stack.Certs.List()
	if err != nil {
		return err
	}
	for _, h := range hostnames {
		if _, err := stack.Certs.Provision(h, true); err != nil {
			return err
		}
		res.Renewed = append(res.Renewed, h)
	}
	return outputResult(res, "Renewed %d certificate(s)", len(res.Renewed))
}

func runCertDelete(cmd *cobra.Command, args []string) error {
	hostname, err := config.ValidateHostname(args[0])
	if err != nil {
		return err
	}

	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	ok, err := confirm(forceCertDelete || jsonOutput, "Delete the certificate of '%s'?", hostname)
	if err != nil {
		return err
	}
	if !ok {
		output.Info("Deletion cancelled")
		return nil
	}

	if err := stack.Certs.Delete(hostname); err != nil {
		return err
	}
	return outputResult(newSuccessResult(hostname, "cert_deleted"), "Certificate for %s deleted", hostname)
}
