package cli

import (
	"strings"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/spf13/cobra"
)

var hostsAddress string

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Edit the hosts file directly",
	Long: `Map and unmap hostnames in the hosts file without touching the vhost file.

Examples:
  devhost hosts add dev.local
  devhost hosts add dev.local --address ::1
  devhost hosts remove dev.local
  devhost hosts lookup dev.local`,
}

var hostsAddCmd = &cobra.Command{
	Use:   "add <hostname>",
	Short: "Map a hostname to an address",
	Args:  cobra.ExactArgs(1),
	RunE:  runHostsAdd,
}

var hostsRemoveCmd = &cobra.Command{
	Use:     "remove <hostname>",
	Aliases: []string{"rm"},
	Short:   "Unmap a hostname",
	Long: `Remove a hostname from every mapping line, or only from lines for --address.
Lines left without hostnames are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runHostsRemove,
}

var hostsLookupCmd = &cobra.Command{
	Use:   "lookup <hostname>",
	Short: "Show the addresses a hostname is mapped to",
	Args:  cobra.ExactArgs(1),
	RunE:  runHostsLookup,
}

// hostsResult is the JSON form of a hosts command
type hostsResult struct {
	CommandResult
	Address   string   `json:"address,omitempty"`
	Changed   bool     `json:"changed"`
	Removed   int      `json:"removed,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// printWarnings shows store warnings in text mode; JSON carries them in
// the result.
func printWarnings(warnings []string) {
	if jsonOutput {
		return
	}
	for _, w := range warnings {
		output.Warn("%s", w)
	}
}

func init() {
	hostsAddCmd.Flags().StringVar(&hostsAddress, "address", "", "Address to map to (default from config)")
	hostsRemoveCmd.Flags().StringVar(&hostsAddress, "address", "", "Only remove mappings for this address")

	hostsCmd.AddCommand(hostsAddCmd)
	hostsCmd.AddCommand(hostsRemoveCmd)
	hostsCmd.AddCommand(hostsLookupCmd)

	rootCmd.AddCommand(hostsCmd)
}

func runHostsAdd(cmd *cobra.Command, args []string) error {
	hostname, err := config.ValidateHostname(args[0])
	if err != nil {
		return err
	}

	cfg, stack, err := loadStack()
	if err != nil {
		return err
	}

	address := hostsAddress
	if address == "" {
		address = cfg.Address
	}

	added, err := stack.Hosts.AddEntry(hostname, address)
	if err != nil {
		return err
	}
	stack.Hosts.Cleanup()

	res := hostsResult{
		CommandResult: newSuccessResult(hostname, "hosts_add"),
		Address:       address,
		Changed:       added,
		Warnings:      stack.Hosts.BackupWarnings(),
	}
	printWarnings(res.Warnings)
	if !added {
		return outputResult(res, "%s already mapped to %s", hostname, address)
	}
	return outputResult(res, "Mapped %s to %s", hostname, address)
}

func runHostsRemove(cmd *cobra.Command, args []string) error {
	hostname, err := config.ValidateHostname(args[0])
	if err != nil {
		return err
	}

	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	removed, err := stack.Hosts.DeleteEntry(hostname, hostsAddress)
	if err != nil {
		return err
	}
	stack.Hosts.Cleanup()

	res := hostsResult{
		CommandResult: newSuccessResult(hostname, "hosts_remove"),
		Address:       hostsAddress,
		Changed:       removed > 0,
		Removed:       removed,
		Warnings:      stack.Hosts.BackupWarnings(),
	}
	printWarnings(res.Warnings)
	if removed == 0 {
		if jsonOutput {
			return output.JSON(res)
		}
		output.Info("No mapping for %s", hostname)
		return nil
	}
	return outputResult(res, "Removed %d mapping(s) for %s", removed, hostname)
}

func runHostsLookup(cmd *cobra.Command, args []string) error {
	hostname, err := config.ValidateHostname(args[0])
	if err != nil {
		return err
	}

	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	addresses, err := stack.Hosts.Lookup(hostname)
	if err != nil {
		return err
	}

	if jsonOutput {
		if addresses == nil {
			addresses = []string{}
		}
		return output.JSON(hostsResult{
			CommandResult: newSuccessResult(hostname, "hosts_lookup"),
			Addresses:     addresses,
		})
	}

	if len(addresses) == 0 {
		output.Info("%s is not mapped in %s", hostname, stack.Hosts.Path())
		return nil
	}
	output.Field(hostname, strings.Join(addresses, ", "))
	return nil
}
