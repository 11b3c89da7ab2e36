package cli

import (
	"github.com/ksyq12/devhost/internal/output"
	"github.com/spf13/cobra"
)

var (
	forceRemove bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <hostname>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a route",
	Long: `Remove every <VirtualHost> block claiming the hostname, as ServerName or
ServerAlias, and unmap the hostname and every name those blocks served from
the hosts file.

A hostname no block claims is not an error; stale hosts entries are still
removed.

Examples:
  devhost remove dev.local
  devhost rm dev.local --force --reload`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "Force removal without confirmation")
	removeCmd.Flags().BoolVar(&checkConfig, "check", false, "Run the apache config test afterwards")
	removeCmd.Flags().BoolVar(&reloadServer, "reload", false, "Test and gracefully reload apache afterwards")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	// Confirm removal if not forced
	ok, err := confirm(forceRemove || jsonOutput, "Are you sure you want to remove route '%s'?", args[0])
	if err != nil {
		return err
	}
	if !ok {
		output.Info("Removal cancelled")
		return nil
	}

	res := stack.Reconciler.RemoveRoute(args[0])
	if err := reportResult(res, "Route %s removed", res.Hostname); err != nil {
		return err
	}

	if len(res.Removed) == 0 {
		return nil
	}
	return testAndReload(stack.Driver, checkConfig, reloadServer)
}
