package cli

import (
	"sort"
	"strings"

	"github.com/ksyq12/devhost/internal/hosts"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/ksyq12/devhost/internal/vhostconf"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all routes",
	Long: `List every <VirtualHost> block in the vhost file together with whether its
hostname resolves through the hosts file.

Examples:
  devhost list
  devhost ls
  devhost list --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type routeListItem struct {
	Hostname string   `json:"hostname"`
	Aliases  []string `json:"aliases,omitempty"`
	Address  string   `json:"listen"`
	Mode     string   `json:"mode"`
	Target   string   `json:"target,omitempty"`
	SSL      bool     `json:"ssl"`
	Mapped   bool     `json:"mapped"`
	Line     int      `json:"line"`
}

func runList(cmd *cobra.Command, args []string) error {
	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	blocks, err := stack.VHosts.List()
	if err != nil {
		return err
	}

	table, err := stack.Hosts.Load()
	if err != nil {
		output.Warn("Could not read hosts file: %v", err)
		table = hosts.Parse("")
	}

	items := make([]routeListItem, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, newRouteListItem(b, table))
	}

	// Sort by hostname
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Hostname < items[j].Hostname
	})

	if len(items) == 0 {
		if jsonOutput {
			return output.JSON([]routeListItem{})
		}
		output.Info("No routes configured in %s", stack.VHosts.Path())
		return nil
	}

	if jsonOutput {
		return output.JSON(items)
	}

	headers := []string{"HOSTNAME", "LISTEN", "MODE", "TARGET", "SSL", "MAPPED", "ALIASES"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Hostname,
			item.Address,
			item.Mode,
			item.Target,
			yesNo(item.SSL),
			yesNo(item.Mapped),
			strings.Join(item.Aliases, " "),
		})
	}

	output.Table(headers, rows)
	return nil
}

func newRouteListItem(b *vhostconf.Block, table *hosts.File) routeListItem {
	item := routeListItem{
		Hostname: b.ServerName,
		Aliases:  b.ServerAliases,
		Address:  b.Address,
		Mode:     "docroot",
		Target:   b.Value("DocumentRoot"),
		SSL:      b.SSL(),
		Line:     b.StartLine,
	}
	if members := b.Values("BalancerMember"); len(members) > 0 {
		item.Mode = "balancer"
		item.Target = strings.Join(members, ",")
	} else if item.Target == "" {
		if proxy := b.Directive("ProxyPass"); proxy != nil && len(proxy.Args) > 1 {
			item.Mode = "proxy"
			item.Target = proxy.Args[1]
		}
	}
	if item.Hostname != "" && table != nil {
		item.Mapped = len(table.Lookup(item.Hostname)) > 0
	}
	return item
}
