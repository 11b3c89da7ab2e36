package cli

import (
	"path/filepath"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/ksyq12/devhost/internal/reconcile"
	"github.com/spf13/cobra"
)

var (
	routePort    int
	routeRoot    string
	withSSL      bool
	forceCert    bool
	withBalancer bool
	routeMembers []string
	routeAliases []string
	routeAddress string
	dryRun       bool
	checkConfig  bool
	reloadServer bool
)

var addCmd = &cobra.Command{
	Use:   "add <hostname>",
	Short: "Add a route",
	Long: `Add a route: one <VirtualHost> block in the vhost file and a hosts entry
for the hostname and every alias.

Without --root the document root is <www_dir>/<hostname>, created when
create_root is enabled. With --balancer the block proxies to the given
members instead of serving files.

Examples:
  devhost add dev.local
  devhost add dev.local --root /srv/dev --alias www.dev.local
  devhost add secure.local --ssl
  devhost add api.local --balancer --member 127.0.0.1:9001 --member 127.0.0.1:9002
  devhost add dev.local --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().IntVarP(&routePort, "port", "p", 0, "Listen port (default from config, 443 with --ssl)")
	addCmd.Flags().StringVarP(&routeRoot, "root", "r", "", "Document root path")
	addCmd.Flags().BoolVar(&withSSL, "ssl", false, "Serve over TLS with a provisioned certificate")
	addCmd.Flags().BoolVar(&forceCert, "force-cert", false, "Regenerate the certificate even if one exists")
	addCmd.Flags().BoolVar(&withBalancer, "balancer", false, "Proxy to a pool of backends instead of a document root")
	addCmd.Flags().StringArrayVarP(&routeMembers, "member", "m", nil, "Balancer member address (repeatable)")
	addCmd.Flags().StringArrayVarP(&routeAliases, "alias", "a", nil, "Additional ServerAlias hostname (repeatable)")
	addCmd.Flags().StringVar(&routeAddress, "address", "", "Hosts file address (default from config)")
	addCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the block that would be added without writing")
	addCmd.Flags().BoolVar(&checkConfig, "check", false, "Run the apache config test afterwards")
	addCmd.Flags().BoolVar(&reloadServer, "reload", false, "Test and gracefully reload apache afterwards")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	route, err := buildRoute(cfg, args[0])
	if err != nil {
		return err
	}

	stack, err := deps.StackFactory.Create(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to initialize", err)
	}

	// Dry-run mode: show what would be done without making changes
	if dryRun {
		return outputAddDryRun(cfg, stack, route)
	}

	res := stack.Reconciler.AddRoute(route, reconcile.AddOptions{ForceCert: forceCert})
	if err := reportResult(res, "Route %s added", route.Hostname); err != nil {
		return err
	}

	if !jsonOutput && res.RootCreated != "" {
		output.Info("Created document root %s", res.RootCreated)
	}

	return testAndReload(stack.Driver, checkConfig, reloadServer)
}

// buildRoute fills flag defaults from cfg and validates the result
func buildRoute(cfg *config.Config, hostname string) (*config.Route, error) {
	host, err := config.ValidateHostname(hostname)
	if err != nil {
		return nil, err
	}

	port := routePort
	if port == 0 {
		port = cfg.Port
		if withSSL && port == config.DefaultPort {
			port = 443
		}
	}

	address := routeAddress
	if address == "" {
		address = cfg.Address
	}

	root := routeRoot
	if !withBalancer {
		if root == "" {
			if cfg.WWWDir == "" {
				return nil, errors.Validation("--root is required when www_dir is not configured")
			}
			root = cfg.DefaultRoot(host)
		}
		if err := validateRoot(root); err != nil {
			return nil, err
		}
	}

	return config.NewRoute(config.RouteOptions{
		Hostname: host,
		Port:     port,
		Target:   root,
		SSL:      withSSL,
		Balancer: withBalancer,
		Members:  routeMembers,
		Aliases:  routeAliases,
		Address:  address,
	})
}

// validateRoot checks if root path is valid
func validateRoot(root string) error {
	if !filepath.IsAbs(root) {
		return errors.Validationf("root path must be absolute: %s", root)
	}
	return nil
}

// addDryRun describes what add would do
type addDryRun struct {
	DryRun    bool          `json:"dry_run"`
	Route     *config.Route `json:"route"`
	VHostConf string        `json:"vhost_conf"`
	HostsFile string        `json:"hosts_file"`
	Root      string        `json:"create_root,omitempty"`
	Hosts     []string      `json:"hosts_entries"`
	Block     string        `json:"block"`
}

// outputAddDryRun outputs what add command would do in dry-run mode
func outputAddDryRun(cfg *config.Config, stack *Stack, route *config.Route) error {
	block, err := stack.Reconciler.Preview(route)
	if err != nil {
		return err
	}

	result := addDryRun{
		DryRun:    true,
		Route:     route,
		VHostConf: cfg.VHostConf,
		HostsFile: cfg.HostsFile,
		Block:     block,
	}
	if cfg.CreateRoot && !route.Balancer {
		result.Root = route.Target
	}
	for _, name := range route.Names() {
		result.Hosts = append(result.Hosts, route.Address+"\t"+name)
	}

	if jsonOutput {
		return output.JSON(result)
	}

	output.Info("Dry run: no files will be changed")
	if result.Root != "" {
		output.Field("Create", result.Root)
	}
	output.Field("Append to", cfg.VHostConf)
	output.Block(block)
	output.Field("Map in", cfg.HostsFile)
	for _, h := range result.Hosts {
		output.Block(h)
	}
	return nil
}
