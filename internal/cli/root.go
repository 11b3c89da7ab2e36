package cli

import (
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/logger"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	configPath string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "devhost",
	Short: "Local development route manager",
	Long: `devhost wires local development hostnames into Apache and the hosts file.

Each route is one <VirtualHost> block in the devhost vhost file plus hosts
entries for its hostname and aliases. Both files are backed up before every
write and replaced atomically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit status
func Execute() int {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	err := rootCmd.Execute()
	_ = logger.Close()
	if err == nil {
		return 0
	}
	if !isReported(err) {
		output.Error("%v", err)
	}
	return exitCode(err)
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/devhost/config.yaml)")
}

// exitError carries an explicit exit status, and marks errors whose result
// was already printed.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return errors.ExitCode(err)
}

func isReported(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.reported
}
