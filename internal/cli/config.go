package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceConfigInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the devhost configuration",
	Long: `Show the effective configuration or write it to the config file.

The effective configuration is built from platform defaults, the YAML file,
a .env file in the working directory and DEVHOST_* environment variables,
in that order.

Examples:
  devhost config show
  devhost config init
  devhost config init --config ./devhost.yaml --force`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceConfigInit, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to render config", err)
	}
	output.Print("%s", strings.TrimRight(string(data), "\n"))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := configPath
	if path == "" {
		if path, err = config.ConfigPath(); err != nil {
			return errors.Wrap(errors.ErrCodeConfig, "cannot locate config directory", err)
		}
	}

	if _, err := os.Stat(path); err == nil && !forceConfigInit {
		return errors.Wrap(errors.ErrCodeAlreadyExists, fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
	}

	if err := cfg.Save(path); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to save config", err)
	}

	res := newSuccessResult("", "config_init")
	res.Message = path
	return outputResult(res, "Config written to %s", path)
}
