package cli

import (
	"path/filepath"
	"strings"

	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/spf13/cobra"
)

var forceRestore bool

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Inspect and restore file backups",
	Long: `Every write to the vhost file or the hosts file is preceded by a
<file>.bak.<timestamp> copy. Backups are removed after a fully successful
operation and kept when an operation stopped half way.

Examples:
  devhost backups list
  devhost backups restore /etc/hosts.bak.20240101120000
  devhost backups clean`,
}

var backupsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backups of the managed files",
	Args:    cobra.NoArgs,
	RunE:    runBackupsList,
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <backup>",
	Short: "Restore a managed file from one of its backups",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupsRestore,
}

var backupsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete every backup of the managed files",
	Args:  cobra.NoArgs,
	RunE:  runBackupsClean,
}

func init() {
	backupsRestoreCmd.Flags().BoolVarP(&forceRestore, "force", "f", false, "Restore without confirmation")

	backupsCmd.AddCommand(backupsListCmd)
	backupsCmd.AddCommand(backupsRestoreCmd)
	backupsCmd.AddCommand(backupsCleanCmd)

	rootCmd.AddCommand(backupsCmd)
}

// backupItem is one backup of a managed file
type backupItem struct {
	File   string `json:"file"`
	Backup string `json:"backup"`
}

func runBackupsList(cmd *cobra.Command, args []string) error {
	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	items := []backupItem{}
	for _, path := range managedFiles(stack) {
		backups, err := stack.Store.Backups(path)
		if err != nil {
			return err
		}
		for _, b := range backups {
			items = append(items, backupItem{File: path, Backup: b})
		}
	}

	if jsonOutput {
		return output.JSON(items)
	}

	if len(items) == 0 {
		output.Info("No backups")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.File, item.Backup})
	}
	output.Table([]string{"FILE", "BACKUP"}, rows)
	return nil
}

func runBackupsRestore(cmd *cobra.Command, args []string) error {
	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	backup := filepath.Clean(args[0])
	target := ""
	for _, path := range managedFiles(stack) {
		if isBackupOf(backup, path) {
			target = path
			break
		}
	}
	if target == "" {
		return errors.Validationf("%s is not a backup of %s", backup, strings.Join(managedFiles(stack), " or "))
	}

	ok, err := confirm(forceRestore || jsonOutput, "Replace %s with %s?", target, backup)
	if err != nil {
		return err
	}
	if !ok {
		output.Info("Restore cancelled")
		return nil
	}

	if err := stack.Store.Restore(target, backup); err != nil {
		return err
	}

	res := newSuccessResult("", "restore")
	res.Message = target
	return outputResult(res, "Restored %s from %s", target, backup)
}

// backupsCleanResult reports removed backups per file
type backupsCleanResult struct {
	CommandResult
	Removed map[string]int `json:"removed"`
}

func runBackupsClean(cmd *cobra.Command, args []string) error {
	_, stack, err := loadStack()
	if err != nil {
		return err
	}

	res := backupsCleanResult{
		CommandResult: newSuccessResult("", "backups_clean"),
		Removed: map[string]int{
			stack.VHosts.Path(): stack.VHosts.Cleanup(),
			stack.Hosts.Path():  stack.Hosts.Cleanup(),
		},
	}

	total := 0
	for _, n := range res.Removed {
		total += n
	}
	return outputResult(res, "Removed %d backup(s)", total)
}

// managedFiles returns the files devhost writes
func managedFiles(stack *Stack) []string {
	return []string{stack.VHosts.Path(), stack.Hosts.Path()}
}

func isBackupOf(backup, path string) bool {
	return filepath.Dir(backup) == filepath.Dir(path) &&
		strings.HasPrefix(filepath.Base(backup), filepath.Base(path)+".bak.")
}
