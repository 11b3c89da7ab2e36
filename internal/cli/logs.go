package cli

import (
	"fmt"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/output"
	"github.com/ksyq12/devhost/internal/vhostconf"
	"github.com/spf13/cobra"
)

var (
	logsAccess bool
	logsError  bool
	logsFollow bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:   "logs <hostname>",
	Short: "View logs for a route",
	Long: `View the access and error logs named by the route's CustomLog and ErrorLog
directives. Relative paths resolve against server_root.

By default, shows both access and error logs.
Use --access or --error to show only one log type.

Examples:
  devhost logs dev.local           # Show both logs
  devhost logs dev.local --access  # Show only access log
  devhost logs dev.local --error   # Show only error log
  devhost logs dev.local -f        # Follow logs in real-time
  devhost logs dev.local -n 50     # Show last 50 lines`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&logsAccess, "access", false, "Show access log only")
	logsCmd.Flags().BoolVar(&logsError, "error", false, "Show error log only")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 20, "Number of lines to show")

	rootCmd.AddCommand(logsCmd)
}

// logOutput is the JSON form of one log file
type logOutput struct {
	Kind  string   `json:"kind"`
	Path  string   `json:"path"`
	Lines []string `json:"lines"`
}

func runLogs(cmd *cobra.Command, args []string) error {
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
	if len(blocks) > 1 {
		output.Warn("%d blocks claim %s, showing logs of the first (line %d)", len(blocks), hostname, blocks[0].StartLine)
	}
	b := blocks[0]

	// Determine which logs to show
	showAccess := true
	showError := true
	if logsAccess && !logsError {
		showError = false
	} else if logsError && !logsAccess {
		showAccess = false
	}

	var logs []logOutput
	if showAccess {
		logs = appendLog(logs, stack, cfg.ServerRoot, "access", b.Value("CustomLog"))
	}
	if showError {
		logs = appendLog(logs, stack, cfg.ServerRoot, "error", b.Value("ErrorLog"))
	}

	if len(logs) == 0 {
		return &errors.RouteError{
			Code:     errors.ErrCodeNotFound,
			Message:  "no log files found",
			Hostname: hostname,
		}
	}

	if logsFollow {
		return followLogs(logs)
	}

	for i := range logs {
		lines, err := vhostconf.ReadLog(stack.Store, "", logs[i].Path, logsLines)
		if err != nil {
			return err
		}
		logs[i].Lines = lines
		if logs[i].Lines == nil {
			logs[i].Lines = []string{}
		}
	}

	if jsonOutput {
		return output.JSON(logs)
	}

	for _, l := range logs {
		output.Info("==> %s <==", l.Path)
		for _, line := range l.Lines {
			output.Print("%s", line)
		}
		output.Print("")
	}
	return nil
}

// appendLog adds the resolved log file when the block names one and it exists
func appendLog(logs []logOutput, stack *Stack, serverRoot, kind, directive string) []logOutput {
	if directive == "" {
		output.Warn("No %s log directive for this route", kind)
		return logs
	}
	p := vhostconf.ResolvePath(serverRoot, directive)
	if !stack.Store.Exists(p) {
		output.Warn("%s log not found: %s", kind, p)
		return logs
	}
	return append(logs, logOutput{Kind: kind, Path: p})
}

// followLogs hands the terminal to tail -f until interrupted
func followLogs(logs []logOutput) error {
	if _, err := deps.Runner.LookPath("tail"); err != nil {
		return errors.NotInstalled("tail")
	}

	tailArgs := []string{"-f", "-n", fmt.Sprintf("%d", logsLines)}
	for _, l := range logs {
		tailArgs = append(tailArgs, l.Path)
	}

	if len(logs) == 1 {
		output.Info("Showing logs from: %s", logs[0].Path)
	} else {
		output.Info("Showing logs from:")
		for _, l := range logs {
			output.Print("  - %s", l.Path)
		}
	}
	output.Print("")

	if err := deps.Runner.RunInteractive("tail", tailArgs...); err != nil {
		if interrupted(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeIO, "failed to read logs", err)
	}
	return nil
}

// interrupted reports whether a child exited on SIGINT (130) or SIGTERM (143)
func interrupted(err error) bool {
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return code == 130 || code == 143
	}
	return false
}
