package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/opsrx/frsweep/activedirectory"
	"github.com/opsrx/frsweep/config"
	"github.com/opsrx/frsweep/eventlog"
	"github.com/opsrx/frsweep/logging"
	"github.com/opsrx/frsweep/probe"
	"github.com/opsrx/frsweep/report"
	"github.com/opsrx/frsweep/sweep"
)

const probeTimeout = 3 * time.Second

var (
	flagStartDate    string
	flagEndDate      string
	flagComputerName string
	flagInputFile    string
	flagOU           string
	flagFolder       string
	flagEnvFile      string
	flagLogLevel     string
	flagLogFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "frsweep",
	Short: "Report Folder Redirection errors across servers",
	Long: `frsweep enumerates server computer accounts from Active Directory (or a
supplied host list), queries each reachable host's application event log for
Folder Redirection errors within a date window, and writes two plain-text
reports: the unique affected user names and the hosts that were offline or
failed the query.`,
	SilenceUsage: true,
	RunE:         run,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVar(&flagStartDate, "start-date", "", "lower bound of the event window (default: 30 days ago)")
	rootCmd.Flags().StringVar(&flagEndDate, "end-date", "", "upper bound of the event window (default: now)")
	rootCmd.Flags().StringVar(&flagComputerName, "computer-name", "", "substring filter on host names")
	rootCmd.Flags().StringVar(&flagInputFile, "input-file", "", "newline-delimited host list; skips the directory query")
	rootCmd.Flags().StringVar(&flagOU, "ou", "", "distinguished name restricting the directory query scope")
	rootCmd.Flags().StringVar(&flagFolder, "folder", ".", "output directory for both report files")
	rootCmd.Flags().StringVar(&flagEnvFile, "env-file", "settings.env", "env file with LDAP and WinRM credentials")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&flagLogFormat, "log-format", "text", "log format: text or json")
}

func run(cmd *cobra.Command, args []string) error {
	startedAt := time.Now()

	level, err := logging.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	log := logging.New(level, flagLogFormat).With("run_id", uuid.NewString())

	window := sweep.DefaultWindow(startedAt)
	if flagStartDate != "" {
		if window.Start, err = parseTimeFlag(flagStartDate); err != nil {
			return fmt.Errorf("invalid --start-date: %w", err)
		}
	}
	if flagEndDate != "" {
		if window.End, err = parseTimeFlag(flagEndDate); err != nil {
			return fmt.Errorf("invalid --end-date: %w", err)
		}
	}
	if err := window.Validate(); err != nil {
		return err
	}

	folder, err := checkFolder(flagFolder)
	if err != nil {
		return err
	}
	if flagInputFile != "" {
		if err := checkInputFile(flagInputFile); err != nil {
			return err
		}
	}

	cfg, err := config.LoadEnvConfig(flagEnvFile)
	if err != nil {
		return err
	}

	// The directory is contacted only when a branch needs it, or an OU
	// scope must be verified before resolution starts.
	var dir sweep.HostDirectory
	if flagInputFile == "" || flagOU != "" {
		ad := activedirectory.NewInstance(cfg.BaseDN, cfg.DcFQDN, cfg.PageSize)
		if err := ad.Connect(cfg.BindUser, cfg.BindPassword); err != nil {
			return err
		}
		defer ad.Close()

		if flagOU != "" {
			if err := ad.SubtreeExists(flagOU); err != nil {
				return err
			}
		}
		dir = ad
	}

	hosts, err := sweep.ResolveTargets(dir, flagComputerName, flagInputFile, flagOU)
	if err != nil {
		return err
	}
	log.Info("resolved sweep targets", "hosts", len(hosts),
		"window_start", window.Start.Format(time.DateTime),
		"window_end", window.End.Format(time.DateTime))

	// Report files are created only after resolution succeeded, so fatal
	// resolution paths leave nothing behind.
	writer, err := report.Open(folder, startedAt)
	if err != nil {
		return err
	}
	defer writer.Close()

	prober := probe.NewPinger(probeTimeout, cfg.WinRMPort)
	querier := eventlog.NewWinRMQuerier(cfg.WinRMUser, cfg.WinRMPassword, cfg.WinRMPort, cfg.WinRMUseTLS, cfg.WinRMTimeout)

	summary := sweep.Run(cmd.Context(), hosts, window, prober, querier, writer, log)

	if err := writer.WriteUsers(summary.UniqueUsers, summary.TotalErrorCount); err != nil {
		return err
	}

	log.Info("sweep complete",
		"hosts", summary.HostsProcessed,
		"offline", summary.HostsUnreachable,
		"query_failures", summary.QueryFailures,
		"unique_users", len(summary.UniqueUsers),
		"total_error_count", summary.TotalErrorCount)
	return nil
}

var timeFlagLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
}

func parseTimeFlag(value string) (time.Time, error) {
	for _, layout := range timeFlagLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want e.g. 2017-04-01 or 2017-04-01 15:04:05)", value)
}

func checkFolder(folder string) (string, error) {
	folder = strings.TrimRight(folder, `/\`)
	if folder == "" {
		folder = "."
	}
	info, err := os.Stat(folder)
	if err != nil {
		return "", fmt.Errorf("output folder %s does not exist", folder)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output folder %s is not a directory", folder)
	}
	return folder, nil
}

func checkInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file %s does not exist", path)
	}
	if info.IsDir() {
		return fmt.Errorf("input file %s is a directory", path)
	}
	return nil
}
