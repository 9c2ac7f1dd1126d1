package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RustingSword/time-tracker/internal/activitylog"
	"github.com/RustingSword/time-tracker/internal/config"
	"github.com/RustingSword/time-tracker/internal/daemon"
	"github.com/RustingSword/time-tracker/internal/database"
	"github.com/RustingSword/time-tracker/internal/logging"
	"github.com/RustingSword/time-tracker/internal/reporter"
	"github.com/RustingSword/time-tracker/internal/tracker"
	"github.com/RustingSword/time-tracker/internal/web"
	"github.com/RustingSword/time-tracker/pkg/detector"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "timetracker",
	Short: "timetracker - log focused windows and summarize where the day went",
	Long: `timetracker polls the focused window, appends every change to a CSV log
and turns a day of records into per-category summaries and charts.

Environment variables (TIMETRACKER_*) override the config file; flags override both.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
}

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track the focused window until interrupted",
	RunE:  runTrack,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracker status and the current focused window",
	RunE:  runStatus,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running tracker",
	RunE:  runStop,
}

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List errors recorded by the tracker",
	RunE:  runErrors,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve summaries over a local JSON API",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "timetracker version %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

var (
	trackInterval int
	trackLogFile  string

	errorsLimit     int
	errorsClear     bool
	errorsPruneDays int

	servePort int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file")

	trackCmd.Flags().IntVarP(&trackInterval, "interval", "i", 0, "logging interval in seconds (default 10)")
	trackCmd.Flags().StringVarP(&trackLogFile, "log-file", "l", "", "path to log file (default activity_log.csv)")

	errorsCmd.Flags().IntVarP(&errorsLimit, "limit", "n", 20, "number of errors to show")
	errorsCmd.Flags().BoolVar(&errorsClear, "clear", false, "delete all recorded errors")
	errorsCmd.Flags().IntVar(&errorsPruneDays, "prune", 0, "delete errors older than this many days")

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default 8765)")

	rootCmd.AddCommand(trackCmd, newAnalyzeCmd(), statusCmd, stopCmd, errorsCmd, serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	return nil
}

// openStore connects to the error store; callers treat a failure as
// "no store" rather than aborting.
func openStore() (*database.DB, *database.Repository, error) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, database.NewRepository(db), nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	log := logging.For("main")

	if cmd.Flags().Changed("interval") {
		if err := cfg.SetPollInterval(time.Duration(trackInterval) * time.Second); err != nil {
			return err
		}
	}
	if trackLogFile != "" {
		cfg.Files.LogFile = trackLogFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	if err := dm.Acquire(); err != nil {
		return err
	}
	defer dm.RemovePID()

	det, err := detector.New()
	if err != nil {
		return fmt.Errorf("failed to initialize window detector: %w", err)
	}
	defer det.Close()
	log.Info().Str("display_server", det.GetDisplayServer()).Msg("Window detector initialized")

	var recorder tracker.ErrorRecorder
	db, repo, err := openStore()
	if err != nil {
		log.Warn().Err(err).Msg("Error store unavailable, errors will only be logged")
	} else {
		defer db.Close()
		recorder = repo
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := tracker.NewService(cfg, det, activitylog.New(cfg.Files.LogFile), recorder)
	if err := svc.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nStopping activity tracker...")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check tracker status: %w", err)
	}

	if running {
		fmt.Fprintf(out, "Status: Running (PID: %d)\n", pid)
		fmt.Fprintf(out, "Poll Interval: %v\n", cfg.Tracker.PollInterval)
	} else {
		fmt.Fprintln(out, "Status: Not running")
	}
	fmt.Fprintf(out, "Log File: %s\n", cfg.Files.LogFile)

	if records, err := activitylog.New(cfg.Files.LogFile).ReadAll(); err == nil && len(records) > 0 {
		last := records[len(records)-1]
		fmt.Fprintf(out, "Last Record: %s %q at %s\n",
			last.AppName, last.Title, time.Unix(last.Timestamp, 0).Format(time.DateTime))
	}

	det, err := detector.New()
	if err != nil {
		fmt.Fprintf(out, "\nCould not detect current window: %v\n", err)
		return nil
	}
	defer det.Close()

	if info, err := det.GetFocusedWindow(); err == nil && info != nil {
		fmt.Fprintf(out, "\nCurrent Window:\n")
		fmt.Fprintf(out, "  App: %s\n", info.AppName)
		fmt.Fprintf(out, "  Title: %s\n", info.WindowTitle)
		fmt.Fprintf(out, "  Display: %s\n", info.DisplayServer)
	}
	if pos, err := det.GetMousePosition(); err == nil {
		fmt.Fprintf(out, "  Mouse: %d,%d\n", pos.X, pos.Y)
	}
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	dm := daemon.New(cfg.Daemon.PIDFile)

	pid, err := dm.Stop()
	if err == daemon.ErrNotRunning {
		fmt.Fprintln(cmd.OutOrStdout(), "Tracker is not running")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sent stop signal to tracker (PID: %d)\n", pid)
	return nil
}

func runErrors(cmd *cobra.Command, args []string) error {
	db, repo, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open error store: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	switch {
	case errorsClear:
		if err := repo.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Error log cleared")
		return nil
	case errorsPruneDays > 0:
		n, err := repo.DeleteErrorsBefore(time.Now().AddDate(0, 0, -errorsPruneDays))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d errors older than %d days\n", n, errorsPruneDays)
		return nil
	}

	logs, err := repo.RecentErrors(errorsLimit)
	if err != nil {
		return err
	}
	fmt.Fprint(out, reporter.FormatErrors(logs))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.For("main")

	if cmd.Flags().Changed("port") {
		if err := cfg.SetWebPort(servePort); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var repo *database.Repository
	db, r, err := openStore()
	if err != nil {
		log.Warn().Err(err).Msg("Error store unavailable, /api/errors disabled")
	} else {
		defer db.Close()
		repo = r
	}

	server := web.NewServer(cfg, repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	fmt.Fprintf(cmd.OutOrStdout(), "Web API available at: http://%s\n", server.GetAddress())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
