package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/config"
	"github.com/theirongolddev/goldplan/internal/daemon"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonRunFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Keep the price history fresh and serve it over HTTP/SSE",
	Long: "Refresh the XAU/EUR history on a schedule and publish it on a local\n" +
		"HTTP API with a server-sent event stream of price changes.",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running daemon and its last price",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Refresh interval (default from config)")
	pf.StringVar(&flagDaemonRunFile, "run-file", filepath.Join(config.CacheDir(), "goldpland.run"),
		"File recording the running daemon")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(config.CacheDir(), "goldpland.log"),
		"Log file for --detach")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Price events kept in memory (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run in the background")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: set on the background process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("--detach cannot be combined with --child")
	case flagDaemonDetach:
		return spawnDaemon()
	default:
		return serveDaemon()
	}
}

// spawnDaemon re-executes the binary in the background. The child claims the
// run file itself, so a refused start shows up in the log.
func spawnDaemon() error {
	rf := runFile(flagDaemonRunFile)
	if rec, err := rf.live(); err == nil {
		return fmt.Errorf("daemon already running as pid %d on %s", rec.PID, rec.Addr)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // user-configured path
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, detachedArgs(os.Args[1:])...) //nolint:gosec // re-exec of the current binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start background daemon: %w", err)
	}

	fmt.Printf("  Daemon started in the background (pid %d)\n", child.Process.Pid)
	fmt.Printf("  API:  http://%s/v1/status\n", daemonAddr())
	fmt.Printf("  Log:  %s\n", flagDaemonLogFile)
	fmt.Printf("  Stop: goldplan daemon stop --run-file %s\n", flagDaemonRunFile)
	return nil
}

func serveDaemon() error {
	addr := daemonAddr()
	rf := runFile(flagDaemonRunFile)
	pid := os.Getpid()
	rec := runRecord{PID: pid, Addr: addr, DataDir: cfg.DataDir(), StartedAt: time.Now()}
	if flagDaemonChild {
		rec.LogFile = flagDaemonLogFile
	}
	if err := rf.claim(rec); err != nil {
		return err
	}
	defer rf.release(pid)

	prices, closeFn, err := priceService()
	if err != nil {
		return err
	}
	defer closeFn()

	interval := flagDaemonInterval
	if interval == 0 {
		interval = cfg.DaemonInterval()
	}
	buffer := flagDaemonEventsBuffer
	if buffer == 0 {
		buffer = cfg.Daemon.EventsBuffer
	}

	svc := daemon.New(daemon.Config{
		Interval:       interval,
		Addr:           addr,
		EventsBuffer:   buffer,
		AllowedOrigins: cfg.Daemon.AllowedOrigins,
		Logger:         logger,
	}, prices)

	fmt.Printf("  goldplan daemon on http://%s, refreshing XAU/EUR every %s\n", addr, interval)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func daemonAddr() string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	rec, err := runFile(flagDaemonRunFile).live()
	if errors.Is(err, errNotRunning) {
		fmt.Println("  Daemon: not running")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Daemon: pid %d, up %s\n", rec.PID, time.Since(rec.StartedAt).Round(time.Second))
	fmt.Printf("  Address: http://%s\n", rec.Addr)
	fmt.Printf("  Data dir: %s\n", rec.DataDir)
	if rec.LogFile != "" {
		fmt.Printf("  Log: %s\n", rec.LogFile)
	}

	st, err := fetchDaemonStatus(rec.Addr)
	if err != nil {
		fmt.Printf("  API: %s\n", cli.Warn(err.Error()))
		return nil
	}

	if st.LastPollAt.IsZero() {
		fmt.Println("  Last refresh: pending")
	} else {
		fmt.Printf("  Last refresh: %s (%d so far)\n", st.LastPollAt.Local().Format(time.RFC3339), st.PollCount)
	}
	if st.Price.Points > 0 {
		fmt.Printf("  Price: %s (%s/oz) on %s\n", cli.FormatPricePerGram(st.Price.PricePerGram),
			cli.FormatEUR(st.Price.PricePerOunce), st.Price.Date)
		fmt.Printf("  History: %s points from %s\n", cli.FormatNumber(int64(st.Price.Points)), st.Price.Source)
		if st.Price.Stale {
			fmt.Printf("  Feed: %s\n", cli.Warn("stale, serving cached history"))
		}
	}
	fmt.Printf("  Events: %d (%d subscribers)\n", st.EventCount, st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed status: %w", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	rec, err := runFile(flagDaemonRunFile).stop(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("  Daemon stopped (pid %d)\n", rec.PID)
	return nil
}
