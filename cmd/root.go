package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jparise/timebot/internal/bot"
	"github.com/jparise/timebot/internal/config"
	"github.com/jparise/timebot/internal/metrics"
	"github.com/jparise/timebot/internal/slack"
	"github.com/jparise/timebot/internal/timeparse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	v = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "timebot",
	Short: "Reply to Slack messages with times in every reader's timezone",
	Long: `timebot watches the Slack channels it has been invited to. When a message
mentions a clock time it replies with the same time rendered in each
reader's own timezone.

Recognized times:
  1:05am, 1:05 PM   12-hour clock, minutes optional ("1 PM")
  13:05, 23:23      24-hour clock

A trailing timezone abbreviation selects the zone the time is written in:
  PST  America/Los_Angeles    GMT, UTC  UTC
  EST  America/New_York       CET       Europe/Rome
                              MSK       Europe/Moscow

Without an abbreviation the author's Slack timezone is used.

The bot token is read from TOKEN or TIMEBOT_TOKEN. Setting TIMEBOT_APP_TOKEN
(an xapp-* token) switches from the RTM API to Socket Mode. Every flag may
also be set as TIMEBOT_<FLAG>, e.g. TIMEBOT_HANDLE_TIMEOUT=5s.`,
	Version:      version,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return v.BindPFlags(cmd.Flags())
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().String(config.KeyToken, "",
		"Slack bot token (prefer the TOKEN environment variable)")
	rootCmd.Flags().String(config.KeyAppToken, "",
		"Slack app-level token; enables Socket Mode")
	rootCmd.Flags().String(config.KeyUsername, bot.DefaultUsername,
		"display name for replies")
	rootCmd.Flags().StringSlice(config.KeyChannels, nil,
		"only reply in channels whose ID matches one of these patterns (e.g. C01*)")
	rootCmd.Flags().IntP(config.KeyJobs, "j", 10,
		"maximum messages handled concurrently")
	rootCmd.Flags().Duration(config.KeyHandleTimeout, 10*time.Second,
		"deadline for handling a single message")
	rootCmd.Flags().Float64(config.KeyPostRate, 1,
		"maximum replies per second (0 disables throttling)")
	rootCmd.Flags().Int(config.KeyPostBurst, 5,
		"reply burst size")
	rootCmd.Flags().String(config.KeyMetricsAddr, "",
		"serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.Flags().Bool(config.KeyDebug, false,
		"log debug output, including skipped messages")

	rootCmd.AddCommand(resolveCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// newLogger returns a text logger writing to w.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Debug)

	client, err := slack.NewClient(slack.ClientOptions{
		BotToken:  cfg.BotToken,
		AppToken:  cfg.AppToken,
		PostRate:  cfg.PostRate,
		PostBurst: cfg.PostBurst,
		Debug:     cfg.Debug,
	})
	if err != nil {
		return err
	}

	identity, err := client.AuthTest(ctx)
	if err != nil {
		return err
	}
	logger.Info("authenticated", "team", identity.Team, "user", identity.UserID, "bot", identity.BotID)

	handler, err := bot.NewHandler(client, &timeparse.Resolver{}, bot.Options{
		Identity: identity,
		Username: cfg.Username,
		Channels: cfg.Channels,
	})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer shutdown()
	}

	listener := bot.NewListener(client, handler, bot.ListenerOptions{
		Jobs:          cfg.Jobs,
		HandleTimeout: cfg.HandleTimeout,
		Debug:         cfg.Debug,
		Logger:        logger,
		Metrics:       collector,
	})

	err = listener.Run(ctx)
	logger.Info("stopped")
	return err
}

// serveMetrics serves /metrics in the background and returns a function
// that shuts the server down.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}
}
