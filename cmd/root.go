// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JairFC/douyinstream-pro/internal/config"
	"github.com/JairFC/douyinstream-pro/internal/cookie"
	"github.com/JairFC/douyinstream-pro/internal/extract"
	"github.com/JairFC/douyinstream-pro/internal/history"
	"github.com/JairFC/douyinstream-pro/internal/live"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagJSON    bool
	flagDebug   bool
	flagQuality string
	flagTimeout int
	flagCookies string
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "douyinstream",
	Short: "Extract playable live-stream URLs from Douyin rooms",
	Long: `Douyinstream resolves a Douyin live room page into playable stream URLs.
It fetches the room with browser-like headers and stored cookies, detects
anti-bot challenge pages, and runs an adaptive set of extraction strategies
that survives upstream format changes.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&flagQuality, "quality", "q", "", "Preferred quality: origin | uhd | hd | ld | sd | best")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "Page fetch timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&flagCookies, "cookies", "", "Raw cookie header (overrides the stored jar)")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagQuality != "" {
		cfg.Quality = flagQuality
	}
	if flagTimeout > 0 {
		cfg.FetchTimeout = flagTimeout
	}
	if flagDebug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !cfg.Debug})
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	return nil
}

// cookieJar loads the persisted jar, or builds a transient one from the
// --cookies flag.
func cookieJar() (*cookie.Jar, error) {
	path, err := config.CookiePath()
	if err != nil {
		return nil, err
	}
	jar := cookie.Load(path)
	if flagCookies != "" {
		if err := jar.Update(cookie.ParseHeader(flagCookies)); err != nil {
			logrus.WithError(err).Debug("persisting cookie flag failed")
		}
	}
	if !jar.HasValidCookies() {
		logrus.Debug("no valid session cookies, fetches may hit a challenge")
	}
	return jar, nil
}

// newChecker wires the full extraction pipeline from configuration.
// The returned closer releases the history store (nil-safe).
func newChecker() (*live.Checker, func(), error) {
	jar, err := cookieJar()
	if err != nil {
		return nil, nil, err
	}

	cachePath, err := config.CachePath()
	if err != nil {
		return nil, nil, err
	}
	dispatcher := extract.NewDispatcher(extract.NewFileStore(cachePath))

	var hist *history.Store
	closer := func() {}
	if cfg.History {
		path, err := config.HistoryPath()
		if err == nil {
			hist, err = history.Open(path)
			if err != nil {
				logrus.WithError(err).Debug("check history unavailable")
				hist = nil
			} else {
				closer = func() { hist.Close() }
			}
		}
	}

	checker := live.NewChecker(jar, dispatcher, live.Options{
		FetchTimeout:   secondsToDuration(cfg.FetchTimeout),
		CaptchaTimeout: secondsToDuration(cfg.CaptchaTimeout),
		History:        hist,
	})
	return checker, closer, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("douyinstream", Version)
	},
}
