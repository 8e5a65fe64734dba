package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/paaavkata/track-metadata-enrichment/internal/config"
	"github.com/paaavkata/track-metadata-enrichment/internal/enrich"
	"github.com/paaavkata/track-metadata-enrichment/internal/logger"
	"github.com/paaavkata/track-metadata-enrichment/internal/metadata"
	"github.com/paaavkata/track-metadata-enrichment/internal/progress"
	"github.com/paaavkata/track-metadata-enrichment/internal/ratelimit"
	"github.com/paaavkata/track-metadata-enrichment/internal/shutdown"
	"github.com/paaavkata/track-metadata-enrichment/internal/source"
	"github.com/paaavkata/track-metadata-enrichment/internal/source/discogs"
	"github.com/paaavkata/track-metadata-enrichment/internal/source/lastfm"
	"github.com/paaavkata/track-metadata-enrichment/internal/source/musicbrainz"
)

const version = "1.0.0"

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "enrich [directory]",
		Short: "Fill in missing genre, year and mood tags for a music library",
		Long: `enrich scans a directory of audio files, finds tracks with missing
genre, year or mood tags, and fills them in from MusicBrainz, Last.fm
and Discogs. Files that already carry all three fields are left
untouched, so repeated runs are safe.`,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return fail(err)
			}
			if len(args) > 0 {
				cfg.Directory = args[0]
			}
			if cfg.Directory == "" {
				return fail(fmt.Errorf("a directory to scan is required (argument or 'directory' in the config file)"))
			}
			if err := cfg.Validate(); err != nil {
				return fail(fmt.Errorf("configuration error: %w", err))
			}
			return runEnrich(cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	addConfigFlags(cmd)

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("enrich " + version)
		},
	})

	return cmd
}

// fail reports a configuration error before any logger exists. Run
// errors are reported by the levelled logger instead.
func fail(err error) error {
	fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
	return err
}

// addConfigFlags registers the flags that override config file values.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("workers", "w", 0, "Number of concurrent workers (1-16)")
	cmd.Flags().String("ext", "", "Audio file extension to scan for")
	cmd.Flags().String("api-keys", "", "Path to the API credentials file")
	cmd.Flags().String("log-file", "", "Path to the persistent log file")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose console output")
	cmd.Flags().BoolP("dry-run", "n", false, "Show what would change without writing tags")
}

// loadConfig loads the config file and applies any flags the user set
// on top. Priority: flags > config file > defaults.
func loadConfig(cmd *cobra.Command, configPath string) (config.Config, error) {
	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("ext") {
		cfg.FileFormat, _ = flags.GetString("ext")
	}
	if flags.Changed("api-keys") {
		cfg.APIKeysPath, _ = flags.GetString("api-keys")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("dry-run") {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}

	return cfg, nil
}

func runEnrich(cfg config.Config) error {
	log := logger.New(cfg.Verbose)
	defer log.Close()

	if cfg.LogFile != "" {
		if err := log.SetFileLog(config.ExpandHome(cfg.LogFile)); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to set up file logging: %v\n", err)
		}
	}

	sh := shutdown.New()
	sh.OnSignal = func() {
		log.Warn("Interrupt received, finishing in-flight files...")
	}
	sh.Listen()

	creds := loadCredentials(cfg, log)
	runner := newRunner(cfg, creds, log, cfg.DryRun)

	var bar *progress.Bar
	hooks := enrich.Hooks{
		OnFilesFound: func(total int) {
			if total > 0 && !cfg.Verbose && !cfg.DryRun {
				bar = progress.New(total)
				log.SetProgressBar(true)
			}
		},
		OnOutcome: func(o enrich.Outcome) {
			if bar != nil {
				bar.Increment()
			}
		},
	}

	summary, err := runner.Run(sh.Context(), config.ExpandHome(cfg.Directory), hooks)

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}

	if err != nil {
		log.Error("%v", err)
		// An interrupted run still reports what it got through; a run
		// that never started has nothing to summarize.
		if summary.Total > 0 {
			printSummary(summary, cfg.DryRun)
		}
		return err
	}

	printSummary(summary, cfg.DryRun)
	return nil
}

// loadCredentials reads the API keys file. A missing file is not
// fatal: MusicBrainz needs no key, so the tool still works.
func loadCredentials(cfg config.Config, log *logger.Logger) config.Credentials {
	creds, err := config.LoadCredentials(config.ExpandHome(cfg.APIKeysPath))
	if err != nil {
		log.Warn("Could not load API keys from %s: %v", cfg.APIKeysPath, err)
	}
	if !creds.HasLastFM() {
		log.Warn("No Last.fm API key configured, skipping Last.fm lookups")
	}
	if !creds.HasDiscogs() {
		log.Warn("No Discogs token configured, skipping Discogs lookups")
	}
	log.Info("Available metadata sources: %v", creds.AvailableAPIs())
	return creds
}

// newRunner wires the full lookup chain. Source order is load-bearing:
// MusicBrainz, then Last.fm, then Discogs.
func newRunner(cfg config.Config, creds config.Credentials, log *logger.Logger, dryRun bool) *enrich.Runner {
	limiter := ratelimit.NewRegistry(time.Duration(cfg.MinInterval))
	timeout := time.Duration(cfg.RequestTimeout)
	sources := []source.Source{
		musicbrainz.New(cfg.MusicBrainzURL, timeout, limiter),
		lastfm.New(cfg.LastFMURL, creds.LastFMAPIKey, timeout, limiter),
		discogs.New(cfg.DiscogsURL, creds.DiscogsToken, timeout, limiter),
	}

	return &enrich.Runner{
		Enricher: &enrich.Enricher{
			Tags:    metadata.NewTagFile(),
			Sources: sources,
			Log:     log,
			DryRun:  dryRun,
		},
		Log:     log,
		Workers: cfg.Workers,
		Ext:     cfg.FileFormat,
	}
}

func printSummary(s enrich.Summary, dryRun bool) {
	bold := color.New(color.Bold)
	if dryRun {
		bold.Println("=== Summary (dry run) ===")
	} else {
		bold.Println("=== Summary ===")
	}

	fmt.Printf("Processed:        %d files\n", s.Total)
	fmt.Printf("Already complete: %d\n", s.Complete)
	color.Green("Updated:          %d", s.Updated)
	color.Yellow("Missing info:     %d", s.MissingInfo)
	color.Yellow("Not found:        %d", s.NotFound)
	if s.WriteFailed > 0 {
		color.Red("Write failed:     %d", s.WriteFailed)
	}
	color.Red("Errors:           %d", s.Errors)
}
