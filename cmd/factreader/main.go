package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dooshek/factreader/internal/audio"
	"github.com/dooshek/factreader/internal/clipboard"
	"github.com/dooshek/factreader/internal/config"
	factdbus "github.com/dooshek/factreader/internal/dbus"
	"github.com/dooshek/factreader/internal/facts"
	"github.com/dooshek/factreader/internal/fileops"
	"github.com/dooshek/factreader/internal/keyboard"
	"github.com/dooshek/factreader/internal/logger"
	"github.com/dooshek/factreader/internal/notification"
	"github.com/dooshek/factreader/internal/reader"
	"github.com/dooshek/factreader/internal/stats"
	"github.com/dooshek/factreader/internal/tts"
	"github.com/dooshek/factreader/internal/types"
	"github.com/fatih/color"
)

func init() {
	// Set custom usage message to show -- prefix
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(out, "  --%s", f.Name)
			name, usage := flag.UnquoteUsage(f)
			if len(name) > 0 {
				fmt.Fprintf(out, " %s", name)
			}
			fmt.Fprintf(out, "\n    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
				fmt.Fprintf(out, " (default %q)", f.DefValue)
			}
			fmt.Fprintf(out, "\n")
		})
	}
}

type cliFlags struct {
	file      string
	count     int
	provider  string
	input     string
	language  string
	accent    string
	slow      bool
	keepAudio bool
}

func main() {
	var opts cliFlags
	flag.StringVar(&opts.file, "file", "", "Path of the fact file (one fact per line)")
	flag.IntVar(&opts.count, "count", 0, "Number of facts to read; asks with a key press when not set")
	flag.StringVar(&opts.provider, "provider", "", "Speech provider (google|openai|realtime|console)")
	flag.StringVar(&opts.input, "input", "", "Input backend for the count (stdin|evdev|auto)")
	flag.StringVar(&opts.language, "language", "", "Spoken language, e.g. en or pt-BR")
	flag.StringVar(&opts.accent, "accent", "", "Google top level domain selecting the accent, e.g. ca or co.uk")
	flag.BoolVar(&opts.slow, "slow", false, "Speak slowly")
	flag.BoolVar(&opts.keepAudio, "keep-audio", false, "Keep synthesised audio files after playing")
	runWizard := flag.Bool("wizard", false, "Run the configuration wizard")
	showStats := flag.Bool("stats", false, "Show reading statistics and exit")
	daemon := flag.Bool("daemon", false, "Run as a D-Bus service and read facts on request")
	logLevel := flag.String("log-level", "info", "Set log level (debug|info|warn|error)")
	logFilename := flag.String("log-filename", "", "Log to file instead of stderr")
	flag.Parse()

	os.Exit(run(opts, *runWizard, *showStats, *daemon, *logLevel, *logFilename))
}

func run(opts cliFlags, runWizard, showStats, daemon bool, logLevel, logFilename string) int {
	// Set up logging level and output
	logger.SetLevel(logLevel)
	if logFilename != "" {
		if err := logger.SetOutputFile(logFilename); err != nil {
			fmt.Printf("Error setting log file: %v\n", err)
			return 1
		}
		defer logger.CloseLogFile()
	}

	if opts.count < 0 {
		logger.Error("Invalid --count", fmt.Errorf("count must be positive, got %d", opts.count))
		return 1
	}

	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		logger.Error("Failed to initialize file operations", err)
		return 1
	}
	if err := fileOps.EnsureDirectories(); err != nil {
		logger.Error("Failed to create necessary directories", err)
		return 1
	}

	if runWizard {
		if err := config.RunWizard(); err != nil {
			logger.Error("Error running wizard", err)
			return 1
		}
		return 0
	}

	statsManager := stats.NewStatsManager(fileOps.GetStatsPath())
	if showStats {
		printStats(statsManager.GetStats())
		return 0
	}

	cfg, err := config.Load(fileOps)
	if err != nil {
		logger.Error("Error loading config", err)
		return 1
	}
	if cfg == nil {
		logger.Debug("No configuration found, using defaults. Run `factreader --wizard` to create one")
		cfg = &types.Config{}
	}
	applyFlags(cfg, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if daemon {
		return runDaemon(ctx, cfg, fileOps, statsManager)
	}

	session, err := buildSession(cfg, opts.count, fileOps, statsManager)
	if err != nil {
		logger.Error("Failed to start", err)
		return 1
	}

	spoken, err := session.Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, keyboard.ErrSelectionCancelled):
			logger.Info("Goodbye")
		case errors.Is(err, context.Canceled):
			logger.Info("Interrupted")
		default:
			logger.Error("Fact reading failed", err)
		}
		return 1
	}

	logger.Infof("Read %d fact(s)", len(spoken))
	return 0
}

func runDaemon(ctx context.Context, cfg *types.Config, fileOps fileops.FileOps, statsManager *stats.StatsManager) int {
	server := factdbus.NewServer(ctx, func(count int) (factdbus.Runner, error) {
		return buildSession(cfg, count, fileOps, statsManager)
	}, statsManager.GetStatsJSON)

	if err := server.Start(); err != nil {
		logger.Error("Failed to start D-Bus service", err)
		return 1
	}

	server.Wait()
	logger.Info("Shutting down...")
	server.Stop()
	return 0
}

// applyFlags overrides configuration values with the ones given on the command line
func applyFlags(cfg *types.Config, opts cliFlags) {
	if opts.file != "" {
		cfg.Facts.Path = opts.file
	}
	if opts.provider != "" {
		cfg.Speech.Provider = opts.provider
	}
	if opts.input != "" {
		cfg.Input.Backend = opts.input
	}
	if opts.language != "" {
		cfg.Speech.Language = opts.language
	}
	if opts.accent != "" {
		cfg.Speech.AccentDomain = opts.accent
	}
	if opts.slow {
		cfg.Speech.Slow = true
	}
	if opts.keepAudio {
		deleteAfterPlay := false
		cfg.Speech.DeleteAfterPlay = &deleteAfterPlay
	}
}

func buildSession(cfg *types.Config, count int, fileOps fileops.FileOps, statsManager *stats.StatsManager) (*reader.Session, error) {
	speechCfg := cfg.GetSpeechConfig()
	factsCfg := cfg.GetFactsConfig()

	player, err := audio.NewPlayer(speechCfg.Player)
	if err != nil {
		return nil, err
	}

	manager, err := tts.NewManager(speechCfg, cfg.Keys.OpenAIKey, player, fileOps.GetAudioDir())
	if err != nil {
		return nil, err
	}
	logger.Debugf("Using %s in %s", manager.GetProviderName(), speechCfg.Language)

	var prompt keyboard.CountPrompt
	if count == 0 {
		prompt, err = keyboard.NewPrompt(cfg.GetInputConfig().Backend)
		if err != nil {
			return nil, err
		}
	}

	return reader.New(reader.Deps{
		Speaker:   manager,
		Prompt:    prompt,
		Sampler:   facts.NewSampler(nil),
		Notifier:  notification.New(player, speechCfg.FallbackSound, fileOps.GetAudioDir()),
		Stats:     statsManager,
		CopyFacts: clipboard.CopyFacts,
	}, reader.Options{
		Path:            factsCfg.Path,
		Count:           count,
		CopyToClipboard: factsCfg.CopyToClipboard,
		Notify:          cfg.Notify,
		Phrases:         cfg.GetPhrases(),
	}), nil
}

func printStats(s stats.Stats) {
	title := color.New(color.FgCyan, color.Bold)
	value := color.New(color.FgGreen)

	title.Println("📊 factreader statistics")
	fmt.Printf("  Sessions:     %s\n", value.Sprint(s.Sessions))
	fmt.Printf("  Facts spoken: %s\n", value.Sprint(s.FactsSpoken))

	if len(s.ByProvider) == 0 {
		return
	}

	providers := make([]string, 0, len(s.ByProvider))
	for name := range s.ByProvider {
		providers = append(providers, name)
	}
	sort.Strings(providers)

	title.Println("\n  By provider:")
	for _, name := range providers {
		p := s.ByProvider[name]
		fmt.Printf("    %-22s %s sessions, %s facts\n", name, value.Sprint(p.Sessions), value.Sprint(p.FactsSpoken))
	}
}
