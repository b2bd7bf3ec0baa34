// Package main provides the focusbox terminal driver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/app/coordinator"
	"github.com/osa030/focusbox/internal/app/scenario"
	"github.com/osa030/focusbox/internal/infra/config"
	"github.com/osa030/focusbox/internal/infra/logger"
	"github.com/osa030/focusbox/internal/infra/simulated"
)

var (
	app        = kingpin.New("focusbox", "Audio focus arbitration between playback and speech recognition")
	configPath = app.Flag("config", "Path to config file (default: built-in defaults)").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: config log.output)").String()

	// script command
	scriptCmd   = app.Command("script", "Replay scenario files and exit")
	scriptFiles = scriptCmd.Arg("files", "Scenario YAML files").Required().ExistingFiles()

	// list-intents command
	listIntentsCmd = app.Command("list-intents", "List available intents and exit")
)

func init() {
	// run command (default) - no need to store the command
	app.Command("run", "Run the interactive driver (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-intents command
	if command == listIntentsCmd.FullCommand() {
		printIntents()
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger, command-line flags win over config
	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	if *configPath != "" {
		zlog.Info().Msgf("Loaded config from %s", *configPath)
	}

	switch command {
	case scriptCmd.FullCommand():
		if err := runScripts(cfg, *scriptFiles); err != nil {
			zlog.Error().Msgf("Script error: %v", err)
			closer.Close()
			os.Exit(1)
		}
	default:
		if err := run(cfg); err != nil {
			zlog.Error().Msgf("Driver error: %v", err)
			closer.Close()
			os.Exit(1)
		}
	}
}

// run executes the interactive driver. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	engines, err := simulated.NewFromConfig(cfg.Engine)
	if err != nil {
		return fmt.Errorf("failed to create engines: %w", err)
	}

	coord, err := coordinator.NewFromConfig(cfg, engines.Playback, engines.Recognition)
	if err != nil {
		return fmt.Errorf("failed to create coordinator: %w", err)
	}
	defer coord.Close()

	coord.Subscribe(newRenderer(os.Stdout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resolve permission in the background; intents see the checking state meanwhile
	go coord.Start(ctx)

	go func() {
		for e := range coord.PlaybackEvents() {
			zlog.Debug().Msg(formatPlaybackEvent(e))
		}
	}()

	executeHooks(cfg.Hooks.OnStarted, "on_started")

	d := newDriver(coord, engines.Recognition, os.Stdout)
	d.printHelp()

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- d.loop(ctx, os.Stdin)
	}()

	// Wait for shutdown signal or end of input
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-doneCh:
		if err != nil {
			return fmt.Errorf("input error: %w", err)
		}
		zlog.Info().Msg("Input closed, shutting down...")
	}

	coord.Close()
	executeHooks(cfg.Hooks.OnStopped, "on_stopped")
	return nil
}

// runScripts replays each scenario file on a fresh coordinator.
func runScripts(cfg *config.Config, files []string) error {
	ctx := context.Background()
	failed := 0

	for _, file := range files {
		sc, err := scenario.Load(file)
		if err != nil {
			return err
		}

		runner, err := scenario.NewSimulatedRunner(cfg, sc)
		if err != nil {
			return err
		}
		report, err := runner.Run(ctx)
		runner.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		fmt.Println(report.String())
		if !report.Passed() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(files))
	}
	return nil
}

// printIntents prints available intents.
func printIntents() {
	fmt.Println("Available Intents:")
	for _, i := range coordinator.AllIntents {
		fmt.Printf("  %-22s - %s\n", i.String(), i.Description())
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
