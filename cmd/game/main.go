package main

import (
	"os"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/game"
	"github.com/Garsondee/Drone-Fleet/internal/logging"
	"github.com/Garsondee/Drone-Fleet/internal/recorder"
	"github.com/Garsondee/Drone-Fleet/internal/telemetry"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("drone-fleet", pflag.ExitOnError)
	configDir := flags.String("config-dir", ".", "directory holding "+config.FileName)
	flags.String("scenario", "", "scenario file (json, yaml or toml); empty runs the built-in demo")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.String("storage", "none", "recording backend: none, memory, sqlite, postgres")
	flags.Bool("plain", false, "draw the coverage map without distance shading")
	_ = flags.Parse(os.Args[1:])

	if err := config.Load(*configDir); err != nil {
		log.Fatal().Err(err).Msg("Config")
	}
	if err := config.Bind(flags, map[string]string{
		"scenario":  "scenario",
		"log-level": "logLevel",
		"storage":   "storage.type",
	}); err != nil {
		log.Fatal().Err(err).Msg("Flags")
	}

	opts := logging.Options{
		Level:   config.GetString("logLevel"),
		LogsDir: config.GetString("logsDir"),
		Name:    "drone-fleet",
		Start:   time.Now(),
	}
	if config.GetBool("graylog.enabled") {
		opts.GraylogAddress = config.GetString("graylog.address")
	}
	logger, closer, err := logging.Setup(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Logging")
	}
	defer closer.Close()

	rec, err := recorder.FromConfig(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Recording")
	}
	metrics, err := telemetry.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("Metrics")
	}

	viewer := config.Viewer()
	if plain, _ := flags.GetBool("plain"); plain {
		viewer.Shaded = false
	}
	g, err := game.New(game.Options{
		Scenario: config.GetString("scenario"),
		Sim:      config.Sim(),
		Viewer:   viewer,
		Recorder: rec,
		Metrics:  metrics,
		Log:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Starting viewer")
	}

	ebiten.SetWindowTitle(viewer.Title)
	ebiten.SetWindowSize(g.WindowSize())
	runErr := ebiten.RunGame(g)
	if err := g.Close(); err != nil {
		logger.Error().Err(err).Msg("Closing recording")
	}
	if runErr != nil {
		logger.Fatal().Err(runErr).Msg("Viewer stopped")
	}
}
