package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/normanking/lumenstack/internal/audio"
	"github.com/normanking/lumenstack/internal/bus"
	"github.com/normanking/lumenstack/internal/config"
	"github.com/normanking/lumenstack/internal/engine"
	"github.com/normanking/lumenstack/internal/geometry"
	"github.com/normanking/lumenstack/internal/logging"
	"github.com/normanking/lumenstack/internal/stage"
	"github.com/normanking/lumenstack/internal/status"
	"github.com/normanking/lumenstack/internal/tracker"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	audioMode := flag.String("audio", "", "initial audio mode: off, mic, theremin (overrides config)")
	noAudioDevice := flag.Bool("no-audio-device", false, "never open the output device (theremin runs silent)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *audioMode != "" {
		cfg.Audio.Mode = *audioMode
	}

	logger, err := logging.New(&logging.Config{
		Level:   logging.LogLevel(cfg.Logging.Level),
		Console: cfg.Logging.Console,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	zlog := logger.Component("main")

	zlog.Info().Str("addr", cfg.Server.Addr).Str("log", logger.GetLogPath()).
		Msg("LumenStack core starting")

	eventBus := bus.NewEventBus()
	board := status.NewBoard(eventBus)

	// Warnings and errors from any component surface as the status issue.
	logger.SetOnLog(func(entry logging.LogEntry) {
		if entry.Level == "warn" || entry.Level == "error" {
			board.ReportIssue(entry.Component + ": " + entry.Message)
		}
	})

	// Synthesis backend. Device failures degrade to silent theremin.
	var factory audio.SinkFactory
	if !*noAudioDevice {
		factory = func() (audio.Sink, error) { return audio.NewOtoSink() }
	}
	audioEngine := audio.NewEngine(factory, logger.Component("audio"), eventBus)
	defer audioEngine.Close()

	mode, err := audio.ParseMode(cfg.Audio.Mode)
	if err != nil {
		zlog.Warn().Err(err).Msg("Bad audio mode in config, starting off")
		mode = audio.ModeOff
	}
	audioEngine.SetMode(mode)

	trackerSrv := tracker.NewServer(logger.Component("tracker"), eventBus)
	trackerSrv.SetModeHandler(func(name string) {
		m, err := audio.ParseMode(name)
		if err != nil {
			zlog.Warn().Err(err).Msg("Ignoring mode control message")
			return
		}
		audioEngine.SetMode(m)
	})

	hub := stage.NewHub(logger.Component("stage"), eventBus)
	defer hub.Close()

	noise := geometry.NewRandNoise(noiseSeed(cfg))
	eng := engine.New(cfg, trackerSrv, audioEngine, hub,
		noise, logger.Component("engine"), eventBus)

	watcher, err := config.NewWatcher(logger.Component("config"), eng.ApplyConfig)
	if err != nil {
		zlog.Warn().Err(err).Msg("Config hot-reload unavailable")
	} else {
		defer watcher.Close()
	}

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Server.TrackerPath, trackerSrv.Handler())
	mux.HandleFunc(cfg.Server.StagePath, hub.Handler())
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":  board.Snapshot(),
			"clients": hub.ClientCount(),
		})
	})
	mux.HandleFunc("/api/logs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(logger.GetHistory(200))
	})

	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error().Err(err).Msg("HTTP server failed")
			os.Exit(1)
		}
	}()

	eng.Run()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zlog.Info().Msg("Shutting down")
	eng.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// noiseSeed picks the chaos jitter seed: configured for repeatability, the
// clock otherwise.
func noiseSeed(cfg *config.Config) int64 {
	if cfg.Engine.NoiseSeed != 0 {
		return cfg.Engine.NoiseSeed
	}
	return time.Now().UnixNano()
}
