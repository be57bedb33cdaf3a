package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads the config file on change so tuning (spring params, blend
// rates, instance count) can be adjusted against the live installation.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Config)
	logger   zerolog.Logger

	mu   sync.Mutex
	done chan struct{}
}

// NewWatcher watches the config file's directory and calls onReload with the
// freshly loaded config after each write. The callback runs on the watcher
// goroutine; consumers apply the values between frames.
func NewWatcher(logger zerolog.Logger, onReload func(*Config)) (*Watcher, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(configDir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		path:     filepath.Join(configDir, "config.yaml"),
		onReload: onReload,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name == w.path && event.Has(fsnotify.Write) {
				cfg, err := Load()
				if err != nil {
					w.logger.Warn().Err(err).Msg("Config reload failed, keeping current values")
					continue
				}
				w.logger.Info().Msg("Config reloaded")
				w.onReload(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Config watcher error")
		}
	}
}

// Close stops the watcher. Safe to call once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.watcher.Close()
}
