package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Overrides holds the runtime-tunable subset of configuration. The file is
// optional; a deployment that never writes one runs on the env-derived
// defaults forever.
type Overrides struct {
	Search SearchOverrides `yaml:"search"`
	Cache  CacheOverrides  `yaml:"cache"`
}

// SearchOverrides tunes the search pipeline at runtime
type SearchOverrides struct {
	Window         int           `yaml:"window"`
	Limit          int           `yaml:"limit"`
	DebounceQuiet  time.Duration `yaml:"debounceQuiet"`
	ThrottleWindow time.Duration `yaml:"throttleWindow"`
}

// CacheOverrides tunes cache TTLs at runtime
type CacheOverrides struct {
	ListTTL   time.Duration `yaml:"listTTL"`
	SearchTTL time.Duration `yaml:"searchTTL"`
}

// Watcher reloads the overrides file whenever it changes on disk
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	mu       sync.RWMutex
	current  *Overrides
	onChange []func(*Overrides)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewWatcher loads the overrides file at path and watches it for changes.
// The parent directory is watched too, so atomic saves via rename are seen.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	current, err := LoadOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial overrides: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch overrides file: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		logger.Warn("failed to watch overrides directory", zap.Error(err))
	}

	return &Watcher{
		path:    path,
		watcher: fsw,
		current: current,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("overrides watcher started", zap.String("path", w.path))
}

// Stop stops watching
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

// Current returns the most recently loaded overrides
func (w *Watcher) Current() *Overrides {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after every successful reload
func (w *Watcher) OnChange(handler func(*Overrides)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

func (w *Watcher) watchLoop() {
	// Editors fire several events per save; collapse each burst into one reload
	var debounce *time.Timer
	const quiet = 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(quiet, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	next, err := LoadOverrides(w.path)
	if err != nil {
		w.logger.Error("failed to reload overrides, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = next
	handlers := append([]func(*Overrides){}, w.onChange...)
	w.mu.Unlock()

	w.logger.Info("overrides reloaded", zap.String("path", w.path))
	for _, handler := range handlers {
		go handler(next)
	}
}

// LoadOverrides reads and validates the overrides file at path
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overrides Overrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides: %w", err)
	}
	if err := overrides.validate(); err != nil {
		return nil, err
	}
	return &overrides, nil
}

func (o *Overrides) validate() error {
	if o.Search.Window < 0 {
		return fmt.Errorf("search.window cannot be negative")
	}
	if o.Search.Limit < 0 {
		return fmt.Errorf("search.limit cannot be negative")
	}
	if o.Cache.ListTTL < 0 || o.Cache.SearchTTL < 0 {
		return fmt.Errorf("cache TTL overrides cannot be negative")
	}
	return nil
}

// Apply folds non-zero override values onto cfg
func (o *Overrides) Apply(cfg *Config) {
	if o.Search.Window > 0 {
		cfg.SearchWindow = o.Search.Window
	}
	if o.Search.Limit > 0 {
		cfg.SearchLimit = o.Search.Limit
	}
	if o.Search.DebounceQuiet > 0 {
		cfg.DebounceQuiet = o.Search.DebounceQuiet
	}
	if o.Search.ThrottleWindow > 0 {
		cfg.ThrottleWindow = o.Search.ThrottleWindow
	}
	if o.Cache.ListTTL > 0 {
		cfg.CacheListTTL = o.Cache.ListTTL
	}
	if o.Cache.SearchTTL > 0 {
		cfg.CacheSearchTTL = o.Cache.SearchTTL
	}
}
