// Package watch re-infers a file's pattern when its directory changes.
package watch

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"filestitch/pkg/pattern"
)

// DefaultDebounce is how long the directory must be quiet before a rescan.
const DefaultDebounce = 100 * time.Millisecond

// Change reports that the inferred pattern of the watched file moved.
type Change struct {
	File     string
	Previous string
	Pattern  string
	Files    int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rescan.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher monitors the directory of one file.
type Watcher struct {
	File    string
	Changes <-chan Change

	changes  chan Change
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	current string
	started bool
}

// NewWatcher infers the current pattern of file and prepares a watcher for
// its directory.
func NewWatcher(file string, opts ...Option) (*Watcher, error) {
	current, err := pattern.FindPatternFromFile(file)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		File:     file,
		Changes:  ch,
		changes:  ch,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: DefaultDebounce,
		log:      slog.New(slog.DiscardHandler),
		current:  current,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Pattern is the most recently inferred pattern.
func (w *Watcher) Pattern() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		return err
	}
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. It is safe to call
// without Start and more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
		w.watcher.Close()
		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if started {
			<-w.done
		}
		close(w.changes)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.rescan()
				}
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.rescan()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Debug("watch error", "err", err)
		}
	}
}

// relevant skips hidden files and files of another extension.
func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return filepath.Ext(base) == filepath.Ext(w.File)
}

func (w *Watcher) rescan() {
	next, err := pattern.FindPatternFromFile(w.File)
	if err != nil {
		w.log.Debug("rescan failed", "file", w.File, "err", err)
		return
	}

	w.mu.Lock()
	prev := w.current
	w.current = next
	w.mu.Unlock()
	if next == prev {
		return
	}

	w.log.Debug("pattern changed", "file", w.File, "from", prev, "to", next)
	change := Change{
		File:     w.File,
		Previous: prev,
		Pattern:  next,
		Files:    len(pattern.Parse(next).Files()),
	}
	select {
	case w.changes <- change:
	case <-w.quit:
	}
}
