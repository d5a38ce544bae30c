// Package memo caches the result of opening a pattern in a TOML file next to
// the file it was opened from, so a later open can skip reading delegates.
package memo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"filestitch/pkg/pattern"
	"filestitch/pkg/stitcher"
)

// Version is bumped whenever the record layout changes.
const Version = 1

// DefaultMinElapsed is the shortest open worth caching.
const DefaultMinElapsed = 100 * time.Millisecond

const suffix = ".bfmemo"

var (
	ErrNoMemo  = errors.New("no memo for file")
	ErrStale   = errors.New("memo does not match file")
	ErrVersion = errors.New("memo version mismatch")
)

// Key identifies the file a memo was made for. Only the base name is kept so
// the memo stays valid when its directory moves.
type Key struct {
	Name    string `toml:"name"`
	Size    int64  `toml:"size"`
	ModTime int64  `toml:"mod_time"`
}

type record struct {
	Version int            `toml:"version"`
	Key     Key            `toml:"key"`
	State   stitcher.State `toml:"state"`
}

// Path is the memo file of id.
func Path(id string) string {
	dir, base := filepath.Split(id)
	return filepath.Join(dir, "."+base+suffix)
}

// keyOf stats id, or the first file of id read as a pattern.
func keyOf(id string) (Key, error) {
	fi, err := os.Stat(id)
	if err != nil {
		files := pattern.Parse(id).Files()
		if len(files) == 0 {
			return Key{}, err
		}
		if fi, err = os.Stat(files[0]); err != nil {
			return Key{}, err
		}
	}
	return Key{
		Name:    filepath.Base(id),
		Size:    fi.Size(),
		ModTime: fi.ModTime().UnixNano(),
	}, nil
}

// Option configures a Cache.
type Option func(*Cache)

// WithMinElapsed sets the shortest open that is saved.
func WithMinElapsed(d time.Duration) Option {
	return func(c *Cache) { c.minElapsed = d }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// Cache loads and saves memo files.
type Cache struct {
	minElapsed time.Duration
	log        *slog.Logger
}

func New(opts ...Option) *Cache {
	c := &Cache{
		minElapsed: DefaultMinElapsed,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the memo of id and rebases its pattern onto id's directory.
func (c *Cache) Load(id string) (stitcher.State, error) {
	data, err := os.ReadFile(Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return stitcher.State{}, fmt.Errorf("%w: %s", ErrNoMemo, id)
		}
		return stitcher.State{}, fmt.Errorf("reading memo: %w", err)
	}

	var rec record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return stitcher.State{}, fmt.Errorf("parsing memo: %w", err)
	}
	if rec.Version != Version {
		return stitcher.State{}, fmt.Errorf("%w: have %d, want %d", ErrVersion, rec.Version, Version)
	}
	key, err := keyOf(id)
	if err != nil {
		return stitcher.State{}, fmt.Errorf("%w: %v", ErrStale, err)
	}
	if key != rec.Key {
		return stitcher.State{}, fmt.Errorf("%w: %s", ErrStale, id)
	}

	st := rec.State
	if !filepath.IsAbs(st.Pattern) {
		st.Pattern = filepath.Join(filepath.Dir(id), st.Pattern)
	}
	return st, nil
}

// Save writes the memo of id. The pattern is stored relative to id's
// directory when it lies inside it.
func (c *Cache) Save(id string, st stitcher.State) error {
	key, err := keyOf(id)
	if err != nil {
		return fmt.Errorf("keying memo: %w", err)
	}
	if rel, ok := relative(filepath.Dir(id), st.Pattern); ok {
		st.Pattern = rel
	}

	data, err := toml.Marshal(record{Version: Version, Key: key, State: st})
	if err != nil {
		return fmt.Errorf("marshaling memo: %w", err)
	}

	path := Path(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp memo: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming memo: %w", err)
	}
	return nil
}

func relative(dir, target string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}

// Open opens id on s, restoring from the memo when one matches. A fresh
// open that took at least the configured minimum is saved; save failures
// are logged and otherwise ignored. hit reports whether the memo was used.
func (c *Cache) Open(s *stitcher.Stitcher, id string) (hit bool, err error) {
	st, err := c.Load(id)
	if err == nil {
		err = s.Restore(st)
	}
	if err == nil {
		c.log.Debug("memo hit", "id", id, "pattern", st.Pattern)
		return true, nil
	}
	c.log.Debug("memo miss", "id", id, "reason", err)

	start := time.Now()
	if err := s.Open(id); err != nil {
		return false, err
	}
	if elapsed := time.Since(start); elapsed < c.minElapsed {
		c.log.Debug("open too fast to memoize", "id", id, "elapsed", elapsed)
		return false, nil
	}
	st, err = s.State()
	if err == nil {
		err = c.Save(id, st)
	}
	if err != nil {
		c.log.Warn("saving memo", "id", id, "err", err)
	}
	return false, nil
}
