package reader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Factory returns an unopened reader able to handle path.
type Factory func(path string) (Reader, error)

// Constructor builds a fresh, unopened reader of one format.
type Constructor func() Reader

// Registry maps lower-case file extensions (with the leading dot) to reader
// constructors. The zero value is not usable; call NewRegistry.
type Registry struct {
	byExt map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry holding the built-in image formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif"} {
		r.Register(ext, func() Reader { return NewImageReader() })
	}
	return r
}

// Register binds ext to c, replacing any earlier binding.
func (r *Registry) Register(ext string, c Constructor) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.byExt[ext] = c
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Lookup returns an unopened reader for path's extension.
func (r *Registry) Lookup(path string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	c, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return c(), nil
}

// Factory adapts the registry to the Factory signature.
func (r *Registry) Factory() Factory {
	return r.Lookup
}
