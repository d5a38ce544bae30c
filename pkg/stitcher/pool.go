package stitcher

import (
	"sort"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"filestitch/pkg/reader"
)

// pool keeps at most capacity delegate readers open, closing the least
// recently used one when full.
type pool struct {
	lru     *simplelru.LRU[int, reader.Reader]
	onEvict func(file int, err error)

	// set while closeAll purges the cache
	purging  bool
	purgeErr error
}

func newPool(capacity int, onEvict func(file int, err error)) *pool {
	p := &pool{onEvict: onEvict}
	// NewLRU only fails for a non-positive size
	p.lru, _ = simplelru.NewLRU[int, reader.Reader](max(capacity, 1), p.evicted)
	return p
}

// evicted closes r as it leaves the cache.
func (p *pool) evicted(file int, r reader.Reader) {
	err := r.Close()
	if p.purging {
		if err != nil && p.purgeErr == nil {
			p.purgeErr = err
		}
		return
	}
	if p.onEvict != nil {
		p.onEvict(file, err)
	}
}

func (p *pool) get(file int) (reader.Reader, bool) {
	return p.lru.Get(file)
}

func (p *pool) put(file int, r reader.Reader) {
	p.lru.Add(file, r)
}

func (p *pool) len() int { return p.lru.Len() }

// readers returns the open readers ordered by file index.
func (p *pool) readers() []reader.Reader {
	files := p.lru.Keys()
	sort.Ints(files)
	out := make([]reader.Reader, 0, len(files))
	for _, file := range files {
		if r, ok := p.lru.Peek(file); ok {
			out = append(out, r)
		}
	}
	return out
}

// closeAll closes every reader and empties the pool, returning the first
// close error.
func (p *pool) closeAll() error {
	p.purging = true
	p.purgeErr = nil
	p.lru.Purge()
	p.purging = false
	return p.purgeErr
}
