package stitcher

import (
	"errors"
	"testing"
)

var errClose = errors.New("close failed")

// failingReader is a fakeReader whose Close reports an error.
type failingReader struct {
	fakeReader
}

func (f *failingReader) Close() error {
	f.fakeReader.Close()
	return errClose
}

func TestPoolEvictsLeastRecentlyUsed(t *testing.T) {
	tr := &tracker{}
	var evicted []int
	p := newPool(2, func(file int, err error) {
		if err != nil {
			t.Errorf("Unexpected close error for file %d: %v", file, err)
		}
		evicted = append(evicted, file)
	})

	for _, file := range []int{3, 1} {
		r := &fakeReader{tr: tr, index: file}
		r.Open("")
		p.put(file, r)
	}
	if _, ok := p.get(3); !ok {
		t.Fatal("Expected file 3 to be pooled")
	}
	r := &fakeReader{tr: tr, index: 7}
	r.Open("")
	p.put(7, r)

	// file 1 was the least recently used
	if len(evicted) != 1 || evicted[0] != 1 {
		t.Errorf("Expected file 1 to be evicted, got %v", evicted)
	}
	if tr.closes != 1 || p.len() != 2 {
		t.Errorf("Expected 1 close and 2 pooled, got %d and %d", tr.closes, p.len())
	}

	readers := p.readers()
	if len(readers) != 2 || readers[0].(*fakeReader).index != 3 || readers[1].(*fakeReader).index != 7 {
		t.Errorf("Expected readers ordered by file index")
	}
}

func TestPoolCloseAll(t *testing.T) {
	tr := &tracker{}
	calls := 0
	p := newPool(4, func(int, error) { calls++ })

	ok := &fakeReader{tr: tr}
	ok.Open("")
	bad := &failingReader{fakeReader{tr: tr}}
	bad.Open("")
	p.put(0, ok)
	p.put(1, bad)

	if err := p.closeAll(); !errors.Is(err, errClose) {
		t.Errorf("Expected the close error, got %v", err)
	}
	if tr.closes != 2 || p.len() != 0 {
		t.Errorf("Expected both readers closed and the pool empty, got %d closes, %d pooled", tr.closes, p.len())
	}
	if calls != 0 {
		t.Errorf("Expected closeAll not to report evictions, got %d", calls)
	}
	if err := p.closeAll(); err != nil {
		t.Errorf("Expected an empty pool to close cleanly, got %v", err)
	}
}
