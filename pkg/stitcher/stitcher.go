// Package stitcher presents a set of files named by a file pattern as one
// multi-dimensional image.
//
// Every file of the pattern is read by its own delegate reader. The pattern's
// blocks are classified into Z, C, T and series axes, and each stitched plane
// index is mapped to a file and a plane inside it. Delegates are opened
// lazily and kept in a bounded pool.
package stitcher

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	"filestitch/internal/models"
	"filestitch/pkg/axis"
	"filestitch/pkg/dimension"
	"filestitch/pkg/pattern"
	"filestitch/pkg/reader"
)

var _ reader.Reader = (*Stitcher)(nil)

// Stitcher is a reader.Reader over all files of a pattern. It is not safe for
// concurrent use.
type Stitcher struct {
	opts    *options
	log     *slog.Logger
	session models.Session
	pattern *pattern.Pattern
	guess   *axis.Guess
	layout  *layout
	pool    *pool
	meta    reader.MetadataOptions

	// inferred is set when the pattern was derived from a single file name
	inferred bool
}

// New creates a closed Stitcher.
func New(opts ...Option) *Stitcher {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Stitcher{opts: o, log: o.logger}
}

// Open resolves id to a pattern, verifies its files and opens the first one
// to learn the per-file geometry. On failure the Stitcher stays closed.
func (s *Stitcher) Open(id string) error {
	if s.session.Open {
		if err := s.Close(); err != nil {
			s.log.Warn("closing previous pattern", "err", err)
		}
	}

	p, inferred := s.resolve(id)
	if !p.IsValid() {
		return fmt.Errorf("%w: %s", ErrPatternInvalid, p.ErrorMessage())
	}
	files := p.Files()
	if len(files) == 0 {
		return fmt.Errorf("%w: %s names no files", ErrFileNotFound, id)
	}
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil || fi.IsDir() {
			return fmt.Errorf("%w: %s", ErrFileNotFound, f)
		}
	}

	first, err := s.newDelegate(files[0])
	if err != nil {
		return err
	}
	info := infoOf(first)
	l, g, err := s.build(p, files, info)
	if err != nil {
		first.Close()
		return err
	}

	s.commit(id, p, g, l)
	s.inferred = inferred
	s.pool.put(0, first)
	s.log.Debug("opened pattern",
		"pattern", p.String(), "files", len(files), "order", g.AdjustedOrder(),
		"z", l.sizeZ, "c", l.sizeC, "t", l.sizeT, "series", l.series)
	return nil
}

// resolve parses id. An id naming an existing file is widened to the pattern
// of its siblings unless pattern ids are forced.
func (s *Stitcher) resolve(id string) (*pattern.Pattern, bool) {
	p := pattern.Parse(id, s.opts.patternOpts...)
	if s.opts.patternIDs || !p.IsRegex() || !p.IsValid() {
		return p, false
	}
	fi, err := os.Stat(id)
	if err != nil || fi.IsDir() {
		return p, false
	}
	inferred, err := pattern.FindPatternFromFile(id)
	if err != nil || inferred == id {
		return p, false
	}
	q := pattern.Parse(inferred)
	for _, f := range q.Files() {
		if _, err := os.Stat(f); err != nil {
			s.log.Debug("inferred pattern has gaps, using file alone", "pattern", inferred, "missing", f)
			return p, false
		}
	}
	s.log.Debug("inferred pattern", "id", id, "pattern", inferred)
	return q, true
}

func (s *Stitcher) build(p *pattern.Pattern, files []string, info FileInfo) (*layout, *axis.Guess, error) {
	g, err := axis.New(p, info.DimensionOrder, info.SizeZ, info.SizeT, info.SizeC, s.opts.certain, s.opts.axisOpts...)
	if err != nil {
		return nil, nil, err
	}
	counts := p.Count()
	if counts == nil {
		counts = []int{}
	}
	l, err := newLayout(files, counts, g, info)
	if err != nil {
		return nil, nil, err
	}
	return l, g, nil
}

func (s *Stitcher) commit(id string, p *pattern.Pattern, g *axis.Guess, l *layout) {
	s.pattern = p
	s.guess = g
	s.layout = l
	s.pool = newPool(s.opts.poolSize, func(file int, err error) {
		if err != nil {
			s.log.Warn("closing evicted reader", "file", l.files[file], "err", err)
			return
		}
		s.log.Debug("evicted reader", "file", l.files[file])
	})
	s.session = models.Session{ID: id, Pattern: p.String(), Open: true}
}

func (s *Stitcher) newDelegate(path string) (reader.Reader, error) {
	r, err := s.opts.factory(path)
	if err != nil {
		return nil, err
	}
	r.SetMetadataOptions(s.meta.Clone())
	if err := r.Open(path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return r, nil
}

// delegate returns the open reader of file, opening it on first use.
func (s *Stitcher) delegate(file int) (reader.Reader, error) {
	if r, ok := s.pool.get(file); ok {
		return r, nil
	}
	path := s.layout.files[file]
	r, err := s.newDelegate(path)
	if err != nil {
		return nil, err
	}
	if !s.layout.info.matches(r) {
		r.Close()
		return nil, fmt.Errorf("%w: %s is %dx%dx%dx%dx%d %s", ErrInconsistentFile, path,
			r.SizeX(), r.SizeY(), r.SizeZ(), r.SizeC(), r.SizeT(), r.PixelType())
	}
	s.pool.put(file, r)
	return r, nil
}

// Close releases every delegate and returns the Stitcher to the closed
// state. It reports the first error from closing a delegate.
func (s *Stitcher) Close() error {
	var err error
	if s.pool != nil {
		err = s.pool.closeAll()
	}
	s.pool = nil
	s.pattern = nil
	s.inferred = false
	s.guess = nil
	s.layout = nil
	s.session.Reset()
	return err
}

// IsOpen reports whether a pattern is open.
func (s *Stitcher) IsOpen() bool { return s.session.Open }

// SizeX is the plane width shared by every file, or 0 when closed.
func (s *Stitcher) SizeX() int {
	if !s.session.Open {
		return 0
	}
	return s.layout.info.SizeX
}

// SizeY is the plane height shared by every file, or 0 when closed.
func (s *Stitcher) SizeY() int {
	if !s.session.Open {
		return 0
	}
	return s.layout.info.SizeY
}

// SizeZ is the per-file Z size times the Z positions the blocks enumerate.
func (s *Stitcher) SizeZ() int {
	if !s.session.Open {
		return 0
	}
	return s.layout.sizeZ
}

// SizeC is the per-file C size times the C positions the blocks enumerate.
func (s *Stitcher) SizeC() int {
	if !s.session.Open {
		return 0
	}
	return s.layout.sizeC
}

// SizeT is the per-file T size times the T positions the blocks enumerate.
func (s *Stitcher) SizeT() int {
	if !s.session.Open {
		return 0
	}
	return s.layout.sizeT
}

// ImageCount is the number of planes in one series.
func (s *Stitcher) ImageCount() int {
	if !s.session.Open {
		return 0
	}
	return s.layout.imageCount()
}

// PixelType is the sample type of the first file.
func (s *Stitcher) PixelType() reader.PixelType {
	if !s.session.Open {
		return reader.Uint8
	}
	return s.layout.info.PixelType
}

// IsLittleEndian reports the byte order of the first file.
func (s *Stitcher) IsLittleEndian() bool {
	return s.session.Open && s.layout.info.LittleEndian
}

// DimensionOrder is the stitched order, which differs from the delegates'
// when Z and T were swapped.
func (s *Stitcher) DimensionOrder() string {
	if !s.session.Open {
		return ""
	}
	return s.layout.order
}

// Locate maps plane no of the current series to a file and a plane inside it.
func (s *Stitcher) Locate(no int) (models.PlaneRef, error) {
	if !s.session.Open {
		return models.PlaneRef{}, ErrNotOpen
	}
	return s.layout.locate(s.session.Series, no)
}

// GlobalIndex maps a plane of a file back to its series and stitched index.
func (s *Stitcher) GlobalIndex(ref models.PlaneRef) (series, no int, err error) {
	if !s.session.Open {
		return 0, 0, ErrNotOpen
	}
	return s.layout.globalIndex(ref)
}

// OpenPlane reads stitched plane no of the current series.
func (s *Stitcher) OpenPlane(no int) ([]byte, error) {
	r, ref, err := s.route(no)
	if err != nil {
		return nil, err
	}
	return r.OpenPlane(ref.Plane)
}

// OpenRegion reads a sub-rectangle of stitched plane no.
func (s *Stitcher) OpenRegion(no int, region image.Rectangle) ([]byte, error) {
	r, ref, err := s.route(no)
	if err != nil {
		return nil, err
	}
	return r.OpenRegion(ref.Plane, region)
}

func (s *Stitcher) route(no int) (reader.Reader, models.PlaneRef, error) {
	ref, err := s.Locate(no)
	if err != nil {
		return nil, ref, err
	}
	r, err := s.delegate(ref.File)
	if err != nil {
		return nil, ref, err
	}
	return r, ref, nil
}

// MetadataOptions returns the options applied to delegates.
func (s *Stitcher) MetadataOptions() reader.MetadataOptions { return s.meta.Clone() }

// SetMetadataOptions applies opts to every open delegate and to delegates
// opened later.
func (s *Stitcher) SetMetadataOptions(opts reader.MetadataOptions) {
	s.meta = opts.Clone()
	if s.pool == nil {
		return
	}
	for _, r := range s.pool.readers() {
		r.SetMetadataOptions(s.meta.Clone())
	}
}

// SeriesCount is the number of series the S axis blocks enumerate, or 1.
func (s *Stitcher) SeriesCount() int {
	if !s.session.Open {
		return 0
	}
	return s.layout.series
}

// SetSeries selects the series used by plane reads.
func (s *Stitcher) SetSeries(series int) error {
	if !s.session.Open {
		return ErrNotOpen
	}
	if series < 0 || series >= s.layout.series {
		return fmt.Errorf("%w: %d of %d", ErrSeriesIndex, series, s.layout.series)
	}
	s.session.Series = series
	return nil
}

// Series is the selected series.
func (s *Stitcher) Series() int { return s.session.Series }

// FilePattern returns the resolved pattern, or nil when closed.
func (s *Stitcher) FilePattern() *pattern.Pattern { return s.pattern }

// AxisGuess returns the block classification, or nil when closed.
func (s *Stitcher) AxisGuess() *axis.Guess { return s.guess }

// Files returns every file of the pattern in expansion order.
func (s *Stitcher) Files() []string {
	if !s.session.Open {
		return nil
	}
	out := make([]string, len(s.layout.files))
	copy(out, s.layout.files)
	return out
}

// SeriesFiles returns the files that make up the selected series.
func (s *Stitcher) SeriesFiles() []string {
	if !s.session.Open {
		return nil
	}
	var out []string
	for _, i := range s.layout.seriesFiles(s.session.Series) {
		out = append(out, s.layout.files[i])
	}
	return out
}

// UnderlyingReaders returns the delegates currently open, ordered by file.
func (s *Stitcher) UnderlyingReaders() []reader.Reader {
	if s.pool == nil {
		return nil
	}
	return s.pool.readers()
}

// OpenReaders is the number of delegates currently held open.
func (s *Stitcher) OpenReaders() int {
	if s.pool == nil {
		return 0
	}
	return s.pool.len()
}

// ZCTCoords returns the stitched coordinates of plane no.
func (s *Stitcher) ZCTCoords(no int) (z, c, t int, err error) {
	if !s.session.Open {
		return 0, 0, 0, ErrNotOpen
	}
	if no < 0 || no >= s.layout.imageCount() {
		return 0, 0, 0, fmt.Errorf("%w: %d of %d", ErrPlaneIndex, no, s.layout.imageCount())
	}
	return dimension.Coords(s.layout.order, s.layout.sizeZ, s.layout.sizeC, s.layout.sizeT, no)
}
