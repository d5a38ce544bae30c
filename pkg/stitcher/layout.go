package stitcher

import (
	"fmt"

	"filestitch/internal/models"
	"filestitch/pkg/axis"
	"filestitch/pkg/dimension"
	"filestitch/pkg/reader"
)

// FileInfo is the geometry every file of a pattern is expected to share. It
// is read from the first file.
type FileInfo struct {
	SizeX          int              `toml:"size_x"`
	SizeY          int              `toml:"size_y"`
	SizeZ          int              `toml:"size_z"`
	SizeC          int              `toml:"size_c"`
	SizeT          int              `toml:"size_t"`
	PixelType      reader.PixelType `toml:"pixel_type"`
	LittleEndian   bool             `toml:"little_endian"`
	DimensionOrder string           `toml:"dimension_order"`
}

func infoOf(r reader.Reader) FileInfo {
	return FileInfo{
		SizeX:          r.SizeX(),
		SizeY:          r.SizeY(),
		SizeZ:          r.SizeZ(),
		SizeC:          r.SizeC(),
		SizeT:          r.SizeT(),
		PixelType:      r.PixelType(),
		LittleEndian:   r.IsLittleEndian(),
		DimensionOrder: r.DimensionOrder(),
	}
}

// matches reports whether r shares the geometry of the first file.
func (fi FileInfo) matches(r reader.Reader) bool {
	return r.SizeX() == fi.SizeX && r.SizeY() == fi.SizeY &&
		r.SizeZ() == fi.SizeZ && r.SizeC() == fi.SizeC && r.SizeT() == fi.SizeT &&
		r.PixelType() == fi.PixelType
}

// layout maps stitched plane indices onto files and back.
type layout struct {
	files  []string
	counts []int

	zBlocks, cBlocks, tBlocks, sBlocks []int

	info    FileInfo
	swapped bool

	// per-file sizes after any Z/T swap
	effZ, effC, effT int

	order               string
	sizeZ, sizeC, sizeT int
	series              int
}

func newLayout(files []string, counts []int, g *axis.Guess, info FileInfo) (*layout, error) {
	if info.SizeZ < 1 || info.SizeC < 1 || info.SizeT < 1 {
		return nil, fmt.Errorf("%w: first file reports Z=%d C=%d T=%d",
			ErrInconsistentFile, info.SizeZ, info.SizeC, info.SizeT)
	}
	l := &layout{
		files:   files,
		counts:  counts,
		zBlocks: g.BlocksOf(axis.Z),
		cBlocks: g.BlocksOf(axis.C),
		tBlocks: g.BlocksOf(axis.T),
		sBlocks: g.BlocksOf(axis.S),
		info:    info,
		swapped: g.Swapped(),
		effZ:    g.SizeZ(),
		effC:    g.SizeC(),
		effT:    g.SizeT(),
		order:   g.AdjustedOrder(),
	}

	zc, cc, tc, sc := g.AxisCount(axis.Z), g.AxisCount(axis.C), g.AxisCount(axis.T), g.AxisCount(axis.S)
	if n := zc * cc * tc * sc; n != len(files) {
		return nil, fmt.Errorf("%w: Z=%d C=%d T=%d S=%d give %d files, pattern names %d",
			ErrAxisMismatch, zc, cc, tc, sc, n, len(files))
	}
	l.sizeZ = l.effZ * zc
	l.sizeC = l.effC * cc
	l.sizeT = l.effT * tc
	l.series = sc
	return l, nil
}

func (l *layout) imageCount() int { return l.sizeZ * l.sizeC * l.sizeT }

func (l *layout) lengths(blocks []int) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = l.counts[b]
	}
	return out
}

// scatter writes v, split over the given blocks, into pos.
func (l *layout) scatter(pos, blocks []int, v int) {
	for i, p := range dimension.Position(l.lengths(blocks), v) {
		pos[blocks[i]] = p
	}
}

// gather is the inverse of scatter.
func (l *layout) gather(pos, blocks []int) int {
	sub := make([]int, len(blocks))
	for i, b := range blocks {
		sub[i] = pos[b]
	}
	return dimension.Raster(l.lengths(blocks), sub)
}

func (l *layout) locate(series, no int) (models.PlaneRef, error) {
	if series < 0 || series >= l.series {
		return models.PlaneRef{}, fmt.Errorf("%w: %d of %d", ErrSeriesIndex, series, l.series)
	}
	z, c, t, err := dimension.Coords(l.order, l.sizeZ, l.sizeC, l.sizeT, no)
	if err != nil {
		return models.PlaneRef{}, fmt.Errorf("%w: %d of %d", ErrPlaneIndex, no, l.imageCount())
	}

	pos := make([]int, len(l.counts))
	l.scatter(pos, l.zBlocks, z/l.effZ)
	l.scatter(pos, l.cBlocks, c/l.effC)
	l.scatter(pos, l.tBlocks, t/l.effT)
	l.scatter(pos, l.sBlocks, series)

	lz, lc, lt := z%l.effZ, c%l.effC, t%l.effT
	if l.swapped {
		lz, lt = lt, lz
	}
	plane, err := dimension.Index(l.info.DimensionOrder, l.info.SizeZ, l.info.SizeC, l.info.SizeT, lz, lc, lt)
	if err != nil {
		return models.PlaneRef{}, err
	}
	return models.PlaneRef{File: dimension.Raster(l.counts, pos), Plane: plane}, nil
}

func (l *layout) globalIndex(ref models.PlaneRef) (series, no int, err error) {
	if ref.File < 0 || ref.File >= len(l.files) {
		return 0, 0, fmt.Errorf("%w: %d of %d", ErrFileIndex, ref.File, len(l.files))
	}
	oz, oc, ot, err := dimension.Coords(l.info.DimensionOrder, l.info.SizeZ, l.info.SizeC, l.info.SizeT, ref.Plane)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: plane %d of file %d", ErrPlaneIndex, ref.Plane, ref.File)
	}
	if l.swapped {
		oz, ot = ot, oz
	}

	pos := dimension.Position(l.counts, ref.File)
	z := l.gather(pos, l.zBlocks)*l.effZ + oz
	c := l.gather(pos, l.cBlocks)*l.effC + oc
	t := l.gather(pos, l.tBlocks)*l.effT + ot
	no, err = dimension.Index(l.order, l.sizeZ, l.sizeC, l.sizeT, z, c, t)
	if err != nil {
		return 0, 0, err
	}
	return l.gather(pos, l.sBlocks), no, nil
}

// seriesFiles lists the file indices that belong to series.
func (l *layout) seriesFiles(series int) []int {
	var out []int
	for i := range l.files {
		if l.gather(dimension.Position(l.counts, i), l.sBlocks) == series {
			out = append(out, i)
		}
	}
	return out
}
