// Package minmax tracks pixel extrema of the planes read through a reader.
package minmax

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"filestitch/pkg/dimension"
	"filestitch/pkg/reader"
)

// ErrNotPopulated means not every plane of a channel has been read yet.
var ErrNotPopulated = errors.New("channel has unread planes")

// ErrChannel reports a channel index outside the reader's range.
var ErrChannel = errors.New("channel index out of range")

var _ reader.Reader = (*Calculator)(nil)

// PlaneStats summarises one fully read plane.
type PlaneStats struct {
	Min      float64
	Max      float64
	Mean     float64
	Variance float64
	Pixels   int
}

// Calculator wraps a reader.Reader and records the extrema of each plane as
// it is read. Full plane reads fix a plane's statistics; region reads only
// widen the known range of the plane's channel.
type Calculator struct {
	reader.Reader

	planes   map[int]PlaneStats
	knownMin []float64
	knownMax []float64
	seen     []int
}

// New wraps r.
func New(r reader.Reader) *Calculator {
	c := &Calculator{Reader: r}
	c.reset()
	return c
}

func (c *Calculator) reset() {
	n := c.Reader.SizeC()
	c.planes = make(map[int]PlaneStats)
	c.knownMin = make([]float64, n)
	c.knownMax = make([]float64, n)
	c.seen = make([]int, n)
	for i := range c.knownMin {
		c.knownMin[i] = math.Inf(1)
		c.knownMax[i] = math.Inf(-1)
	}
}

func (c *Calculator) Open(path string) error {
	if err := c.Reader.Open(path); err != nil {
		return err
	}
	c.reset()
	return nil
}

func (c *Calculator) Close() error {
	err := c.Reader.Close()
	c.reset()
	return err
}

func (c *Calculator) channelOf(no int) (int, error) {
	_, ch, _, err := dimension.Coords(c.Reader.DimensionOrder(),
		c.Reader.SizeZ(), c.Reader.SizeC(), c.Reader.SizeT(), no)
	return ch, err
}

func (c *Calculator) decode(data []byte) ([]float64, error) {
	return reader.DecodeFloat64(data, c.Reader.PixelType(), c.Reader.IsLittleEndian())
}

func (c *Calculator) widen(ch int, lo, hi float64) {
	if ch >= len(c.knownMin) {
		return
	}
	c.knownMin[ch] = math.Min(c.knownMin[ch], lo)
	c.knownMax[ch] = math.Max(c.knownMax[ch], hi)
}

func (c *Calculator) OpenPlane(no int) ([]byte, error) {
	data, err := c.Reader.OpenPlane(no)
	if err != nil {
		return nil, err
	}
	if _, ok := c.planes[no]; ok {
		return data, nil
	}
	values, err := c.decode(data)
	if err != nil || len(values) == 0 {
		return data, err
	}
	ch, err := c.channelOf(no)
	if err != nil {
		return data, nil
	}

	ps := PlaneStats{
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   stat.Mean(values, nil),
		Pixels: len(values),
	}
	if len(values) > 1 {
		ps.Variance = stat.Variance(values, nil)
	}
	c.planes[no] = ps
	c.widen(ch, ps.Min, ps.Max)
	if ch < len(c.seen) {
		c.seen[ch]++
	}
	return data, nil
}

func (c *Calculator) OpenRegion(no int, region image.Rectangle) ([]byte, error) {
	data, err := c.Reader.OpenRegion(no, region)
	if err != nil {
		return nil, err
	}
	if _, ok := c.planes[no]; ok {
		return data, nil
	}
	values, err := c.decode(data)
	if err != nil || len(values) == 0 {
		return data, err
	}
	if ch, err := c.channelOf(no); err == nil {
		c.widen(ch, floats.Min(values), floats.Max(values))
	}
	return data, nil
}

func (c *Calculator) checkChannel(ch int) error {
	if ch < 0 || ch >= len(c.knownMin) {
		return fmt.Errorf("%w: %d of %d", ErrChannel, ch, len(c.knownMin))
	}
	return nil
}

// ChannelKnownMin is the smallest value read so far in channel ch, or NaN
// when nothing has been read.
func (c *Calculator) ChannelKnownMin(ch int) (float64, error) {
	if err := c.checkChannel(ch); err != nil {
		return 0, err
	}
	if math.IsInf(c.knownMin[ch], 1) {
		return math.NaN(), nil
	}
	return c.knownMin[ch], nil
}

// ChannelKnownMax is the largest value read so far in channel ch, or NaN
// when nothing has been read.
func (c *Calculator) ChannelKnownMax(ch int) (float64, error) {
	if err := c.checkChannel(ch); err != nil {
		return 0, err
	}
	if math.IsInf(c.knownMax[ch], -1) {
		return math.NaN(), nil
	}
	return c.knownMax[ch], nil
}

func (c *Calculator) populated(ch int) error {
	if err := c.checkChannel(ch); err != nil {
		return err
	}
	perChannel := c.Reader.ImageCount() / len(c.seen)
	if c.seen[ch] < perChannel {
		return fmt.Errorf("%w: channel %d has %d of %d planes", ErrNotPopulated, ch, c.seen[ch], perChannel)
	}
	return nil
}

// ChannelGlobalMin is the minimum of channel ch once all its planes were read.
func (c *Calculator) ChannelGlobalMin(ch int) (float64, error) {
	if err := c.populated(ch); err != nil {
		return 0, err
	}
	return c.knownMin[ch], nil
}

// ChannelGlobalMax is the maximum of channel ch once all its planes were read.
func (c *Calculator) ChannelGlobalMax(ch int) (float64, error) {
	if err := c.populated(ch); err != nil {
		return 0, err
	}
	return c.knownMax[ch], nil
}

// PlaneMinMax returns the extrema of plane no if it has been read in full.
func (c *Calculator) PlaneMinMax(no int) (lo, hi float64, ok bool) {
	ps, ok := c.planes[no]
	return ps.Min, ps.Max, ok
}

// Plane returns the statistics of plane no if it has been read in full.
func (c *Calculator) Plane(no int) (PlaneStats, bool) {
	ps, ok := c.planes[no]
	return ps, ok
}

// ChannelStats pools the mean and sample standard deviation of every fully
// read plane of channel ch.
func (c *Calculator) ChannelStats(ch int) (mean, std float64, err error) {
	if err := c.checkChannel(ch); err != nil {
		return 0, 0, err
	}
	var means, weights []float64
	var sets []PlaneStats
	for no, ps := range c.planes {
		if pc, err := c.channelOf(no); err != nil || pc != ch {
			continue
		}
		means = append(means, ps.Mean)
		weights = append(weights, float64(ps.Pixels))
		sets = append(sets, ps)
	}
	if len(sets) == 0 {
		return 0, 0, fmt.Errorf("%w: channel %d has no planes", ErrNotPopulated, ch)
	}

	mean = stat.Mean(means, weights)
	var ss, n float64
	for _, ps := range sets {
		d := ps.Mean - mean
		k := float64(ps.Pixels)
		ss += (k-1)*ps.Variance + k*d*d
		n += k
	}
	if n > 1 {
		std = math.Sqrt(ss / (n - 1))
	}
	return mean, std, nil
}
