// Package swapper reinterprets or reorders the Z, C and T axes of a reader.
package swapper

import (
	"fmt"
	"image"

	"filestitch/pkg/dimension"
	"filestitch/pkg/reader"
)

var _ reader.Reader = (*Swapper)(nil)

// Swapper wraps a reader.Reader.
//
// SwapDimensions relabels the axes: the sizes stay in raster position and
// take the names the new order gives them, so plane indices are unchanged.
// SetOutputOrder keeps the axes but changes which one varies fastest, so
// plane indices are remapped on every read.
type Swapper struct {
	reader.Reader

	open        bool
	inputOrder  string
	outputOrder string
	sizeZ       int
	sizeC       int
	sizeT       int
}

// New wraps r. r may be opened already or later through the Swapper.
func New(r reader.Reader) *Swapper {
	s := &Swapper{Reader: r}
	if r.DimensionOrder() != "" && r.ImageCount() > 0 {
		s.reset()
	}
	return s
}

func (s *Swapper) reset() {
	s.open = true
	s.inputOrder = s.Reader.DimensionOrder()
	s.outputOrder = s.inputOrder
	s.sizeZ = s.Reader.SizeZ()
	s.sizeC = s.Reader.SizeC()
	s.sizeT = s.Reader.SizeT()
}

func (s *Swapper) Open(path string) error {
	if err := s.Reader.Open(path); err != nil {
		return err
	}
	s.reset()
	return nil
}

func (s *Swapper) Close() error {
	s.open = false
	return s.Reader.Close()
}

// SwapDimensions relabels the axes so the current raster reads as order.
func (s *Swapper) SwapDimensions(order string) error {
	if !s.open {
		return reader.ErrNotOpen
	}
	if err := dimension.ValidateOrder(order); err != nil {
		return err
	}
	sizes := map[byte]int{'Z': s.sizeZ, 'C': s.sizeC, 'T': s.sizeT}
	byPos := func(axis byte) int {
		for i := 2; i < len(order); i++ {
			if order[i] == axis {
				return sizes[s.inputOrder[i]]
			}
		}
		return 1
	}
	s.sizeZ, s.sizeC, s.sizeT = byPos('Z'), byPos('C'), byPos('T')
	s.inputOrder = order
	s.outputOrder = order
	return nil
}

// SetOutputOrder sets the order in which planes are presented.
func (s *Swapper) SetOutputOrder(order string) error {
	if !s.open {
		return reader.ErrNotOpen
	}
	if err := dimension.ValidateOrder(order); err != nil {
		return err
	}
	s.outputOrder = order
	return nil
}

// InputOrder is the order of the wrapped raster after any relabelling.
func (s *Swapper) InputOrder() string { return s.inputOrder }

// DimensionOrder is the output order.
func (s *Swapper) DimensionOrder() string { return s.outputOrder }

func (s *Swapper) SizeZ() int { return s.sizeZ }
func (s *Swapper) SizeC() int { return s.sizeC }
func (s *Swapper) SizeT() int { return s.sizeT }

// underlying maps an output plane index to the wrapped reader's index.
func (s *Swapper) underlying(no int) (int, error) {
	if !s.open {
		return 0, reader.ErrNotOpen
	}
	z, c, t, err := dimension.Coords(s.outputOrder, s.sizeZ, s.sizeC, s.sizeT, no)
	if err != nil {
		return 0, fmt.Errorf("%w: %d", reader.ErrPlaneIndex, no)
	}
	return dimension.Index(s.inputOrder, s.sizeZ, s.sizeC, s.sizeT, z, c, t)
}

func (s *Swapper) OpenPlane(no int) ([]byte, error) {
	n, err := s.underlying(no)
	if err != nil {
		return nil, err
	}
	return s.Reader.OpenPlane(n)
}

func (s *Swapper) OpenRegion(no int, region image.Rectangle) ([]byte, error) {
	n, err := s.underlying(no)
	if err != nil {
		return nil, err
	}
	return s.Reader.OpenRegion(n, region)
}
