// Package dimension holds the dimension-order and raster arithmetic shared by
// every reader in filestitch.
//
// A dimension order is a five letter string such as "XYZCT". The two spatial
// axes always come first; the remaining three letters name the order in which
// planes are rasterized, fastest varying first.
package dimension

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrder = errors.New("invalid dimension order")
	ErrCoordinate   = errors.New("coordinate out of range")
)

// DefaultOrder is the order used when a reader does not declare one.
const DefaultOrder = "XYZCT"

// ValidateOrder checks that order starts with XY and names Z, C and T once each.
func ValidateOrder(order string) error {
	if len(order) != 5 || order[0] != 'X' || order[1] != 'Y' {
		return fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}
	var seen [3]bool
	for i := 2; i < 5; i++ {
		k := axisSlot(order[i])
		if k < 0 || seen[k] {
			return fmt.Errorf("%w: %q", ErrInvalidOrder, order)
		}
		seen[k] = true
	}
	return nil
}

func axisSlot(b byte) int {
	switch b {
	case 'Z':
		return 0
	case 'C':
		return 1
	case 'T':
		return 2
	}
	return -1
}

// Index returns the raster index of plane (z, c, t) for the given order and sizes.
func Index(order string, sizeZ, sizeC, sizeT, z, c, t int) (int, error) {
	if err := ValidateOrder(order); err != nil {
		return 0, err
	}
	sizes := [3]int{sizeZ, sizeC, sizeT}
	coords := [3]int{z, c, t}
	for i := range sizes {
		if sizes[i] <= 0 {
			return 0, fmt.Errorf("%w: non-positive size %d", ErrCoordinate, sizes[i])
		}
		if coords[i] < 0 || coords[i] >= sizes[i] {
			return 0, fmt.Errorf("%w: %c=%d (size %d)", ErrCoordinate, "ZCT"[i], coords[i], sizes[i])
		}
	}

	idx := 0
	for i := 4; i >= 2; i-- {
		k := axisSlot(order[i])
		idx = idx*sizes[k] + coords[k]
	}
	return idx, nil
}

// Coords is the inverse of Index.
func Coords(order string, sizeZ, sizeC, sizeT, no int) (z, c, t int, err error) {
	if err := ValidateOrder(order); err != nil {
		return 0, 0, 0, err
	}
	sizes := [3]int{sizeZ, sizeC, sizeT}
	total := 1
	for _, s := range sizes {
		if s <= 0 {
			return 0, 0, 0, fmt.Errorf("%w: non-positive size %d", ErrCoordinate, s)
		}
		total *= s
	}
	if no < 0 || no >= total {
		return 0, 0, 0, fmt.Errorf("%w: plane %d of %d", ErrCoordinate, no, total)
	}

	var coords [3]int
	rest := no
	for i := 2; i < 5; i++ {
		k := axisSlot(order[i])
		coords[k] = rest % sizes[k]
		rest /= sizes[k]
	}
	return coords[0], coords[1], coords[2], nil
}

// Raster flattens pos over lengths with the last position varying fastest,
// matching the nested-loop expansion of a file pattern.
func Raster(lengths, pos []int) int {
	idx := 0
	for i := range lengths {
		idx = idx*lengths[i] + pos[i]
	}
	return idx
}

// Position is the inverse of Raster.
func Position(lengths []int, raster int) []int {
	pos := make([]int, len(lengths))
	for i := len(lengths) - 1; i >= 0; i-- {
		if lengths[i] <= 0 {
			continue
		}
		pos[i] = raster % lengths[i]
		raster /= lengths[i]
	}
	return pos
}

// Product multiplies lengths; an empty slice yields 1.
func Product(lengths []int) int {
	p := 1
	for _, n := range lengths {
		p *= n
	}
	return p
}
