// Package reader defines the single-file reader capability that the stitcher
// wraps, the registry that selects a format-specific variant for a path, and
// small helpers shared by reader implementations.
package reader

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("no reader registered for format")
	ErrNotOpen       = errors.New("reader is not open")
	ErrPlaneIndex    = errors.New("plane index out of range")
	ErrRegion        = errors.New("region outside plane bounds")
	ErrPixelType     = errors.New("unsupported pixel type")
)

// Reader is the capability set of a single-file image reader. Implementations
// carry cursor state and are not safe for concurrent use.
type Reader interface {
	// Open initializes the reader from the file at path.
	Open(path string) error
	// Close releases the underlying file. Closing a closed reader is a no-op.
	Close() error

	SizeX() int
	SizeY() int
	SizeZ() int
	SizeC() int
	SizeT() int
	// ImageCount is SizeZ*SizeC*SizeT.
	ImageCount() int
	PixelType() PixelType
	IsLittleEndian() bool
	// DimensionOrder is a five letter order such as "XYZCT".
	DimensionOrder() string

	// OpenPlane returns the raw bytes of plane no.
	OpenPlane(no int) ([]byte, error)
	// OpenRegion returns the raw bytes of a sub-rectangle of plane no.
	OpenRegion(no int, region image.Rectangle) ([]byte, error)

	MetadataOptions() MetadataOptions
	SetMetadataOptions(opts MetadataOptions)
}

// MetadataLevel controls how much metadata a reader collects while opening.
type MetadataLevel int

const (
	MetadataAll MetadataLevel = iota
	MetadataNoOverlays
	MetadataMinimum
)

func (l MetadataLevel) String() string {
	switch l {
	case MetadataNoOverlays:
		return "no_overlays"
	case MetadataMinimum:
		return "minimum"
	default:
		return "all"
	}
}

// MetadataOptions is the cross-cutting configuration the stitcher propagates
// to every delegate it opens.
type MetadataOptions struct {
	Level MetadataLevel
	// Options carries format-specific key/value settings.
	Options map[string]string
}

// Clone returns a copy that does not share the Options map.
func (m MetadataOptions) Clone() MetadataOptions {
	out := MetadataOptions{Level: m.Level}
	if m.Options != nil {
		out.Options = make(map[string]string, len(m.Options))
		for k, v := range m.Options {
			out.Options[k] = v
		}
	}
	return out
}

// PixelType identifies the storage type of one pixel.
type PixelType int

const (
	Uint8 PixelType = iota
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Float32
	Float64
)

var pixelTypeNames = []string{"uint8", "int8", "uint16", "int16", "uint32", "int32", "float", "double"}

func (p PixelType) String() string {
	if p < 0 || int(p) >= len(pixelTypeNames) {
		return fmt.Sprintf("PixelType(%d)", int(p))
	}
	return pixelTypeNames[p]
}

// BytesPerPixel returns the storage width of one pixel.
func (p PixelType) BytesPerPixel() int {
	switch p {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// ParsePixelType is the inverse of PixelType.String.
func ParsePixelType(s string) (PixelType, error) {
	for i, name := range pixelTypeNames {
		if strings.EqualFold(s, name) {
			return PixelType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrPixelType, s)
}

// CropPlane copies region out of a full plane of width sizeX.
func CropPlane(plane []byte, sizeX, sizeY, bpp int, region image.Rectangle) ([]byte, error) {
	bounds := image.Rect(0, 0, sizeX, sizeY)
	if region.Empty() || !region.In(bounds) {
		return nil, fmt.Errorf("%w: %v not in %v", ErrRegion, region, bounds)
	}
	if len(plane) < sizeX*sizeY*bpp {
		return nil, fmt.Errorf("%w: plane holds %d bytes, need %d", ErrRegion, len(plane), sizeX*sizeY*bpp)
	}
	w := region.Dx() * bpp
	out := make([]byte, 0, w*region.Dy())
	for y := region.Min.Y; y < region.Max.Y; y++ {
		start := (y*sizeX + region.Min.X) * bpp
		out = append(out, plane[start:start+w]...)
	}
	return out, nil
}
