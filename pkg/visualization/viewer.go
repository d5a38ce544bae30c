package visualization

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"

	"filestitch/pkg/dimension"
	"filestitch/pkg/reader"
)

// Viewer renders the planes of a reader as grayscale images.
type Viewer struct {
	r reader.Reader

	// Quality is used for JPEG output
	Quality int
}

// NewViewer creates a viewer over an open reader
func NewViewer(r reader.Reader) *Viewer {
	return &Viewer{r: r, Quality: 90}
}

// ExtractPlane renders plane no. 8 and 16 bit unsigned planes keep their
// values; other pixel types are scaled to the full 16 bit range.
func (v *Viewer) ExtractPlane(no int) (image.Image, error) {
	data, err := v.r.OpenPlane(no)
	if err != nil {
		return nil, err
	}
	return v.render(data, image.Rect(0, 0, v.r.SizeX(), v.r.SizeY()))
}

// ExtractRegion renders a sub-rectangle of plane no.
func (v *Viewer) ExtractRegion(no int, region image.Rectangle) (image.Image, error) {
	data, err := v.r.OpenRegion(no, region)
	if err != nil {
		return nil, err
	}
	return v.render(data, image.Rect(0, 0, region.Dx(), region.Dy()))
}

func (v *Viewer) render(data []byte, bounds image.Rectangle) (image.Image, error) {
	w, h := bounds.Dx(), bounds.Dy()
	pt := v.r.PixelType()
	if len(data) != w*h*pt.BytesPerPixel() {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %s", reader.ErrPixelType, len(data), w, h, pt)
	}

	switch pt {
	case reader.Uint8:
		img := image.NewGray(bounds)
		copy(img.Pix, data)
		return img, nil

	case reader.Uint16:
		img := image.NewGray16(bounds)
		var order binary.ByteOrder = binary.BigEndian
		if v.r.IsLittleEndian() {
			order = binary.LittleEndian
		}
		for i := 0; i < w*h; i++ {
			// Gray16 pixels are big-endian
			binary.BigEndian.PutUint16(img.Pix[2*i:], order.Uint16(data[2*i:]))
		}
		return img, nil
	}

	values, err := reader.DecodeFloat64(data, pt, v.r.IsLittleEndian())
	if err != nil {
		return nil, err
	}
	return grayFromValues(values, w, h), nil
}

// grayFromValues scales values linearly so their range fills a Gray16 image.
func grayFromValues(values []float64, w, h int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, w, h))
	if len(values) == 0 {
		return img
	}
	lo, hi := floats.Min(values), floats.Max(values)
	scale := 0.0
	if hi > lo {
		scale = 65535 / (hi - lo)
	}
	for i, x := range values {
		value := uint16(math.Max(0, math.Min(65535, (x-lo)*scale)))
		img.SetGray16(i%w, i/w, color.Gray16{Y: value})
	}
	return img
}

// ExtractSlice extracts a slice through the Z stack of channel c at time t
// along the specified axis. An "x" slice is a depth by height image, a "y"
// slice is width by depth and a "z" slice is the plane itself.
func (v *Viewer) ExtractSlice(axis string, position, c, t int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	width, height, depth := v.r.SizeX(), v.r.SizeY(), v.r.SizeZ()

	var w, h int
	alongX := false
	switch axis {
	case "x", "X":
		if position >= width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, width)
		}
		w, h = depth, height
		alongX = true
	case "y", "Y":
		if position >= height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, height)
		}
		w, h = width, depth
	case "z", "Z":
		if position >= depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, depth)
		}
		no, err := dimension.Index(v.r.DimensionOrder(), depth, v.r.SizeC(), v.r.SizeT(), position, c, t)
		if err != nil {
			return nil, err
		}
		return v.ExtractPlane(no)
	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	out := make([]float64, w*h)
	for z := 0; z < depth; z++ {
		no, err := dimension.Index(v.r.DimensionOrder(), depth, v.r.SizeC(), v.r.SizeT(), z, c, t)
		if err != nil {
			return nil, err
		}
		data, err := v.r.OpenPlane(no)
		if err != nil {
			return nil, err
		}
		plane, err := reader.DecodeFloat64(data, v.r.PixelType(), v.r.IsLittleEndian())
		if err != nil {
			return nil, err
		}

		if alongX {
			// YZ plane: one column per z
			for y := 0; y < height; y++ {
				out[y*w+z] = plane[y*width+position]
			}
		} else {
			// XZ plane: one row per z
			copy(out[z*w:(z+1)*w], plane[position*width:(position+1)*width])
		}
	}
	return grayFromValues(out, w, h), nil
}

// SavePlane saves an image as PNG, or JPEG when filename ends in .jpg or .jpeg
func (v *Viewer) SavePlane(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: v.Quality})
	default:
		err = png.Encode(file, img)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// PlaneName is the file name of plane (z, c, t) in a saved sequence.
func PlaneName(z, c, t int, ext string) string {
	return fmt.Sprintf("plane_z%03d_c%02d_t%03d.%s", z, c, t, ext)
}

// SavePlaneSequence renders every plane into outputDir and returns the
// written paths in plane order. ext is "png" or "jpg".
func (v *Viewer) SavePlaneSequence(outputDir, ext string) ([]string, error) {
	switch ext {
	case "png", "jpg", "jpeg":
	default:
		return nil, fmt.Errorf("invalid format: %s (must be png or jpg)", ext)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	order := v.r.DimensionOrder()
	var paths []string
	for no := 0; no < v.r.ImageCount(); no++ {
		z, c, t, err := dimension.Coords(order, v.r.SizeZ(), v.r.SizeC(), v.r.SizeT(), no)
		if err != nil {
			return paths, err
		}
		img, err := v.ExtractPlane(no)
		if err != nil {
			return paths, err
		}

		filename := filepath.Join(outputDir, PlaneName(z, c, t, ext))
		if err := v.SavePlane(img, filename); err != nil {
			return paths, err
		}
		paths = append(paths, filename)
	}
	return paths, nil
}
