package reader

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ImageReader reads a single 2D image (PNG, JPEG or GIF) as one Z/T position.
// Grayscale images have one channel; colour images are split into R, G and B
// channel planes.
//
// The whole image is decoded on Open, since these formats have no random
// access to planes.
type ImageReader struct {
	path   string
	planes [][]byte
	sizeX  int
	sizeY  int
	sizeC  int
	ptype  PixelType
	meta   MetadataOptions
}

// NewImageReader creates an unopened image reader.
func NewImageReader() *ImageReader {
	return &ImageReader{}
}

// Open decodes the image at path.
func (r *ImageReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	bounds := img.Bounds()
	r.sizeX = bounds.Dx()
	r.sizeY = bounds.Dy()
	r.path = path

	switch src := img.(type) {
	case *image.Gray:
		r.sizeC = 1
		r.ptype = Uint8
		plane := make([]byte, r.sizeX*r.sizeY)
		for y := 0; y < r.sizeY; y++ {
			for x := 0; x < r.sizeX; x++ {
				plane[y*r.sizeX+x] = src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			}
		}
		r.planes = [][]byte{plane}

	case *image.Gray16:
		// stored big-endian, like the 16-bit sample order of PNG
		r.sizeC = 1
		r.ptype = Uint16
		plane := make([]byte, 2*r.sizeX*r.sizeY)
		for y := 0; y < r.sizeY; y++ {
			for x := 0; x < r.sizeX; x++ {
				v := src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y
				i := 2 * (y*r.sizeX + x)
				plane[i] = byte(v >> 8)
				plane[i+1] = byte(v)
			}
		}
		r.planes = [][]byte{plane}

	default:
		r.sizeC = 3
		r.ptype = Uint8
		r.planes = make([][]byte, 3)
		for c := range r.planes {
			r.planes[c] = make([]byte, r.sizeX*r.sizeY)
		}
		for y := 0; y < r.sizeY; y++ {
			for x := 0; x < r.sizeX; x++ {
				cr, cg, cb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				i := y*r.sizeX + x
				r.planes[0][i] = byte(cr >> 8)
				r.planes[1][i] = byte(cg >> 8)
				r.planes[2][i] = byte(cb >> 8)
			}
		}
	}
	return nil
}

// Close drops the decoded planes.
func (r *ImageReader) Close() error {
	r.planes = nil
	r.path = ""
	return nil
}

func (r *ImageReader) SizeX() int             { return r.sizeX }
func (r *ImageReader) SizeY() int             { return r.sizeY }
func (r *ImageReader) SizeZ() int             { return 1 }
func (r *ImageReader) SizeC() int             { return r.sizeC }
func (r *ImageReader) SizeT() int             { return 1 }
func (r *ImageReader) ImageCount() int        { return r.sizeC }
func (r *ImageReader) PixelType() PixelType   { return r.ptype }
func (r *ImageReader) IsLittleEndian() bool   { return false }
func (r *ImageReader) DimensionOrder() string { return "XYCZT" }

// OpenPlane returns a copy of channel plane no.
func (r *ImageReader) OpenPlane(no int) ([]byte, error) {
	if r.planes == nil {
		return nil, ErrNotOpen
	}
	if no < 0 || no >= len(r.planes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPlaneIndex, no, len(r.planes))
	}
	out := make([]byte, len(r.planes[no]))
	copy(out, r.planes[no])
	return out, nil
}

// OpenRegion crops plane no to region.
func (r *ImageReader) OpenRegion(no int, region image.Rectangle) ([]byte, error) {
	if r.planes == nil {
		return nil, ErrNotOpen
	}
	if no < 0 || no >= len(r.planes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPlaneIndex, no, len(r.planes))
	}
	return CropPlane(r.planes[no], r.sizeX, r.sizeY, r.ptype.BytesPerPixel(), region)
}

func (r *ImageReader) MetadataOptions() MetadataOptions { return r.meta }

func (r *ImageReader) SetMetadataOptions(opts MetadataOptions) { r.meta = opts }
