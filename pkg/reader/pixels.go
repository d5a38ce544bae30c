package reader

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeFloat64 converts raw plane bytes into one float64 per pixel.
func DecodeFloat64(data []byte, pt PixelType, littleEndian bool) ([]float64, error) {
	bpp := pt.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %v", ErrPixelType, pt)
	}
	if len(data)%bpp != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrPixelType, len(data), bpp)
	}

	var order binary.ByteOrder = binary.BigEndian
	if littleEndian {
		order = binary.LittleEndian
	}

	n := len(data) / bpp
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		b := data[i*bpp : (i+1)*bpp]
		switch pt {
		case Uint8:
			out[i] = float64(b[0])
		case Int8:
			out[i] = float64(int8(b[0]))
		case Uint16:
			out[i] = float64(order.Uint16(b))
		case Int16:
			out[i] = float64(int16(order.Uint16(b)))
		case Uint32:
			out[i] = float64(order.Uint32(b))
		case Int32:
			out[i] = float64(int32(order.Uint32(b)))
		case Float32:
			out[i] = float64(math.Float32frombits(order.Uint32(b)))
		case Float64:
			out[i] = math.Float64frombits(order.Uint64(b))
		}
	}
	return out, nil
}
