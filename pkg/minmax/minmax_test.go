package minmax

import (
	"errors"
	"image"
	"math"
	"testing"

	"filestitch/pkg/reader"
)

// rampReader has 2x1 uint8 planes in XYZCT with Z=2 C=2; plane n holds
// n*10 and n*10+5.
type rampReader struct {
	open bool
	meta reader.MetadataOptions
}

func (r *rampReader) Open(string) error                           { r.open = true; return nil }
func (r *rampReader) Close() error                                { r.open = false; return nil }
func (r *rampReader) SizeX() int                                  { return 2 }
func (r *rampReader) SizeY() int                                  { return 1 }
func (r *rampReader) SizeZ() int                                  { return 2 }
func (r *rampReader) SizeC() int                                  { return 2 }
func (r *rampReader) SizeT() int                                  { return 1 }
func (r *rampReader) ImageCount() int                             { return 4 }
func (r *rampReader) PixelType() reader.PixelType                 { return reader.Uint8 }
func (r *rampReader) IsLittleEndian() bool                        { return false }
func (r *rampReader) DimensionOrder() string                      { return "XYZCT" }
func (r *rampReader) MetadataOptions() reader.MetadataOptions     { return r.meta }
func (r *rampReader) SetMetadataOptions(m reader.MetadataOptions) { r.meta = m }

func (r *rampReader) OpenPlane(no int) ([]byte, error) {
	if no < 0 || no >= 4 {
		return nil, reader.ErrPlaneIndex
	}
	return []byte{byte(no * 10), byte(no*10 + 5)}, nil
}

func (r *rampReader) OpenRegion(no int, region image.Rectangle) ([]byte, error) {
	plane, err := r.OpenPlane(no)
	if err != nil {
		return nil, err
	}
	return reader.CropPlane(plane, 2, 1, 1, region)
}

func TestPlaneExtrema(t *testing.T) {
	c := New(&rampReader{})
	if err := c.Open("ramp"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	if _, err := c.OpenPlane(0); err != nil {
		t.Fatalf("OpenPlane failed: %v", err)
	}
	lo, hi, ok := c.PlaneMinMax(0)
	if !ok || lo != 0 || hi != 5 {
		t.Errorf("Expected plane 0 range [0 5], got [%v %v] ok=%v", lo, hi, ok)
	}
	if _, _, ok := c.PlaneMinMax(1); ok {
		t.Errorf("Expected plane 1 to be unknown")
	}
	if _, err := c.ChannelGlobalMin(0); !errors.Is(err, ErrNotPopulated) {
		t.Errorf("Expected ErrNotPopulated before every plane is read, got %v", err)
	}

	if _, err := c.OpenPlane(1); err != nil {
		t.Fatalf("OpenPlane failed: %v", err)
	}
	gmin, err := c.ChannelGlobalMin(0)
	if err != nil || gmin != 0 {
		t.Errorf("Expected global min 0, got %v (%v)", gmin, err)
	}
	gmax, err := c.ChannelGlobalMax(0)
	if err != nil || gmax != 15 {
		t.Errorf("Expected global max 15, got %v (%v)", gmax, err)
	}

	// a second read does not count the plane twice
	c.OpenPlane(0)
	if _, err := c.ChannelGlobalMin(1); !errors.Is(err, ErrNotPopulated) {
		t.Errorf("Expected channel 1 to stay unpopulated, got %v", err)
	}
}

func TestRegionWidensKnownRange(t *testing.T) {
	c := New(&rampReader{})
	if err := c.Open("ramp"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	if v, _ := c.ChannelKnownMin(1); !math.IsNaN(v) {
		t.Errorf("Expected NaN before any read, got %v", v)
	}
	if _, err := c.OpenRegion(3, image.Rect(1, 0, 2, 1)); err != nil {
		t.Fatalf("OpenRegion failed: %v", err)
	}
	lo, _ := c.ChannelKnownMin(1)
	hi, _ := c.ChannelKnownMax(1)
	if lo != 35 || hi != 35 {
		t.Errorf("Expected known range [35 35], got [%v %v]", lo, hi)
	}
	if _, _, ok := c.PlaneMinMax(3); ok {
		t.Errorf("Expected a region read to leave the plane unknown")
	}
	if _, err := c.ChannelKnownMin(2); !errors.Is(err, ErrChannel) {
		t.Errorf("Expected ErrChannel, got %v", err)
	}
}

func TestChannelStats(t *testing.T) {
	c := New(&rampReader{})
	if err := c.Open("ramp"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	if _, _, err := c.ChannelStats(0); !errors.Is(err, ErrNotPopulated) {
		t.Errorf("Expected ErrNotPopulated with no planes, got %v", err)
	}
	for no := 0; no < c.ImageCount(); no++ {
		if _, err := c.OpenPlane(no); err != nil {
			t.Fatalf("OpenPlane(%d) failed: %v", no, err)
		}
	}

	// channel 0 holds 0, 5, 10, 15
	mean, std, err := c.ChannelStats(0)
	if err != nil {
		t.Fatalf("ChannelStats failed: %v", err)
	}
	if math.Abs(mean-7.5) > 1e-9 {
		t.Errorf("Expected mean 7.5, got %v", mean)
	}
	if want := math.Sqrt(125.0 / 3); math.Abs(std-want) > 1e-9 {
		t.Errorf("Expected std %v, got %v", want, std)
	}
	if ps, ok := c.Plane(2); !ok || ps.Mean != 22.5 || ps.Pixels != 2 {
		t.Errorf("Expected plane 2 mean 22.5 over 2 pixels, got %+v", ps)
	}
}
