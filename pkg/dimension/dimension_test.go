package dimension

import (
	"errors"
	"testing"
)

func TestValidateOrder(t *testing.T) {
	for _, order := range []string{"XYZCT", "XYZTC", "XYCZT", "XYCTZ", "XYTZC", "XYTCZ"} {
		if err := ValidateOrder(order); err != nil {
			t.Errorf("Expected %s to be valid, got %v", order, err)
		}
	}
	for _, order := range []string{"", "XYZC", "YXZCT", "XYZZT", "XYZCA", "XYZCTT", "xyzct"} {
		if err := ValidateOrder(order); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("Expected ErrInvalidOrder for %q, got %v", order, err)
		}
	}
}

func TestIndexCoordsRoundTrip(t *testing.T) {
	sizeZ, sizeC, sizeT := 3, 2, 4
	for _, order := range []string{"XYZCT", "XYTCZ", "XYCTZ"} {
		seen := make(map[int]bool)
		for z := 0; z < sizeZ; z++ {
			for c := 0; c < sizeC; c++ {
				for tt := 0; tt < sizeT; tt++ {
					no, err := Index(order, sizeZ, sizeC, sizeT, z, c, tt)
					if err != nil {
						t.Fatalf("Index(%s) failed: %v", order, err)
					}
					if seen[no] {
						t.Fatalf("Index(%s) produced duplicate plane %d", order, no)
					}
					seen[no] = true

					gz, gc, gt, err := Coords(order, sizeZ, sizeC, sizeT, no)
					if err != nil {
						t.Fatalf("Coords(%s, %d) failed: %v", order, no, err)
					}
					if gz != z || gc != c || gt != tt {
						t.Errorf("Expected (%d,%d,%d) for %s plane %d, got (%d,%d,%d)",
							z, c, tt, order, no, gz, gc, gt)
					}
				}
			}
		}
		if len(seen) != sizeZ*sizeC*sizeT {
			t.Errorf("Expected %d planes for %s, got %d", sizeZ*sizeC*sizeT, order, len(seen))
		}
	}
}

func TestIndexFastestAxis(t *testing.T) {
	// Z varies fastest in XYZCT.
	no, _ := Index("XYZCT", 2, 3, 4, 1, 0, 0)
	if no != 1 {
		t.Errorf("Expected 1, got %d", no)
	}
	no, _ = Index("XYZCT", 2, 3, 4, 0, 1, 0)
	if no != 2 {
		t.Errorf("Expected 2, got %d", no)
	}
	no, _ = Index("XYTCZ", 2, 3, 4, 1, 0, 0)
	if no != 12 {
		t.Errorf("Expected 12, got %d", no)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	if _, err := Index("XYZCT", 1, 1, 1, 1, 0, 0); !errors.Is(err, ErrCoordinate) {
		t.Errorf("Expected ErrCoordinate, got %v", err)
	}
	if _, _, _, err := Coords("XYZCT", 2, 2, 2, 8); !errors.Is(err, ErrCoordinate) {
		t.Errorf("Expected ErrCoordinate, got %v", err)
	}
}

func TestRasterPosition(t *testing.T) {
	lengths := []int{2, 3, 4}
	for i := 0; i < Product(lengths); i++ {
		pos := Position(lengths, i)
		if got := Raster(lengths, pos); got != i {
			t.Errorf("Expected raster %d, got %d (pos %v)", i, got, pos)
		}
	}
	// last position varies fastest
	if pos := Position(lengths, 1); pos[2] != 1 || pos[0] != 0 {
		t.Errorf("Expected last position to vary fastest, got %v", pos)
	}
	if Product(nil) != 1 {
		t.Errorf("Expected empty product 1, got %d", Product(nil))
	}
}
