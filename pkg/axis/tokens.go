package axis

import (
	"slices"
	"strings"
)

// Type is the imaging axis a pattern block is classified as.
type Type int

const (
	Unknown Type = iota
	Z
	T
	C
	S
)

func (t Type) String() string {
	switch t {
	case Z:
		return "Z"
	case T:
		return "T"
	case C:
		return "C"
	case S:
		return "S"
	}
	return "?"
}

// ParseType is the inverse of Type.String; it accepts either case.
func ParseType(s string) (Type, bool) {
	switch strings.ToUpper(s) {
	case "Z":
		return Z, true
	case "T":
		return T, true
	case "C":
		return C, true
	case "S":
		return S, true
	}
	return Unknown, false
}

// Tokens holds the label vocabulary used to recognise each axis from the
// text preceding a block. Labels are lower case.
type Tokens struct {
	Z []string
	T []string
	C []string
	S []string
}

// Lower returns a copy of tk with every label lower-cased, the form
// Classify compares against.
func (tk Tokens) Lower() Tokens {
	lower := func(in []string) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = strings.ToLower(s)
		}
		return out
	}
	return Tokens{Z: lower(tk.Z), T: lower(tk.T), C: lower(tk.C), S: lower(tk.S)}
}

// DefaultTokens returns a fresh copy of the built-in vocabulary.
func DefaultTokens() Tokens {
	return Tokens{
		Z: []string{"fp", "sec", "z", "zs", "focal", "focalplane"},
		T: []string{"t", "tl", "tp", "time"},
		C: []string{"c", "ch", "w", "wavelength"},
		S: []string{"s", "series", "sp"},
	}
}

// Classify returns the axis named by the trailing label of prefix, or
// Unknown. Trailing digits and the separators " -_." are ignored, then the
// trailing run of letters is compared case-insensitively, so "img_Z" and
// "_time-" both classify.
func (tk Tokens) Classify(prefix string) Type {
	label := Label(prefix)
	if label == "" {
		return Unknown
	}
	switch {
	case slices.Contains(tk.Z, label):
		return Z
	case slices.Contains(tk.T, label):
		return T
	case slices.Contains(tk.C, label):
		return C
	case slices.Contains(tk.S, label):
		return S
	}
	return Unknown
}

// Label extracts the lower-case trailing word of prefix.
func Label(prefix string) string {
	p := strings.ToLower(prefix)
	l := len(p) - 1
	for l >= 0 && strings.IndexByte("0123456789 -_.", p[l]) >= 0 {
		l--
	}
	f := l
	for f >= 0 && p[f] >= 'a' && p[f] <= 'z' {
		f--
	}
	return p[f+1 : l+1]
}
