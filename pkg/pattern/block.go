package pattern

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrBlockSyntax reports a malformed block or pattern.
var ErrBlockSyntax = errors.New("invalid block syntax")

// Block is one bracketed placeholder of a file pattern, such as <1-10:2>,
// <R,G,B> or <A-D>. A Block is immutable once parsed.
type Block struct {
	raw      string
	elements []string
	fixed    bool
	numeric  bool

	// first, last and step are nil for comma lists.
	first *big.Int
	last  *big.Int
	step  *big.Int
}

// ParseBlock parses raw, which must include the start and end delimiters.
func ParseBlock(raw string, opts ...Option) (*Block, error) {
	o := newOptions(opts)
	b := &Block{raw: raw}
	if err := b.explode(o); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Block) explode(o *options) error {
	raw := b.raw
	if len(raw) < len(o.start)+len(o.end) ||
		!strings.HasPrefix(raw, o.start) || !strings.HasSuffix(raw, o.end) {
		return fmt.Errorf("%w: %q is not delimited by %s%s", ErrBlockSyntax, raw, o.start, o.end)
	}
	body := raw[len(o.start) : len(raw)-len(o.end)]
	if strings.Contains(body, o.start) || strings.Contains(body, o.end) {
		return fmt.Errorf("%w: %q contains a nested delimiter", ErrBlockSyntax, raw)
	}

	if body == "" {
		b.elements = []string{""}
		b.fixed = true
		return nil
	}

	dash := strings.IndexByte(body, '-')
	if strings.Contains(body, ",") || dash < 0 {
		b.explodeList(body)
		return nil
	}
	return b.explodeRange(body, dash)
}

func (b *Block) explodeList(body string) {
	b.elements = strings.Split(body, ",")
	b.numeric = true
	b.fixed = true
	for _, e := range b.elements {
		if !isDigits(e) {
			b.numeric = false
		}
		if len(e) != len(b.elements[0]) {
			b.fixed = false
		}
	}
}

func (b *Block) explodeRange(body string, dash int) error {
	lo := body[:dash]
	hi := body[dash+1:]
	stepText := "1"
	if colon := strings.IndexByte(hi, ':'); colon >= 0 {
		stepText = hi[colon+1:]
		hi = hi[:colon]
	}

	if !isDigits(stepText) {
		return fmt.Errorf("%w: step %q in %q is not a positive integer", ErrBlockSyntax, stepText, b.raw)
	}
	step, _ := new(big.Int).SetString(stepText, 10)
	if step.Sign() <= 0 {
		return fmt.Errorf("%w: step %q in %q is not a positive integer", ErrBlockSyntax, stepText, b.raw)
	}

	switch {
	case isDigits(lo) && isDigits(hi):
		first, _ := new(big.Int).SetString(lo, 10)
		last, _ := new(big.Int).SetString(hi, 10)
		if first.Cmp(last) > 0 {
			return fmt.Errorf("%w: range %q ends before it starts", ErrBlockSyntax, b.raw)
		}
		// Pad only when both bounds are written at the same width or lo has
		// a leading zero, so <1-10> yields 1..10 and <01-10> yields 01..10.
		width := 0
		if len(lo) == len(hi) || (len(lo) > 1 && lo[0] == '0') {
			width = max(len(lo), len(hi))
		}
		b.first, b.last, b.step = first, last, step
		b.numeric = true
		for v := new(big.Int).Set(first); v.Cmp(last) <= 0; v.Add(v, step) {
			s := v.String()
			if len(s) < width {
				s = strings.Repeat("0", width-len(s)) + s
			}
			b.elements = append(b.elements, s)
		}

	case isLetter(lo) && isLetter(hi) && isUpper(lo[0]) == isUpper(hi[0]):
		base := byte('a')
		if isUpper(lo[0]) {
			base = 'A'
		}
		first := int64(lo[0] - base)
		last := int64(hi[0] - base)
		if first > last {
			return fmt.Errorf("%w: range %q ends before it starts", ErrBlockSyntax, b.raw)
		}
		b.first, b.last, b.step = big.NewInt(first), big.NewInt(last), step
		// a stride past the alphabet yields lo alone
		stride := int64(26)
		if step.IsInt64() && step.Int64() < stride {
			stride = step.Int64()
		}
		for v := first; v <= last; v += stride {
			b.elements = append(b.elements, string(rune(base)+rune(v)))
		}

	default:
		return fmt.Errorf("%w: bounds of %q must both be numbers or both be letters", ErrBlockSyntax, b.raw)
	}

	b.fixed = true
	for _, e := range b.elements {
		if len(e) != len(b.elements[0]) {
			b.fixed = false
			break
		}
	}
	return nil
}

// String returns the block exactly as written.
func (b *Block) String() string { return b.raw }

// Elements returns the enumerated values in order. The slice is shared;
// callers must not modify it.
func (b *Block) Elements() []string { return b.elements }

// Count is len(Elements()).
func (b *Block) Count() int { return len(b.elements) }

// IsFixed reports whether every element has the same length.
func (b *Block) IsFixed() bool { return b.fixed }

// IsNumeric reports whether every element is a base-10 digit string.
func (b *Block) IsNumeric() bool { return b.numeric }

// IsRange reports whether the block is an arithmetic range.
func (b *Block) IsRange() bool { return b.first != nil }

// First returns the first range bound, or nil for lists.
func (b *Block) First() *big.Int { return copyInt(b.first) }

// Last returns the last range bound, or nil for lists.
func (b *Block) Last() *big.Int { return copyInt(b.last) }

// Step returns the range step, or nil for lists.
func (b *Block) Step() *big.Int { return copyInt(b.step) }

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isLetter(s string) bool {
	return len(s) == 1 && (isUpper(s[0]) || (s[0] >= 'a' && s[0] <= 'z'))
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
