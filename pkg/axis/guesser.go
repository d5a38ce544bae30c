// Package axis classifies the blocks of a file pattern as focal plane (Z),
// time (T), channel (C) or series (S) axes.
//
// Classification works in three passes. First each block's preceding label
// is matched against the token vocabulary, and RGB letter lists are taken as
// channels. Then, unless the caller is certain of the per-file dimension
// order, a lone Z (or T) block on a file that already has several Z (or T)
// planes swaps Z and T in the order. Finally unresolved blocks are assigned
// by the fill policy.
package axis

import (
	"errors"
	"fmt"
	"strings"

	"filestitch/pkg/dimension"
)

// ErrFillOrder reports an invalid fill policy.
var ErrFillOrder = errors.New("invalid fill order")

// Layout is the view of a file pattern the guesser needs.
type Layout interface {
	Prefixes() []string
	Elements() [][]string
	Suffix() string
}

// Option configures a guess.
type Option func(*options)

type options struct {
	tokens Tokens
	fill   []Type
}

// WithTokens replaces the label vocabulary. Labels match case-insensitively.
func WithTokens(tk Tokens) Option {
	return func(o *options) { o.tokens = tk.Lower() }
}

// WithFillOrder sets the priority in which unresolved blocks claim an axis
// whose per-file size is 1. The default is Z, T, C.
func WithFillOrder(order ...Type) Option {
	return func(o *options) { o.fill = order }
}

// Guess is the immutable result of classifying a pattern.
type Guess struct {
	order    string
	newOrder string
	axes     []Type
	counts   []int
	sizeZ    int
	sizeT    int
	sizeC    int
	swapped  bool
	certain  bool
}

// New classifies every block of l. order is the per-file dimension order,
// sizeZ/T/C are the per-file sizes, and certain says whether order is
// trusted over the positional evidence of the blocks.
func New(l Layout, order string, sizeZ, sizeT, sizeC int, certain bool, opts ...Option) (*Guess, error) {
	if err := dimension.ValidateOrder(order); err != nil {
		return nil, err
	}
	o := &options{tokens: DefaultTokens(), fill: []Type{Z, T, C}}
	for _, opt := range opts {
		opt(o)
	}
	if err := validateFill(o.fill); err != nil {
		return nil, err
	}

	prefixes := l.Prefixes()
	elements := l.Elements()
	g := &Guess{
		order:    order,
		newOrder: order,
		axes:     make([]Type, len(prefixes)),
		counts:   make([]int, len(prefixes)),
		sizeZ:    sizeZ,
		sizeT:    sizeT,
		sizeC:    sizeC,
		certain:  certain,
	}

	found := make(map[Type]bool)
	for i, prefix := range prefixes {
		g.counts[i] = len(elements[i])
		a := o.tokens.Classify(prefix)
		if a == Unknown && isRGB(elements[i]) {
			a = C
		}
		if a == Unknown && i == len(prefixes)-1 && isPICChannels(l.Suffix(), elements[i]) {
			a = C
		}
		g.axes[i] = a
		found[a] = true
	}

	if !certain {
		if (found[Z] && !found[T] && g.sizeZ > 1 && g.sizeT == 1) ||
			(found[T] && !found[Z] && g.sizeT > 1 && g.sizeZ == 1) {
			ch := []byte(g.newOrder)
			iz := strings.IndexByte(g.newOrder, 'Z')
			it := strings.IndexByte(g.newOrder, 'T')
			ch[iz], ch[it] = 'T', 'Z'
			g.newOrder = string(ch)
			g.sizeZ, g.sizeT = g.sizeT, g.sizeZ
			g.swapped = true
		}
	}

	canBe := map[Type]bool{
		Z: !found[Z] && g.sizeZ == 1,
		T: !found[T] && g.sizeT == 1,
		C: !found[C] && g.sizeC == 1,
	}
	fallback, _ := ParseType(g.newOrder[4:])
	for i := range g.axes {
		if g.axes[i] != Unknown {
			continue
		}
		g.axes[i] = fallback
		for _, a := range o.fill {
			if canBe[a] {
				g.axes[i] = a
				canBe[a] = false
				break
			}
		}
	}
	return g, nil
}

func validateFill(fill []Type) error {
	seen := make(map[Type]bool)
	for _, a := range fill {
		if (a != Z && a != T && a != C) || seen[a] {
			return fmt.Errorf("%w: %v", ErrFillOrder, fill)
		}
		seen[a] = true
	}
	return nil
}

// isRGB reports whether elements are two or three distinct letters drawn
// from r, g and b.
func isRGB(elements []string) bool {
	if len(elements) < 2 || len(elements) > 3 {
		return false
	}
	seen := make(map[string]bool)
	for _, e := range elements {
		e = strings.ToLower(e)
		if (e != "r" && e != "g" && e != "b") || seen[e] {
			return false
		}
		seen[e] = true
	}
	return true
}

// isPICChannels matches the Bio-Rad convention of one channel per .pic
// file, numbered 1-2 or 1-3 in the last block.
func isPICChannels(suffix string, elements []string) bool {
	if !strings.EqualFold(suffix, ".pic") {
		return false
	}
	want := []string{"1", "2", "3"}
	if len(elements) < 2 || len(elements) > 3 {
		return false
	}
	for i, e := range elements {
		if strings.TrimLeft(e, "0") != want[i] {
			return false
		}
	}
	return true
}

// AdjustedOrder is the dimension order after any Z/T swap.
func (g *Guess) AdjustedOrder() string { return g.newOrder }

// OriginalOrder is the order passed to New.
func (g *Guess) OriginalOrder() string { return g.order }

// Swapped reports whether Z and T were exchanged.
func (g *Guess) Swapped() bool { return g.swapped }

// IsCertain reports the certain flag passed to New.
func (g *Guess) IsCertain() bool { return g.certain }

// SizeZ, SizeT and SizeC are the per-file sizes after any swap.
func (g *Guess) SizeZ() int { return g.sizeZ }
func (g *Guess) SizeT() int { return g.sizeT }
func (g *Guess) SizeC() int { return g.sizeC }

// AxisTypes returns the axis of every block, parallel to the pattern's blocks.
func (g *Guess) AxisTypes() []Type {
	out := make([]Type, len(g.axes))
	copy(out, g.axes)
	return out
}

// AxisCount returns the number of positions the blocks of type t enumerate:
// the product of their cardinalities, or 1 when no block has type t.
func (g *Guess) AxisCount(t Type) int {
	n := 1
	for i, a := range g.axes {
		if a == t {
			n *= g.counts[i]
		}
	}
	return n
}

// BlocksOf returns the indices of the blocks classified as t, in pattern order.
func (g *Guess) BlocksOf(t Type) []int {
	var out []int
	for i, a := range g.axes {
		if a == t {
			out = append(out, i)
		}
	}
	return out
}
