// Package pattern parses and expands file-series patterns such as
// "img_z<0-9>_c<R,G,B>.tif", and infers such patterns back from a directory
// listing.
//
// A pattern alternates literal text with bracketed blocks. Expansion takes
// the cross product of every block's elements, with the rightmost block
// varying fastest. A pattern without any valid block is a regex pattern: it
// names either one literal file or, failing that, a regular expression
// matched against the entries of its directory.
package pattern

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Pattern is a parsed file pattern. It is immutable once parsed; derived
// values are computed on first use.
type Pattern struct {
	text     string
	opts     *options
	prefixes []string
	blocks   []*Block
	suffix   string

	regex bool
	err   error

	files []string
}

// Parse parses text. Parse never fails; syntax problems are reported by
// IsValid, ErrorMessage and Err, and an invalid pattern falls back to regex
// mode so that Files still yields the literal interpretation.
func Parse(text string, opts ...Option) *Pattern {
	o := newOptions(opts)
	if o.dir != "" && !filepath.IsAbs(text) {
		text = dirPrefix(o.dir) + text
	}
	p := &Pattern{text: text, opts: o}
	p.parse()
	return p
}

func (p *Pattern) parse() {
	starts := indexAll(p.text, p.opts.start)
	ends := indexAll(p.text, p.opts.end)

	if len(starts) != len(ends) {
		p.fail(fmt.Errorf("%w: mismatched block markers in %q", ErrBlockSyntax, p.text))
		return
	}
	for i := range starts {
		if ends[i] < starts[i] {
			p.fail(fmt.Errorf("%w: block end before start at offset %d", ErrBlockSyntax, ends[i]))
			return
		}
		if i+1 < len(starts) && starts[i+1] < ends[i] {
			p.fail(fmt.Errorf("%w: nested block start at offset %d", ErrBlockSyntax, starts[i+1]))
			return
		}
	}
	if len(starts) == 0 {
		p.regex = true
		p.suffix = p.text
		return
	}

	last := 0
	for i := range starts {
		end := ends[i] + len(p.opts.end)
		b, err := ParseBlock(p.text[starts[i]:end], func(o *options) { *o = *p.opts })
		if err != nil {
			p.fail(err)
			return
		}
		p.prefixes = append(p.prefixes, p.text[last:starts[i]])
		p.blocks = append(p.blocks, b)
		last = end
	}
	p.suffix = p.text[last:]
}

func (p *Pattern) fail(err error) {
	p.err = err
	p.regex = true
	p.prefixes = nil
	p.blocks = nil
	p.suffix = p.text
}

func indexAll(s, sep string) []int {
	var out []int
	for off := 0; ; {
		i := strings.Index(s[off:], sep)
		if i < 0 {
			return out
		}
		out = append(out, off+i)
		off += i + len(sep)
	}
}

// String returns the pattern text. Parse(p.String()) expands to the same files.
func (p *Pattern) String() string { return p.text }

// IsValid reports whether the pattern parsed without syntax errors.
func (p *Pattern) IsValid() bool { return p.err == nil }

// Err returns the syntax error, or nil.
func (p *Pattern) Err() error { return p.err }

// ErrorMessage returns the syntax error text, or "" for a valid pattern.
func (p *Pattern) ErrorMessage() string {
	if p.err == nil {
		return ""
	}
	return p.err.Error()
}

// IsRegex reports whether the pattern has no blocks and is treated as a
// literal file name or a directory regex.
func (p *Pattern) IsRegex() bool { return p.regex }

// Prefixes returns the literal text preceding each block.
func (p *Pattern) Prefixes() []string { return p.prefixes }

// Prefix returns the literal text preceding block i.
func (p *Pattern) Prefix(i int) string { return p.prefixes[i] }

// Blocks returns the parsed blocks in pattern order.
func (p *Pattern) Blocks() []*Block { return p.blocks }

// Block returns block i.
func (p *Pattern) Block(i int) *Block { return p.blocks[i] }

// Suffix returns the literal text after the last block.
func (p *Pattern) Suffix() string { return p.suffix }

// Count returns the cardinality of every block.
func (p *Pattern) Count() []int {
	out := make([]int, len(p.blocks))
	for i, b := range p.blocks {
		out[i] = b.Count()
	}
	return out
}

// Elements returns the elements of every block.
func (p *Pattern) Elements() [][]string {
	out := make([][]string, len(p.blocks))
	for i, b := range p.blocks {
		out[i] = b.Elements()
	}
	return out
}

// First returns each block's first bound (nil entries for lists).
func (p *Pattern) First() []*big.Int {
	out := make([]*big.Int, len(p.blocks))
	for i, b := range p.blocks {
		out[i] = b.First()
	}
	return out
}

// Last returns each block's last bound (nil entries for lists).
func (p *Pattern) Last() []*big.Int {
	out := make([]*big.Int, len(p.blocks))
	for i, b := range p.blocks {
		out[i] = b.Last()
	}
	return out
}

// Step returns each block's step (nil entries for lists).
func (p *Pattern) Step() []*big.Int {
	out := make([]*big.Int, len(p.blocks))
	for i, b := range p.blocks {
		out[i] = b.Step()
	}
	return out
}

// Files expands the pattern. For block patterns the result has
// product(Count()) entries, first block outermost. The slice is cached and
// shared; callers must not modify it.
func (p *Pattern) Files() []string {
	if p.files != nil {
		return p.files
	}
	if p.regex {
		p.files = p.regexFiles()
		return p.files
	}

	n := 1
	for _, b := range p.blocks {
		n *= b.Count()
	}
	files := make([]string, 0, n)
	var build func(head string, ndx int)
	build = func(head string, ndx int) {
		if ndx == len(p.blocks) {
			files = append(files, head+p.suffix)
			return
		}
		head += p.prefixes[ndx]
		for _, e := range p.blocks[ndx].Elements() {
			build(head+e, ndx+1)
		}
	}
	build("", 0)
	p.files = files
	return files
}

func (p *Pattern) regexFiles() []string {
	if _, err := os.Stat(p.text); err == nil {
		return []string{p.text}
	}

	dir, base := filepath.Split(p.text)
	re, err := regexp.Compile("^(?:" + base + ")$")
	if err != nil {
		return []string{p.text}
	}
	listDir := dir
	if listDir == "" {
		listDir = "."
	}
	entries, err := os.ReadDir(listDir)
	if err != nil {
		return []string{p.text}
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && re.MatchString(e.Name()) {
			files = append(files, dir+e.Name())
		}
	}
	if len(files) == 0 {
		return []string{p.text}
	}
	return files
}
