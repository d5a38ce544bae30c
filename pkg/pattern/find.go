package pattern

import (
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"filestitch/pkg/axis"
)

type span struct{ start, end int }

// FindPattern infers the pattern that name belongs to, given the sibling
// names of its directory. Digit runs that vary across siblings become range
// blocks; a fixed-width run whose digits vary independently is split into
// several ranges. Single letters that vary (for example channel codes R, G
// and B) become letter blocks. Runs whose preceding label classifies as one
// of the exclude axes are kept literal.
//
// dir is prepended to the result. FindPattern returns "" when name has a
// varying run that cannot be expressed as constant-step ranges, or when name
// is not among names.
func FindPattern(name, dir string, names []string, exclude ...axis.Type) string {
	tokens := axis.DefaultTokens()
	ext := strings.LastIndexByte(name, '.')
	if ext < 0 {
		ext = len(name)
	}

	var sb strings.Builder
	sb.WriteString(dirPrefix(dir))
	last := 0
	for _, r := range digitRuns(name) {
		label := name[last:r.start]
		if slices.Contains(exclude, tokens.Classify(label)) {
			writeLiteral(&sb, name, names, last, r.start, ext)
			sb.WriteString(name[r.start:r.end])
			last = r.end
			continue
		}
		writeLiteral(&sb, name, names, last, r.start, ext)
		last = r.end

		pre, post := name[:r.start], name[r.end:]
		list := matchNumbers(names, pre, post)
		if len(list) == 0 {
			return ""
		}
		if len(list) == 1 {
			// constant in this directory
			sb.WriteString(name[r.start:r.end])
			continue
		}

		fixed := true
		for _, s := range list {
			if len(s) != len(name) {
				fixed = false
				break
			}
		}

		if !fixed {
			// a variable-width run holds a single numbering
			nums := make([]*big.Int, 0, len(list))
			for _, s := range list {
				v, _ := new(big.Int).SetString(s[len(pre):len(s)-len(post)], 10)
				nums = append(nums, v)
			}
			sortInts(nums)
			b, ok := rangeBlock(nums, 0)
			if !ok {
				return ""
			}
			sb.WriteString(b)
			continue
		}

		width := r.end - r.start
		same := make([]bool, width)
		for j := range same {
			same[j] = true
			jx := r.start + j
			for _, s := range list {
				if s[jx] != name[jx] {
					same[j] = false
					break
				}
			}
		}
		for j := 0; j < width; {
			jx := r.start + j
			if same[j] {
				sb.WriteByte(name[jx])
				j++
				continue
			}
			for j < width && !same[j] {
				j++
			}
			sub, ok := subPattern(name, names, jx, r.start+j, "")
			switch {
			case ok:
				sb.WriteString(sub)
			case isSeriesMarker(name, r.start):
				sb.WriteString(name[jx : r.start+j])
			default:
				return ""
			}
		}
	}
	writeLiteral(&sb, name, names, last, len(name), ext)
	return sb.String()
}

// FindPatternFromFile lists the directory of path and infers the pattern
// path belongs to. When no varying block is found, path itself is returned.
func FindPatternFromFile(path string) (string, error) {
	dir, base := filepath.Split(path)
	listDir := dir
	if listDir == "" {
		listDir = "."
	}
	entries, err := os.ReadDir(listDir)
	if err != nil {
		return path, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	p := FindPattern(base, dir, names)
	if p == "" {
		return path, nil
	}
	return p, nil
}

// FindSeriesPatterns partitions names into groups that share a series label
// and returns one pattern per group, sorted. Only groups whose file
// extension matches base's and whose combined pattern covers base are
// returned. base is the full path of a reference file in dir.
func FindSeriesPatterns(base, dir string, names []string) []string {
	baseSuffix := extensionOf(base)

	var patterns []string
	for _, name := range names {
		p := FindPattern(name, dir, names, axis.S)
		if p == "" || slices.Contains(patterns, p) {
			continue
		}
		if extensionOf(p) != baseSuffix {
			continue
		}
		if _, err := os.Stat(p); err == nil && p != base {
			continue
		}
		all := FindPattern(name, dir, names)
		if all == "" || !slices.Contains(Parse(all).Files(), base) {
			continue
		}
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// extensionOf returns everything after the first dot of the last path
// element, or "".
func extensionOf(p string) string {
	p = p[strings.LastIndexByte(p, filepath.Separator)+1:]
	dot := strings.IndexByte(p, '.')
	if dot < 0 {
		return ""
	}
	return p[dot+1:]
}

func dirPrefix(dir string) string {
	if dir == "" || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

func digitRuns(name string) []span {
	var runs []span
	for i := 0; i < len(name); {
		if !isDigit(name[i]) {
			i++
			continue
		}
		j := i
		for j < len(name) && isDigit(name[j]) {
			j++
		}
		runs = append(runs, span{i, j})
		i = j
	}
	return runs
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return isUpper(c) || (c >= 'a' && c <= 'z') }

// isSeriesMarker reports whether the run at start is labelled s or e, where
// an irregular numbering is tolerated and kept literal.
func isSeriesMarker(name string, start int) bool {
	if start == 0 {
		return false
	}
	switch name[start-1] {
	case 's', 'S', 'e', 'E':
		return true
	}
	return false
}

// matchNumbers returns the names that equal pre + digits + post.
func matchNumbers(names []string, pre, post string) []string {
	var out []string
	for _, s := range names {
		if len(s) <= len(pre)+len(post) || !strings.HasPrefix(s, pre) || !strings.HasSuffix(s, post) {
			continue
		}
		if isDigits(s[len(pre) : len(s)-len(post)]) {
			out = append(out, s)
		}
	}
	return out
}

// subPattern breaks name[ndx:end] into consecutive fixed-width ranges,
// preferring the widest leading range.
func subPattern(name string, names []string, ndx, end int, acc string) (string, bool) {
	if ndx == end {
		return acc, true
	}
	for i := end - ndx; i >= 1; i-- {
		pre, post := name[:ndx], name[ndx+i:]
		var nums []*big.Int
		for _, s := range names {
			if len(s) != len(name) || !strings.HasPrefix(s, pre) || !strings.HasSuffix(s, post) {
				continue
			}
			mid := s[ndx : ndx+i]
			if !isDigits(mid) {
				continue
			}
			v, _ := new(big.Int).SetString(mid, 10)
			nums = append(nums, v)
		}
		sortInts(nums)
		b, ok := rangeBlock(nums, i)
		if !ok {
			continue
		}
		if p, ok := subPattern(name, names, ndx+i, end, acc+b); ok {
			return p, true
		}
	}
	return "", false
}

func sortInts(nums []*big.Int) {
	sort.Slice(nums, func(i, j int) bool { return nums[i].Cmp(nums[j]) < 0 })
}

// rangeBlock renders sorted nums as a constant-step range block, zero padded
// to width when width > 0.
func rangeBlock(nums []*big.Int, width int) (string, bool) {
	if len(nums) < 2 {
		return "", false
	}
	step := new(big.Int).Sub(nums[1], nums[0])
	if step.Sign() <= 0 {
		return "", false
	}
	diff := new(big.Int)
	for i := 2; i < len(nums); i++ {
		if diff.Sub(nums[i], nums[i-1]).Cmp(step) != 0 {
			return "", false
		}
	}

	pad := func(s string) string {
		if len(s) < width {
			return strings.Repeat("0", width-len(s)) + s
		}
		return s
	}
	var sb strings.Builder
	sb.WriteString(BlockStart)
	sb.WriteString(pad(nums[0].String()))
	sb.WriteByte('-')
	sb.WriteString(pad(nums[len(nums)-1].String()))
	if step.Cmp(big.NewInt(1)) != 0 {
		sb.WriteByte(':')
		sb.WriteString(step.String())
	}
	sb.WriteString(BlockEnd)
	return sb.String(), true
}

// writeLiteral copies name[from:to], replacing each letter before ext that
// varies across otherwise identical siblings with a letter block.
func writeLiteral(sb *strings.Builder, name string, names []string, from, to, ext int) {
	for j := from; j < to; j++ {
		c := name[j]
		if j >= ext || !isAlpha(c) {
			sb.WriteByte(c)
			continue
		}
		letters := varyingLetters(name, names, j)
		if len(letters) < 2 {
			sb.WriteByte(c)
			continue
		}
		sb.WriteString(letterBlock(letters))
	}
}

func varyingLetters(name string, names []string, j int) []byte {
	pre, post := name[:j], name[j+1:]
	seen := make(map[byte]bool)
	var out []byte
	for _, s := range names {
		if len(s) != len(name) || !isAlpha(s[j]) || seen[s[j]] {
			continue
		}
		if strings.HasPrefix(s, pre) && strings.HasSuffix(s, post) {
			seen[s[j]] = true
			out = append(out, s[j])
		}
	}
	slices.Sort(out)
	return out
}

func letterBlock(letters []byte) string {
	contiguous := true
	for i := 1; i < len(letters); i++ {
		if letters[i] != letters[i-1]+1 || isUpper(letters[i]) != isUpper(letters[0]) {
			contiguous = false
			break
		}
	}
	if contiguous {
		return BlockStart + string(letters[0]) + "-" + string(letters[len(letters)-1]) + BlockEnd
	}
	parts := make([]string, len(letters))
	for i, c := range letters {
		parts[i] = string(c)
	}
	return BlockStart + strings.Join(parts, ",") + BlockEnd
}
