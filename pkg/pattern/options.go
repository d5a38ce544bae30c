package pattern

// Default block delimiters.
const (
	BlockStart = "<"
	BlockEnd   = ">"
)

// Option configures block and pattern parsing.
type Option func(*options)

type options struct {
	start string
	end   string
	dir   string
}

func newOptions(opts []Option) *options {
	o := &options{start: BlockStart, end: BlockEnd}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDelimiters replaces the block start and end markers. Empty or equal
// markers are ignored.
func WithDelimiters(start, end string) Option {
	return func(o *options) {
		if start != "" && end != "" && start != end {
			o.start = start
			o.end = end
		}
	}
}

// WithDir resolves a relative pattern against dir. Absolute patterns are
// left alone.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}
