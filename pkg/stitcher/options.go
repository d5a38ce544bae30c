package stitcher

import (
	"log/slog"

	"filestitch/pkg/axis"
	"filestitch/pkg/pattern"
	"filestitch/pkg/reader"
)

// DefaultPoolSize bounds the number of delegate readers kept open at once.
const DefaultPoolSize = 128

// Option configures a Stitcher.
type Option func(*options)

type options struct {
	factory     reader.Factory
	poolSize    int
	certain     bool
	patternIDs  bool
	axisOpts    []axis.Option
	patternOpts []pattern.Option
	logger      *slog.Logger
}

func defaultOptions() *options {
	return &options{
		factory:  reader.DefaultRegistry().Factory(),
		poolSize: DefaultPoolSize,
		certain:  true,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// WithFactory sets how delegate readers are created for each file.
func WithFactory(f reader.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithPoolSize sets the number of delegate readers kept open. Values below 1
// are ignored.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.poolSize = n
		}
	}
}

// WithOrderCertain says whether the delegates' declared dimension order is
// trusted over the positional evidence of the pattern blocks.
func WithOrderCertain(certain bool) Option {
	return func(o *options) {
		o.certain = certain
	}
}

// WithPatternIDs makes Open treat every id as a pattern. By default an id
// naming an existing file is widened to the pattern inferred from its
// directory.
func WithPatternIDs(on bool) Option {
	return func(o *options) {
		o.patternIDs = on
	}
}

// WithAxisOptions passes options through to the axis guesser.
func WithAxisOptions(opts ...axis.Option) Option {
	return func(o *options) {
		o.axisOpts = append(o.axisOpts, opts...)
	}
}

// WithPatternOptions passes options through to the pattern parser.
func WithPatternOptions(opts ...pattern.Option) Option {
	return func(o *options) {
		o.patternOpts = append(o.patternOpts, opts...)
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
