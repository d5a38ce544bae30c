package stitcher

import "errors"

var (
	ErrPatternInvalid   = errors.New("file pattern is invalid")
	ErrFileNotFound     = errors.New("pattern names a missing file")
	ErrAxisMismatch     = errors.New("axis counts do not match file count")
	ErrNotOpen          = errors.New("stitcher is not open")
	ErrPlaneIndex       = errors.New("plane index out of range")
	ErrFileIndex        = errors.New("file index out of range")
	ErrSeriesIndex      = errors.New("series index out of range")
	ErrInconsistentFile = errors.New("file does not match the first file of the pattern")
)
