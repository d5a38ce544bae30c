// Package models holds the plain state records shared inside filestitch.
package models

// Session is the mutable cursor state of one reader instance. It is owned by
// exactly one reader and never shared.
type Session struct {
	// ID is the pattern or file name the reader was opened with.
	ID string

	// Pattern is the resolved pattern text.
	Pattern string

	// Series is the currently selected series.
	Series int

	// Open is true between a successful Open and Close.
	Open bool
}

// Reset returns the session to its closed state.
func (s *Session) Reset() {
	*s = Session{}
}

// PlaneRef locates one plane of one file of a stitched series.
type PlaneRef struct {
	// File indexes the full expanded file list of the pattern.
	File int

	// Plane is the plane index inside that file.
	Plane int
}
