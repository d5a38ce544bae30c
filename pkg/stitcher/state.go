package stitcher

import (
	"fmt"
	"os"

	"filestitch/pkg/pattern"
)

// State is what a Stitcher needs to reopen a pattern without reading any
// delegate. Inferred patterns always use the default block delimiters.
type State struct {
	Pattern  string   `toml:"pattern"`
	Certain  bool     `toml:"certain"`
	Inferred bool     `toml:"inferred"`
	Info     FileInfo `toml:"info"`
}

// State snapshots the open pattern.
func (s *Stitcher) State() (State, error) {
	if !s.session.Open {
		return State{}, ErrNotOpen
	}
	return State{
		Pattern:  s.pattern.String(),
		Certain:  s.opts.certain,
		Inferred: s.inferred,
		Info:     s.layout.info,
	}, nil
}

// Restore opens the pattern recorded in st. The files are checked for
// existence but no delegate is opened until a plane is read.
func (s *Stitcher) Restore(st State) error {
	if s.session.Open {
		if err := s.Close(); err != nil {
			s.log.Warn("closing previous pattern", "err", err)
		}
	}
	p := pattern.Parse(st.Pattern, s.opts.patternOpts...)
	if st.Inferred {
		p = pattern.Parse(st.Pattern)
	}
	if !p.IsValid() {
		return fmt.Errorf("%w: %s", ErrPatternInvalid, p.ErrorMessage())
	}
	files := p.Files()
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("%w: %s", ErrFileNotFound, f)
		}
	}

	certain := s.opts.certain
	s.opts.certain = st.Certain
	l, g, err := s.build(p, files, st.Info)
	s.opts.certain = certain
	if err != nil {
		return err
	}
	s.commit(st.Pattern, p, g, l)
	s.inferred = st.Inferred
	s.log.Debug("restored pattern", "pattern", st.Pattern, "files", len(files))
	return nil
}
