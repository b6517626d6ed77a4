package index

import (
	"errors"
	"fmt"
	"path"

	"github.com/gobwas/glob"
)

var ErrUnknownSymlinkPolicy = errors.New("unknown symlink policy")

// AppleDoubleGlob matches the "._" resource fork files macOS leaves on
// network shares.
const AppleDoubleGlob = "._*"

// Matcher tests relative paths against a set of glob patterns. A pattern
// matches when it matches either the whole path or its base name.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, p)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

func (m *Matcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	base := path.Base(rel)
	for _, g := range m.globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}
