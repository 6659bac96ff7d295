package model

import (
	"strings"

	"github.com/verustcode/adreport/pkg/errors"
)

// Layout is a named visual template applied to every section
type Layout string

const (
	LayoutStandard     Layout = "standard"
	LayoutModern       Layout = "modern"
	LayoutProfessional Layout = "professional"
	LayoutCompact      Layout = "compact"
)

// DefaultLayout is used when no layout is configured
const DefaultLayout = LayoutProfessional

// HeadingPolicy controls which headings survive rendering
type HeadingPolicy struct {
	// GenerateHeading prepends "N. Title" in place of stripped level-1 headings
	GenerateHeading bool
	// MaxLevel is the deepest heading level kept; deeper headings are dropped
	MaxLevel int
}

// AllLayouts returns the supported layouts
func AllLayouts() []Layout {
	return []Layout{LayoutStandard, LayoutModern, LayoutProfessional, LayoutCompact}
}

// IsValid reports whether l is a supported layout
func (l Layout) IsValid() bool {
	switch l {
	case LayoutStandard, LayoutModern, LayoutProfessional, LayoutCompact:
		return true
	}
	return false
}

// HeadingPolicy returns the heading policy of the layout.
// Level-1 headings are always stripped.
func (l Layout) HeadingPolicy() HeadingPolicy {
	switch l {
	case LayoutStandard, LayoutCompact:
		return HeadingPolicy{GenerateHeading: true, MaxLevel: 3}
	default:
		return HeadingPolicy{GenerateHeading: false, MaxLevel: 6}
	}
}

// ParseLayout parses a layout name, case-insensitively
func ParseLayout(s string) (Layout, error) {
	l := Layout(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", errors.New(errors.ErrCodeUnknownLayout, "unknown layout: "+s).
			WithDetails(map[string]any{"supported": AllLayouts()})
	}
	return l, nil
}
