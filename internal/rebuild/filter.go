package rebuild

import (
	"regexp"
)

// Package is one entry of the ordered rebuild catalog. The catalog order
// is the build order: firmware builds before the emulator that embeds it,
// the base virtualization library before the tools that link it.
type Package struct {
	Name string

	// Skip marks a package that is never rebuilt, regardless of staleness.
	Skip bool

	// ExcludeChroots matches chroots this package is not built for
	// upstream. Absence from such a chroot is not staleness.
	ExcludeChroots []*regexp.Regexp
}

// Filter decides which chroots are in scope for comparison.
type Filter struct {
	skipChroots []*regexp.Regexp
	excludes    map[string][]*regexp.Regexp
}

func NewFilter(skipChroots []*regexp.Regexp, catalog []Package) *Filter {
	excludes := make(map[string][]*regexp.Regexp, len(catalog))
	for _, pkg := range catalog {
		if len(pkg.ExcludeChroots) > 0 {
			excludes[pkg.Name] = pkg.ExcludeChroots
		}
	}
	return &Filter{
		skipChroots: skipChroots,
		excludes:    excludes,
	}
}

// Active prunes end-of-life chroots from the project's chroot list,
// preserving order.
func (f *Filter) Active(chroots []string) []string {
	active := make([]string, 0, len(chroots))
	for _, chroot := range chroots {
		if !matchAny(f.skipChroots, chroot) {
			active = append(active, chroot)
		}
	}
	return active
}

// Excluded reports whether pkg is architecture-excluded from chroot. This
// is consulted during staleness evaluation only, never when pruning the
// chroot list.
func (f *Filter) Excluded(pkg, chroot string) bool {
	return matchAny(f.excludes[pkg], chroot)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}
