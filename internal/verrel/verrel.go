// Package verrel parses and orders RPM version-release identifiers.
package verrel

import (
	"fmt"
	"regexp"
	"strings"
)

// Verrel is the version-release pair of a single package build.
type Verrel struct {
	Version string
	Release string
}

var (
	distTagPattern = regexp.MustCompile(`\.fc\d\d$`)
	epochPrefix    = regexp.MustCompile(`^\d+:`)
)

// Parse splits an NVR string like "qemu-8.1.0-1.fc40" on the last two
// dashes. The name may itself contain dashes.
func Parse(nvr string) (string, Verrel, error) {
	relIdx := strings.LastIndex(nvr, "-")
	if relIdx < 1 {
		return "", Verrel{}, fmt.Errorf("malformed NVR %q", nvr)
	}
	verIdx := strings.LastIndex(nvr[:relIdx], "-")
	if verIdx < 1 {
		return "", Verrel{}, fmt.Errorf("malformed NVR %q", nvr)
	}
	return nvr[:verIdx], Verrel{
		Version: nvr[verIdx+1 : relIdx],
		Release: nvr[relIdx+1:],
	}, nil
}

// StripDist removes the trailing dist tag from the release. A release
// without one returns the receiver unchanged along with an error; the
// caller decides whether the tag was required (it is for koji results,
// it is not for Copr build records).
func (v Verrel) StripDist() (Verrel, error) {
	loc := distTagPattern.FindStringIndex(v.Release)
	if loc == nil {
		return v, fmt.Errorf("no dist tag in release %q", v.Release)
	}
	v.Release = v.Release[:loc[0]]
	return v, nil
}

// StripEpoch removes a leading "<digits>:" epoch annotation from the
// version. Copr reports source package versions with the epoch included,
// koji NVRs never do. Stripping an epoch-free version is a no-op.
func (v Verrel) StripEpoch() Verrel {
	v.Version = epochPrefix.ReplaceAllString(v.Version, "")
	return v
}

// OlderThan reports whether v sorts strictly below latest. Both sides are
// compared as ("1", version, release) tuples: the epoch slot is forced
// equal, so only version and release drive the ordering.
func (v Verrel) OlderThan(latest Verrel) bool {
	if c := Compare(v.Version, latest.Version); c != 0 {
		return c < 0
	}
	return Compare(v.Release, latest.Release) < 0
}

func (v Verrel) String() string {
	return v.Version + "-" + v.Release
}

// Compare orders two version strings by the RPM label algorithm: the
// strings are walked as alternating runs of digits and non-digits, digit
// runs compare numerically with leading zeros ignored, other runs compare
// lexically, a tilde sorts below everything including end-of-string and a
// caret sorts above end-of-string but below any other segment. Returns
// -1, 0 or 1.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	ia, ib := 0, 0
	for ia < len(a) || ib < len(b) {
		// skip separators; they only delimit segments
		for ia < len(a) && !isAlnum(a[ia]) && a[ia] != '~' && a[ia] != '^' {
			ia++
		}
		for ib < len(b) && !isAlnum(b[ib]) && b[ib] != '~' && b[ib] != '^' {
			ib++
		}

		aTilde := ia < len(a) && a[ia] == '~'
		bTilde := ib < len(b) && b[ib] == '~'
		if aTilde || bTilde {
			if !bTilde {
				return -1
			}
			if !aTilde {
				return 1
			}
			ia++
			ib++
			continue
		}

		aCaret := ia < len(a) && a[ia] == '^'
		bCaret := ib < len(b) && b[ib] == '^'
		if aCaret || bCaret {
			if ia == len(a) {
				return -1
			}
			if ib == len(b) {
				return 1
			}
			if !bCaret {
				return -1
			}
			if !aCaret {
				return 1
			}
			ia++
			ib++
			continue
		}

		if ia == len(a) || ib == len(b) {
			if ia == len(a) && ib == len(b) {
				return 0
			}
			if ia == len(a) {
				return -1
			}
			return 1
		}

		segA, numeric := takeSegment(a, ia)
		segB, numericB := takeSegment(b, ib)
		if numeric != numericB {
			// a numeric segment outranks an alphabetic one
			if numeric {
				return 1
			}
			return -1
		}
		ia += len(segA)
		ib += len(segB)

		if numeric {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) > len(segB) {
					return 1
				}
				return -1
			}
		}
		if c := strings.Compare(segA, segB); c != 0 {
			return c
		}
	}
	return 0
}

func takeSegment(s string, i int) (string, bool) {
	numeric := isDigit(s[i])
	j := i
	for j < len(s) && isDigit(s[j]) == numeric && isAlnum(s[j]) {
		j++
	}
	return s[i:j], numeric
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
