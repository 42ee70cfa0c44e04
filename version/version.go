// Package version parses release numbers and checks the mpv we talk to.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Semver is a major.minor.patch triple.
type Semver [3]int

// Parse reads "1.2.3" or "v1.2.3". Anything after the patch number is ignored.
func Parse(s string) (Semver, error) {
	var v Semver

	parts := strings.SplitN(strings.TrimPrefix(s, "v"), ".", 3)
	if len(parts) != 3 {
		return v, fmt.Errorf("version %q: want major.minor.patch", s)
	}
	if i := strings.IndexFunc(parts[2], func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		parts[2] = parts[2][:i]
	}

	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return v, fmt.Errorf("version %q: %w", s, err)
		}
		v[i] = n
	}
	return v, nil
}

func (v Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// Compare returns 1 if a > b, -1 if a < b and 0 if they are equal.
func Compare(a, b string) (int, error) {
	av, err := Parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return slices.Compare(av[:], bv[:]), nil
}
