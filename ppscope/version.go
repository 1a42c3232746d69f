package ppscope

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Version is a comparable target: major*10000+minor*100+patch plus a loader tag.
// Components of 100 or more break the ordering.
type Version struct {
	Numeric int    `json:"numeric"`
	Loader  string `json:"loader,omitempty"`
}

// NullVersion stands in for a version string that could not be parsed.
var NullVersion = Version{Numeric: 0, Loader: "null"}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// Comparable converts the first major.minor[.patch] in s to its numeric key.
func Comparable(s string) (int, bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	patch := 0
	if m[3] != "" {
		if patch, err = strconv.Atoi(m[3]); err != nil {
			return 0, false
		}
	}
	return major*10000 + minor*100 + patch, true
}

// ParseVersion parses strings like "1.21.2-fabric" or "1.8.9".
func ParseVersion(s string) (Version, bool) {
	numeric, ok := Comparable(s)
	if !ok {
		return Version{}, false
	}
	v := Version{Numeric: numeric}
	if _, rest, found := strings.Cut(strings.TrimSpace(s), "-"); found {
		loader, _, _ := strings.Cut(rest, "-")
		v.Loader = foldLoader(loader)
	}
	return v, true
}

// MustParseVersion is ParseVersion that falls back to NullVersion.
func MustParseVersion(s string) Version {
	v, ok := ParseVersion(s)
	if !ok {
		return NullVersion
	}
	return v
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Numeric/10000, v.Numeric/100%100, v.Numeric%100)
	if v.Loader != "" {
		s += "-" + v.Loader
	}
	return s
}

// SearchKey is the compact key used for keyboard search in version pickers,
// e.g. "12102fabric".
func (v Version) SearchKey() string {
	return strconv.Itoa(v.Numeric) + v.Loader
}

// foldLoader case-folds a loader tag. Casers are stateful, so one is made per call.
func foldLoader(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Target is a named version candidate, e.g. a versions/<name> source set.
type Target struct {
	Name    string  `json:"name"`
	Version Version `json:"version"`
	Key     string  `json:"key"`
	Matched bool    `json:"matched"`
}

// NewTarget builds a target from its raw name. Unparseable names get NullVersion.
func NewTarget(name string) Target {
	v := MustParseVersion(name)
	return Target{Name: name, Version: v, Key: v.SearchKey(), Matched: true}
}

// SortTargets orders targets by numeric key so 1.8.9 sorts before 1.12.2.
func SortTargets(targets []Target) {
	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].Version.Numeric != targets[j].Version.Numeric {
			return targets[i].Version.Numeric < targets[j].Version.Numeric
		}
		return targets[i].Name < targets[j].Name
	})
}
