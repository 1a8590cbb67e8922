package pack

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Future is the format assigned to the pseudo-version "future", an upper
// bound above every real format.
const Future = 9001

// formats maps Minecraft release names to pack formats.
var formats = func() map[string]int {
	m := make(map[string]int)

	for _, r := range []struct {
		name   string
		format int
	}{
		{"future", Future},
		{"1.21.6", 80}, {"1.21.5", 71}, {"1.21.4", 61},
		{"1.21.3", 57}, {"1.21.2", 57},
		{"1.21.1", 48}, {"1.21", 48},
		{"1.20.6", 41}, {"1.20.5", 41},
		{"1.20.4", 26}, {"1.20.3", 26}, {"1.20.2", 18},
		{"1.20.1", 15}, {"1.20", 15}, {"1.19.4", 12},
		{"1.19", 10},
		{"1.18.2", 9}, {"1.18.1", 8}, {"1.18", 8},
		{"1.17.1", 7}, {"1.17", 7},
		{"1.16.1", 5}, {"1.16", 5}, {"1.15.2", 5}, {"1.15.1", 5}, {"1.15", 5},
		{"1.14", 4}, {"1.13.2", 4}, {"1.13.1", 4}, {"1.13", 4},
	} {
		m[r.name] = r.format
	}

	series := func(base string, first, last, format int) {
		for i := first; i <= last; i++ {
			m[base+"."+strconv.Itoa(i)] = format
		}
	}

	series("1.19", 1, 3, 10)
	series("1.16", 2, 5, 6)
	series("1.14", 1, 4, 4)

	return m
}()

// Versions returns every known release name, newest first, with "future"
// leading.
func Versions() []string {
	return slices.SortedFunc(maps.Keys(formats), compareVersions)
}

// Latest returns the newest known release and its pack format.
func Latest() (string, int) {
	for _, v := range Versions() {
		if v != "future" {
			return v, formats[v]
		}
	}

	return "", 0
}

// VersionsOf returns the release names with pack format f, newest first.
func VersionsOf(f int) []string {
	var out []string

	for _, v := range Versions() {
		if formats[v] == f {
			out = append(out, v)
		}
	}

	return out
}

// Lookup returns the pack format of a release name.
func Lookup(version string) (int, bool) {
	f, ok := formats[version]

	return f, ok
}

// VersionOrFormat interprets s as a release name or, failing that, as an
// integer pack format.
func VersionOrFormat(s string) (int, error) {
	s = strings.TrimSpace(s)
	if f, ok := formats[s]; ok {
		return f, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrUnknownVersion.Wrap(err).With(slog.String("version", s))
	}

	return n, nil
}

// IsRelease reports whether s is shaped like a release name ("1.20.2").
func IsRelease(s string) bool {
	return s == "future" || (strings.Contains(s, ".") && semver.IsValid("v"+s))
}

// compareVersions orders "future" first and releases by descending semver.
func compareVersions(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "future":
		return -1
	case b == "future":
		return 1
	}

	if c := semver.Compare("v"+b, "v"+a); c != 0 {
		return c
	}

	return strings.Compare(b, a)
}
