// Package dns implements the planner and applier of spec.md §4.7-4.8:
// diffing a scaling group's desired value set against the record a DNS
// provider currently holds, and translating the result into a
// provider-specific write.
package dns

import (
	"sort"
	"strings"
)

// NormalizeFQDN appends the zone apex to name if it is not already a
// suffix, after stripping any trailing dot from both inputs. Idempotent:
// NormalizeFQDN(NormalizeFQDN(x, zone), zone) == NormalizeFQDN(x, zone).
func NormalizeFQDN(name, zoneApex string) string {
	name = strings.TrimSuffix(name, ".")
	zoneApex = strings.TrimSuffix(zoneApex, ".")
	if zoneApex == "" {
		return name
	}
	if name == zoneApex || strings.HasSuffix(name, "."+zoneApex) {
		return name
	}
	return name + "." + zoneApex
}

// dedupSorted returns values deduplicated and sorted lexicographically,
// per spec.md §4.7's emission rule.
func dedupSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func setMinus(a, b []string) []string {
	exclude := make(map[string]bool, len(b))
	for _, v := range b {
		exclude[v] = true
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if !exclude[v] {
			out = append(out, v)
		}
	}
	return out
}

func subsetOf(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	for _, v := range a {
		if !set[v] {
			return false
		}
	}
	return true
}
