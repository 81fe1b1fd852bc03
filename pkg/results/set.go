package results

import (
	"sort"
	"strings"
)

// Set maps platform -> build -> outcome.
//
// Platform keys may carry a version or variant suffix (ubuntu_20.04); the
// backfill rule matches expected platforms against them by substring.
type Set map[string]map[string]Outcome

// Entry is one flattened (platform, build, outcome) triple.
type Entry struct {
	Platform string  `json:"platform" yaml:"platform"`
	Build    string  `json:"build" yaml:"build"`
	Outcome  Outcome `json:"outcome" yaml:"outcome"`
}

// New returns an empty set.
func New() Set {
	return Set{}
}

// Get returns the outcome for (platform, build) and whether it is present.
func (s Set) Get(platform, build string) (Outcome, bool) {
	builds, ok := s[platform]
	if !ok {
		return 0, false
	}
	o, ok := builds[build]
	return o, ok
}

// Put stores an outcome, creating the platform if needed.
func (s Set) Put(platform, build string, o Outcome) {
	builds := s[platform]
	if builds == nil {
		builds = make(map[string]Outcome)
		s[platform] = builds
	}
	builds[build] = o
}

// Clone returns a deep copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for platform, builds := range s {
		cp := make(map[string]Outcome, len(builds))
		for build, o := range builds {
			cp[build] = o
		}
		out[platform] = cp
	}
	return out
}

// Platforms returns the platform keys in sorted order.
func (s Set) Platforms() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Builds returns the build keys of platform in sorted order.
func (s Set) Builds(platform string) []string {
	builds := s[platform]
	keys := make([]string, 0, len(builds))
	for k := range builds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of (platform, build) entries.
func (s Set) Len() int {
	n := 0
	for _, builds := range s {
		n += len(builds)
	}
	return n
}

// Entries flattens the set, sorted by platform then build.
func (s Set) Entries() []Entry {
	entries := make([]Entry, 0, s.Len())
	for _, platform := range s.Platforms() {
		for _, build := range s.Builds(platform) {
			entries = append(entries, Entry{Platform: platform, Build: build, Outcome: s[platform][build]})
		}
	}
	return entries
}

// Counts tallies entries per outcome.
func (s Set) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, builds := range s {
		for _, o := range builds {
			counts[o]++
		}
	}
	return counts
}

// Acceptable reports whether every entry is NO TEST, SKIP or OK.
// An empty set is acceptable.
func (s Set) Acceptable() bool {
	for _, builds := range s {
		for _, o := range builds {
			if !o.Acceptable() {
				return false
			}
		}
	}
	return true
}

// Failures returns the entries that are not acceptable, sorted.
func (s Set) Failures() []Entry {
	var failures []Entry
	for _, e := range s.Entries() {
		if !e.Outcome.Acceptable() {
			failures = append(failures, e)
		}
	}
	return failures
}

// HasPlatformToken reports whether any platform key contains token.
func (s Set) HasPlatformToken(token string) bool {
	for platform := range s {
		if strings.Contains(platform, token) {
			return true
		}
	}
	return false
}

// IsAcceptable reports whether o does not require attention.
func IsAcceptable(o Outcome) bool {
	return o.Acceptable()
}
