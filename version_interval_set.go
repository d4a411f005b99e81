// Copyright 2024 The University of Queensland
// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pubgrub

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// VersionIntervalSet is the default VersionSet implementation: a canonical
// union of disjoint intervals, kept sorted with no two runs touching. Every
// constructor and algebra method below routes its result through
// normalizeIntervals (directly or via newVersionIntervalSet) so two sets
// describing the same versions always end up byte-identical, which is what
// lets Term equality compare sets structurally instead of semantically.
type VersionIntervalSet struct {
	intervals []versionInterval
}

var _ VersionSet = (*VersionIntervalSet)(nil)

// newVersionIntervalSet normalizes intervals and wraps them as a set.
func newVersionIntervalSet(intervals []versionInterval) *VersionIntervalSet {
	return &VersionIntervalSet{intervals: normalizeIntervals(intervals)}
}

// intervalSetFromBounds builds the VersionSet for a single [lower, upper]
// run, collapsing to the empty set when the bounds describe nothing.
func intervalSetFromBounds(lower, upper versionBound) VersionSet {
	if iv, ok := newInterval(lower, upper); ok {
		return newVersionIntervalSet([]versionInterval{iv})
	}
	return &VersionIntervalSet{}
}

// cloneIntervals copies the backing slice so algebra methods can build a
// new result without mutating a shared set in place.
func (s *VersionIntervalSet) cloneIntervals() []versionInterval {
	if len(s.intervals) == 0 {
		return nil
	}
	cloned := make([]versionInterval, len(s.intervals))
	copy(cloned, s.intervals)
	return cloned
}

// Empty returns the version set containing nothing.
func (s *VersionIntervalSet) Empty() VersionSet {
	return &VersionIntervalSet{}
}

// Full returns the version set containing every version.
func (s *VersionIntervalSet) Full() VersionSet {
	return &VersionIntervalSet{
		intervals: []versionInterval{{lower: negativeInfinityBound(), upper: positiveInfinityBound()}},
	}
}

// Singleton returns the version set containing exactly version.
func (s *VersionIntervalSet) Singleton(version Version) VersionSet {
	if version == nil {
		return &VersionIntervalSet{}
	}
	iv, ok := newInterval(newLowerBound(version, true), newUpperBound(version, true))
	if !ok {
		return &VersionIntervalSet{}
	}
	return &VersionIntervalSet{intervals: []versionInterval{iv}}
}

// Union returns every version in either s or other.
func (s *VersionIntervalSet) Union(other VersionSet) VersionSet {
	o := asIntervalSet(other)
	combined := append(s.cloneIntervals(), o.intervals...)
	return newVersionIntervalSet(combined)
}

// Intersection returns every version in both s and other, walking the two
// sorted interval lists in lockstep (a merge-join) rather than comparing
// every pair.
func (s *VersionIntervalSet) Intersection(other VersionSet) VersionSet {
	o := asIntervalSet(other)
	if len(s.intervals) == 0 || len(o.intervals) == 0 {
		return &VersionIntervalSet{}
	}

	result := make([]versionInterval, 0, len(s.intervals))
	i, j := 0, 0
	for i < len(s.intervals) && j < len(o.intervals) {
		if iv, ok := intersectInterval(s.intervals[i], o.intervals[j]); ok {
			result = append(result, iv)
		}
		if compareUpper(s.intervals[i].upper, o.intervals[j].upper) < 0 {
			i++
		} else {
			j++
		}
	}

	return newVersionIntervalSet(result)
}

// intersectInterval narrows a and b to the interval they share: whichever
// lower bound reaches less far down, paired with whichever upper bound
// reaches less far up.
func intersectInterval(a, b versionInterval) (versionInterval, bool) {
	return newInterval(
		maxBy(a.lower, b.lower, compareLower),
		minBy(a.upper, b.upper, compareUpper),
	)
}

// Complement returns every version not in s, built by walking the gaps
// between consecutive intervals (and before the first / after the last).
func (s *VersionIntervalSet) Complement() VersionSet {
	if len(s.intervals) == 0 {
		return s.Full()
	}

	gaps := make([]versionInterval, 0, len(s.intervals)+1)
	lower := negativeInfinityBound()

	for _, iv := range s.intervals {
		if gap, ok := newInterval(lower, iv.complementUpperBound()); ok {
			gaps = append(gaps, gap)
		}
		lower = iv.complementLowerBound()
	}
	if tail, ok := newInterval(lower, positiveInfinityBound()); ok {
		gaps = append(gaps, tail)
	}

	return newVersionIntervalSet(gaps)
}

// Contains reports whether version falls in any of s's intervals.
func (s *VersionIntervalSet) Contains(version Version) bool {
	for _, iv := range s.intervals {
		if iv.contains(version) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether s admits no versions.
func (s *VersionIntervalSet) IsEmpty() bool {
	return len(s.intervals) == 0
}

// IsSubset reports whether every version in s is also in other, again via
// a merge-join over both sorted interval lists.
func (s *VersionIntervalSet) IsSubset(other VersionSet) bool {
	if len(s.intervals) == 0 {
		return true
	}

	o := asIntervalSet(other)
	i, j := 0, 0
	for i < len(s.intervals) {
		if j >= len(o.intervals) {
			return false
		}
		if o.intervals[j].covers(s.intervals[i]) {
			i++
			continue
		}
		if upperLessThanLower(o.intervals[j].upper, s.intervals[i].lower) {
			j++
			continue
		}
		return false
	}
	return true
}

// IsDisjoint reports whether s and other share no version.
func (s *VersionIntervalSet) IsDisjoint(other VersionSet) bool {
	if len(s.intervals) == 0 {
		return true
	}

	o := asIntervalSet(other)
	i, j := 0, 0
	for i < len(s.intervals) && j < len(o.intervals) {
		if s.intervals[i].overlaps(o.intervals[j]) {
			return false
		}
		if compareUpper(s.intervals[i].upper, o.intervals[j].upper) < 0 {
			i++
		} else {
			j++
		}
	}
	return true
}

// Intervals iterates the set's canonical, sorted, disjoint intervals:
//
//	for iv := range versionSet.Intervals() { ... }
func (s *VersionIntervalSet) Intervals() iter.Seq[versionInterval] {
	return slices.Values(s.intervals)
}

// String renders the set using the same operators ParseVersionRange
// accepts: "∅" for nothing, "*" for everything, "==v" for a single
// version, comma-joined bounds for a range, and " || " between disjoint
// runs.
func (s *VersionIntervalSet) String() string {
	switch len(s.intervals) {
	case 0:
		return "∅"
	case 1:
		return formatInterval(s.intervals[0])
	}

	parts := make([]string, len(s.intervals))
	for i, iv := range s.intervals {
		parts[i] = formatInterval(iv)
	}
	return strings.Join(parts, " || ")
}

// formatInterval renders one interval as a constraint expression.
func formatInterval(iv versionInterval) string {
	if iv.lower.isNegInfinity() && iv.upper.isPosInfinity() {
		return "*"
	}

	if iv.lower.isFinite() && iv.upper.isFinite() &&
		iv.lower.version.Sort(iv.upper.version) == 0 &&
		iv.lower.inclusive && iv.upper.inclusive {
		return fmt.Sprintf("==%s", iv.lower.version)
	}

	var parts []string
	if iv.lower.isFinite() {
		op := ">="
		if !iv.lower.inclusive {
			op = ">"
		}
		parts = append(parts, fmt.Sprintf("%s%s", op, iv.lower.version))
	}
	if iv.upper.isFinite() {
		op := "<="
		if !iv.upper.inclusive {
			op = "<"
		}
		parts = append(parts, fmt.Sprintf("%s%s", op, iv.upper.version))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, ", ")
}

// asIntervalSet coerces a VersionSet to its concrete interval representation.
// Every VersionSet the solver ever constructs is a *VersionIntervalSet; the
// IsEmpty fallback only covers a foreign implementation that happens to be
// empty, which needs no interval data to intersect/union against.
func asIntervalSet(set VersionSet) *VersionIntervalSet {
	if set == nil {
		return &VersionIntervalSet{}
	}
	if iv, ok := set.(*VersionIntervalSet); ok {
		return iv
	}
	if set.IsEmpty() {
		return &VersionIntervalSet{}
	}
	panic("unsupported VersionSet implementation")
}

// singletonVersionFromSet reports the one version set contains, if it
// contains exactly one.
func singletonVersionFromSet(set VersionSet) (Version, bool) {
	iv, ok := set.(*VersionIntervalSet)
	if !ok || len(iv.intervals) != 1 {
		return nil, false
	}

	only := iv.intervals[0]
	if !only.lower.isFinite() || !only.upper.isFinite() {
		return nil, false
	}
	if only.lower.version.Sort(only.upper.version) != 0 {
		return nil, false
	}
	if !only.lower.inclusive || !only.upper.inclusive {
		return nil, false
	}
	return only.lower.version, true
}
