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

import "slices"

// versionInterval is a single contiguous run of versions, e.g.
// [1.0.0, 2.0.0) for ">=1.0.0, <2.0.0" or [1.0.0, +inf) for ">=1.0.0".
// A VersionIntervalSet is a sorted, disjoint slice of these.
type versionInterval struct {
	lower versionBound
	upper versionBound
}

// newInterval builds an interval from its bounds. ok is false when the
// bounds describe nothing (upper strictly before lower, or an exclusive
// point interval), so callers never have to special-case an empty interval
// value themselves.
func newInterval(lower, upper versionBound) (versionInterval, bool) {
	iv := versionInterval{lower: lower, upper: upper}
	if iv.isEmpty() {
		return versionInterval{}, false
	}
	return iv, true
}

// isEmpty reports whether the interval admits no versions at all.
func (iv versionInterval) isEmpty() bool {
	if iv.lower.isPosInfinity() || iv.upper.isNegInfinity() {
		return true
	}
	if iv.lower.isNegInfinity() || iv.upper.isPosInfinity() {
		return false
	}

	switch cmp := iv.lower.version.Sort(iv.upper.version); {
	case cmp < 0:
		return false
	case cmp > 0:
		return true
	default:
		return !iv.lower.inclusive || !iv.upper.inclusive
	}
}

// contains reports whether version falls within the interval's bounds.
func (iv versionInterval) contains(version Version) bool {
	if version == nil {
		return false
	}

	if !iv.lower.isNegInfinity() {
		cmp := version.Sort(iv.lower.version)
		if cmp < 0 || (cmp == 0 && !iv.lower.inclusive) {
			return false
		}
	}

	if !iv.upper.isPosInfinity() {
		cmp := version.Sort(iv.upper.version)
		if cmp > 0 || (cmp == 0 && !iv.upper.inclusive) {
			return false
		}
	}

	return true
}

// precedes reports whether an interval ending at upper and one starting at
// lower share no version: upper falls before lower, or both sit at the same
// version and at least one of them excludes it. It underlies both
// overlap/touch detection below.
func precedes(upper, lower versionBound) bool {
	switch {
	case upper.isNegInfinity():
		return !lower.isNegInfinity()
	case lower.isPosInfinity():
		return !upper.isPosInfinity()
	case upper.isPosInfinity(), lower.isNegInfinity():
		return false
	}

	switch cmp := upper.version.Sort(lower.version); {
	case cmp < 0:
		return true
	case cmp > 0:
		return false
	default:
		return !upper.inclusive || !lower.inclusive
	}
}

// upperLessThanLower keeps the original gap-detection name available for
// the version set it drives, delegating to precedes.
func upperLessThanLower(upper, lower versionBound) bool {
	return precedes(upper, lower)
}

// adjacentOrOverlapping is the shared test behind overlaps and touches:
// neither interval's upper bound precedes the other's lower bound, in
// either direction.
func (iv versionInterval) adjacentOrOverlapping(other versionInterval) bool {
	return !precedes(iv.upper, other.lower) && !precedes(other.upper, iv.lower)
}

// overlaps reports whether iv and other share any version.
func (iv versionInterval) overlaps(other versionInterval) bool {
	return iv.adjacentOrOverlapping(other)
}

// touches reports whether iv and other can be merged into one interval
// without admitting any version neither originally contained.
func (iv versionInterval) touches(other versionInterval) bool {
	if iv.adjacentOrOverlapping(other) {
		return true
	}
	// [a, v) and [v, b) share no version but leave no gap either.
	meets := func(upper, lower versionBound) bool {
		return upper.isFinite() && lower.isFinite() &&
			upper.version.Sort(lower.version) == 0 && upper.inclusive != lower.inclusive
	}
	return meets(iv.upper, other.lower) || meets(other.upper, iv.lower)
}

// merge spans iv and other, taking whichever lower bound reaches further
// down and whichever upper bound reaches further up. Only meaningful when
// the two intervals touch.
func (iv versionInterval) merge(other versionInterval) versionInterval {
	return versionInterval{
		lower: minBy(iv.lower, other.lower, compareLower),
		upper: maxBy(iv.upper, other.upper, compareUpper),
	}
}

// minBy and maxBy pick between two bounds by an explicit comparator rather
// than the builtin min/max, since versionBound has no natural ordering of
// its own: lower bounds and upper bounds sort in different directions, and
// which one is "smaller" depends on which edge is being compared.
func minBy[T any](a, b T, compare func(T, T) int) T {
	if compare(a, b) <= 0 {
		return a
	}
	return b
}

func maxBy[T any](a, b T, compare func(T, T) int) T {
	if compare(a, b) >= 0 {
		return a
	}
	return b
}

// covers reports whether other is entirely contained within iv.
func (iv versionInterval) covers(other versionInterval) bool {
	return compareLower(iv.lower, other.lower) <= 0 && compareUpper(iv.upper, other.upper) >= 0
}

// invertedEdge flips a bound into the opposite edge's matching boundary:
// the upper bound of "everything below here" becomes the lower bound of
// "everything above here", and vice versa. Used to build the complement of
// an interval one side at a time.
func invertedEdge(b versionBound) versionBound {
	switch b.infinite {
	case boundPositiveInfinity:
		return positiveInfinityBound()
	case boundNegativeInfinity:
		return negativeInfinityBound()
	default:
		return versionBound{version: b.version, inclusive: !b.inclusive, infinite: boundFinite}
	}
}

// complementLowerBound is the lower edge of the gap immediately above iv.
func (iv versionInterval) complementLowerBound() versionBound {
	return invertedEdge(iv.upper)
}

// complementUpperBound is the upper edge of the gap immediately below iv.
func (iv versionInterval) complementUpperBound() versionBound {
	return invertedEdge(iv.lower)
}

// normalizeIntervals reduces intervals to the canonical form every
// VersionIntervalSet is stored in: empties dropped, sorted by lower bound,
// and touching/overlapping runs fused into one. Two inputs describing the
// same versions always normalize to byte-identical output, which is what
// lets term equality rely on plain struct comparison.
func normalizeIntervals(intervals []versionInterval) []versionInterval {
	live := intervals[:0]
	for _, iv := range intervals {
		if !iv.isEmpty() {
			live = append(live, iv)
		}
	}
	if len(live) == 0 {
		return nil
	}

	slices.SortFunc(live, func(a, b versionInterval) int {
		return compareLower(a.lower, b.lower)
	})

	fused := live[:1]
	for _, iv := range live[1:] {
		last := &fused[len(fused)-1]
		if last.touches(iv) {
			*last = last.merge(iv)
			continue
		}
		fused = append(fused, iv)
	}

	out := make([]versionInterval, len(fused))
	copy(out, fused)
	return out
}
