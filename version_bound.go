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

// versionBound anchors one edge of a versionInterval. It is either a
// concrete version (inclusive or exclusive) or one of the two infinities
// that stand in for "no limit on this side".
type versionBound struct {
	version   Version
	inclusive bool
	infinite  boundSign
}

// boundSign tells a bound apart from a real version without a sentinel
// version value. Its three values double as a comparison rank: negative
// infinity orders before every finite bound, positive infinity after.
type boundSign int

const (
	boundNegativeInfinity boundSign = -1
	boundFinite           boundSign = 0
	boundPositiveInfinity boundSign = 1
)

// newLowerBound builds the lower edge of an interval. A nil version means
// the interval is unbounded below.
func newLowerBound(version Version, inclusive bool) versionBound {
	if version == nil {
		return negativeInfinityBound()
	}
	return versionBound{version: version, inclusive: inclusive}
}

// newUpperBound builds the upper edge of an interval. A nil version means
// the interval is unbounded above.
func newUpperBound(version Version, inclusive bool) versionBound {
	if version == nil {
		return positiveInfinityBound()
	}
	return versionBound{version: version, inclusive: inclusive}
}

// negativeInfinityBound is the lower edge of the unbounded-below interval.
func negativeInfinityBound() versionBound {
	return versionBound{infinite: boundNegativeInfinity, inclusive: true}
}

// positiveInfinityBound is the upper edge of the unbounded-above interval.
func positiveInfinityBound() versionBound {
	return versionBound{infinite: boundPositiveInfinity, inclusive: true}
}

func (b versionBound) isNegInfinity() bool { return b.infinite == boundNegativeInfinity }
func (b versionBound) isPosInfinity() bool { return b.infinite == boundPositiveInfinity }
func (b versionBound) isFinite() bool      { return b.infinite == boundFinite }

// boundEdge says which side of an interval a comparison concerns. Lower and
// upper bounds agree on how infinities order but disagree on which of a
// matching inclusive/exclusive pair at the same version sorts first, so a
// single comparator threads that one difference through a parameter instead
// of duplicating the whole function twice.
type boundEdge int

const (
	lowerEdge boundEdge = iota
	upperEdge
)

// compareBounds orders two bounds anchoring the same edge kind. Negative
// infinity is least, positive infinity is greatest, finite bounds compare
// by version and then break version ties by inclusivity: on a lower edge
// the inclusive bound is the looser (smaller) one, on an upper edge it's
// the looser (larger) one.
func compareBounds(a, b versionBound, edge boundEdge) int {
	if a.infinite != b.infinite {
		if a.infinite < b.infinite {
			return -1
		}
		return 1
	}
	if a.infinite != boundFinite {
		return 0
	}

	if cmp := a.version.Sort(b.version); cmp != 0 {
		return cmp
	}
	if a.inclusive == b.inclusive {
		return 0
	}

	inclusiveSortsFirst := edge == lowerEdge
	if a.inclusive == inclusiveSortsFirst {
		return -1
	}
	return 1
}

// compareLower orders two lower bounds: negative before positive infinity,
// and at equal versions inclusive (">=") before exclusive (">").
func compareLower(a, b versionBound) int {
	return compareBounds(a, b, lowerEdge)
}

// compareUpper orders two upper bounds: negative before positive infinity,
// and at equal versions exclusive ("<") before inclusive ("<=").
func compareUpper(a, b versionBound) int {
	return compareBounds(a, b, upperEdge)
}
