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

import "fmt"

// Term is a signed constraint on a single package: "Name must fall inside
// Condition" when Positive, "Name must fall outside Condition" otherwise.
// A partial solution assigns at most one term per package at a time, and an
// Incompatibility is a conjunction of terms across packages that cannot all
// hold simultaneously.
type Term struct {
	Name      Name
	Condition Condition
	Positive  bool
}

// NewTerm builds a positive term: the package must satisfy condition.
func NewTerm(name Name, condition Condition) Term {
	return Term{Name: name, Condition: condition, Positive: true}
}

// NewNegativeTerm builds a negative term: the package must not satisfy condition.
func NewNegativeTerm(name Name, condition Condition) Term {
	return Term{Name: name, Condition: condition, Positive: false}
}

// String renders the term the way derivation trees and error messages expect:
// "name cond" for a positive term, "not name cond" for a negative one, with
// the condition elided when it is the universal "*".
func (t Term) String() string {
	cond := "*"
	if t.Condition != nil {
		cond = t.Condition.String()
	}

	if t.Positive {
		if cond == "*" {
			return t.Name.Value()
		}
		return fmt.Sprintf("%s %s", t.Name.Value(), cond)
	}

	if cond == "*" {
		return fmt.Sprintf("not %s", t.Name.Value())
	}
	return fmt.Sprintf("not %s %s", t.Name.Value(), cond)
}

// Negate flips polarity in place, keeping the same condition. Negating a
// term twice returns to the original.
func (t Term) Negate() Term {
	return Term{Name: t.Name, Condition: t.Condition, Positive: !t.Positive}
}

// IsPositive reports the term's polarity.
func (t Term) IsPositive() bool {
	return t.Positive
}

// IsSatisfiedBy reports whether assigning ver to the term's package would
// make the term hold. A nil ver stands for "package not selected", which
// only satisfies a negative term.
func (t Term) IsSatisfiedBy(ver Version) bool {
	if ver == nil {
		return !t.Positive
	}
	if t.Condition == nil {
		return t.Positive
	}
	return t.Condition.Satisfies(ver) == t.Positive
}

// IsContradictedBy is the opposite of IsSatisfiedBy: it reports whether
// assigning ver would make the term impossible to hold.
func (t Term) IsContradictedBy(ver Version) bool {
	return !t.IsSatisfiedBy(ver)
}

// conditionSet resolves the term's Condition to a concrete VersionSet,
// independent of polarity. The four Condition shapes the solver produces
// internally (nil, EqualsCondition by value or pointer, VersionSetCondition)
// and any caller-supplied Condition implementing VersionSetConverter all
// reduce to one here so AllowedSet and ForbiddenSet never duplicate the
// switch.
func (t Term) conditionSet() (VersionSet, bool) {
	switch cond := t.Condition.(type) {
	case nil:
		return FullVersionSet(), true
	case EqualsCondition:
		return (&VersionIntervalSet{}).Singleton(cond.Version), true
	case *EqualsCondition:
		if cond == nil {
			return FullVersionSet(), true
		}
		return (&VersionIntervalSet{}).Singleton(cond.Version), true
	case *VersionSetCondition:
		if cond == nil || cond.Set == nil {
			return FullVersionSet(), true
		}
		return cond.Set, true
	case VersionSetConverter:
		if set := cond.ToVersionSet(); set != nil {
			return set, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// AllowedSet returns the versions a positive term permits. ok is false for
// negative terms or for a Condition this package cannot reduce to a
// VersionSet (a caller-supplied Condition that does not implement
// VersionSetConverter).
func (t Term) AllowedSet() (VersionSet, bool) {
	if !t.Positive {
		return nil, false
	}
	return t.conditionSet()
}

// ForbiddenSet returns the versions a negative term excludes. ok is false
// for positive terms or an unreducible Condition.
func (t Term) ForbiddenSet() (VersionSet, bool) {
	if t.Positive {
		return nil, false
	}
	return t.conditionSet()
}

// Intersect combines two terms constraining the same package into the
// single term equivalent to both holding at once:
//
//	Positive ∩ Positive -> Positive over the set intersection
//	Negative ∩ Negative -> Negative over the set union (more versions excluded)
//	mixed polarity       -> no single-term representation (ok is false)
//
// Mixed polarity can still be expressed as two terms; callers that need that
// case keep both terms rather than calling Intersect.
func (t Term) Intersect(other Term) (Term, bool) {
	if t.Name != other.Name {
		return Term{}, false
	}

	switch {
	case t.Positive && other.Positive:
		a, okA := t.AllowedSet()
		b, okB := other.AllowedSet()
		if !okA || !okB {
			return Term{}, false
		}
		return termOverAllowedSet(t.Name, a.Intersection(b)), true
	case !t.Positive && !other.Positive:
		a, okA := t.ForbiddenSet()
		b, okB := other.ForbiddenSet()
		if !okA || !okB {
			return Term{}, false
		}
		return termOverForbiddenSet(t.Name, a.Union(b)), true
	default:
		return Term{}, false
	}
}

// Apply narrows an already-allowed version set by this term's constraint,
// the per-package accumulation a PartialSolution does on every derivation.
func (t Term) Apply(current VersionSet) (VersionSet, error) {
	if current == nil {
		current = FullVersionSet()
	}

	if t.Positive {
		allowed, ok := t.AllowedSet()
		if !ok {
			return nil, fmt.Errorf("term %s does not support positive conversion", t)
		}
		return current.Intersection(allowed), nil
	}

	forbidden, ok := t.ForbiddenSet()
	if !ok {
		return nil, fmt.Errorf("term %s does not support negative conversion", t)
	}
	return current.Intersection(forbidden.Complement()), nil
}

// termOverAllowedSet builds the positive term whose AllowedSet is exactly
// set, collapsing to an EqualsCondition when set is a single version so the
// resulting term prints and compares the same way a directly-parsed "== v"
// constraint would.
func termOverAllowedSet(name Name, set VersionSet) Term {
	if set == nil {
		set = FullVersionSet()
	}
	if version, ok := singletonVersionFromSet(set); ok {
		return NewTerm(name, EqualsCondition{Version: version})
	}
	return NewTerm(name, NewVersionSetCondition(set))
}

// termOverForbiddenSet builds the negative term whose ForbiddenSet is set.
func termOverForbiddenSet(name Name, set VersionSet) Term {
	if set == nil {
		set = FullVersionSet()
	}
	return NewNegativeTerm(name, NewVersionSetCondition(set))
}

// versionSetsEqual reports whether a and b denote the same version set via
// mutual subset checks, the only equality PubGrub's Range algebra guarantees
// without relying on a shared canonical representation across VersionSet
// implementations.
func versionSetsEqual(a, b VersionSet) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsSubset(b) && b.IsSubset(a)
}
