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
	"errors"
	"fmt"
	"strings"
)

// errNoAllowedVersions signals that a derivation narrowed a package's
// allowed set to nothing, which the caller turns into a conflict
// incompatibility rather than a Go error returned to the solver's caller.
var errNoAllowedVersions = errors.New("no versions satisfy constraints")

// partialSolution is the backtrackable log of every decision and derivation
// the solver has made so far. It is the single source of truth for "what do
// we currently know": the allowed set for a package is always recomputed by
// folding every assignment made for that package in
// chronological order, never stored as a separate mutable field elsewhere.
//
// Assignments are kept in two views over the same backing records: a
// chronological log for satisfier search and a per-package stack for O(stack
// depth) allowed-set queries and backtracking.
type partialSolution struct {
	log         []*assignment          // every assignment, oldest first
	byPackage   map[Name][]*assignment // same assignments, grouped per package
	level       int                    // current decision level
	nextIndex   int                    // monotonically increasing assignment index
	root        Name                   // root package, exempt from completeness checks
}

// newPartialSolution returns an empty log rooted at root.
func newPartialSolution(root Name) *partialSolution {
	return &partialSolution{
		log:       make([]*assignment, 0),
		byPackage: make(map[Name][]*assignment),
		root:      root,
	}
}

// record appends assign to both the chronological log and its package's
// stack, stamping it with the next assignment index.
func (ps *partialSolution) record(assign *assignment) {
	assign.index = ps.nextIndex
	ps.nextIndex++
	ps.log = append(ps.log, assign)
	ps.byPackage[assign.name] = append(ps.byPackage[assign.name], assign)
}

// decisionAt builds the assignment for picking version at the given
// decision level: a single-version allowed set and an equality term.
func (ps *partialSolution) decisionAt(name Name, version Version, level int) *assignment {
	return &assignment{
		name:          name,
		term:          NewTerm(name, EqualsCondition{Version: version}),
		kind:          assignmentDecision,
		allowed:       (&VersionIntervalSet{}).Singleton(version),
		version:       version,
		decisionLevel: level,
	}
}

// addDecision records a version selection as a new decision level.
func (ps *partialSolution) addDecision(name Name, version Version) *assignment {
	ps.level++
	assign := ps.decisionAt(name, version, ps.level)
	ps.record(assign)
	return assign
}

// seedRoot records the root package's decision at level 0, the starting
// point every solve begins from.
func (ps *partialSolution) seedRoot(name Name, version Version) *assignment {
	assign := ps.decisionAt(name, version, 0)
	ps.record(assign)
	return assign
}

// stackFor returns the recorded assignments for name, oldest first.
func (ps *partialSolution) stackFor(name Name) []*assignment {
	return ps.byPackage[name]
}

// latest returns the most recent assignment recorded for name, or nil if
// it has never been constrained.
func (ps *partialSolution) latest(name Name) *assignment {
	stack := ps.stackFor(name)
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// hasAssignments reports whether name has ever been constrained.
func (ps *partialSolution) hasAssignments(name Name) bool {
	return len(ps.byPackage[name]) > 0
}

// allowedSet folds every assignment recorded for name into the version set
// still permitted, starting from "anything goes" when nothing constrains it
// yet. This is PubGrub's term_intersection_for_package: each positive
// assignment narrows the set further, each negative assignment removes its
// forbidden range.
func (ps *partialSolution) allowedSet(name Name) VersionSet {
	current := FullVersionSet()
	for _, assign := range ps.stackFor(name) {
		switch {
		case assign.term.Positive && assign.allowed != nil:
			current = current.Intersection(assign.allowed)
		case !assign.term.Positive && assign.forbidden != nil:
			current = current.Intersection(assign.forbidden.Complement())
		}
	}
	return current
}

// addDerivation folds a newly-derived term into the package's running
// allowed set, recording one or two assignments depending on polarity.
//
// A positive derivation narrows the allowed set directly, so one assignment
// carries the tightened set. A negative derivation only removes a forbidden
// range; whenever that actually shrinks what's allowed, a second "shadow"
// assignment records the resulting positive allowed set so that later
// satisfier search (which compares allowed sets, not polarities) sees the
// tightening. Returns the assignment callers should trace/enqueue on, and
// whether the allowed set actually changed.
func (ps *partialSolution) addDerivation(term Term, cause *Incompatibility) (*assignment, bool, error) {
	before := ps.allowedSet(term.Name)
	after, err := term.Apply(before)
	if err != nil {
		return nil, false, err
	}
	if after.IsEmpty() {
		return nil, false, errNoAllowedVersions
	}
	changed := !versionSetsEqual(before, after)

	primary := &assignment{
		name:          term.Name,
		term:          term,
		kind:          assignmentDerivation,
		cause:         cause,
		decisionLevel: ps.level,
	}
	if term.Positive {
		primary.allowed = after
	} else {
		forbidden, ok := term.ForbiddenSet()
		if !ok {
			return nil, false, errors.New("unable to compute forbidden set for term")
		}
		primary.forbidden = forbidden
	}
	ps.record(primary)

	if !changed || term.Positive {
		return primary, changed, nil
	}

	shadow := &assignment{
		name:          term.Name,
		term:          termOverAllowedSet(term.Name, after),
		kind:          assignmentDerivation,
		allowed:       after,
		cause:         cause,
		decisionLevel: ps.level,
	}
	ps.record(shadow)
	return shadow, true, nil
}

// backtrack discards every assignment made above level, the mechanism that
// undoes both decisions and their downstream derivations in one step.
func (ps *partialSolution) backtrack(level int) {
	if level < 0 {
		level = 0
	}

	for len(ps.log) > 0 {
		last := ps.log[len(ps.log)-1]
		if last.decisionLevel <= level {
			break
		}
		ps.log = ps.log[:len(ps.log)-1]

		stack := ps.byPackage[last.name]
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			delete(ps.byPackage, last.name)
		} else {
			ps.byPackage[last.name] = stack
		}
	}

	ps.level = level
}

// hasDecision reports whether name has a recorded version selection.
func (ps *partialSolution) hasDecision(name Name) bool {
	for _, assign := range ps.stackFor(name) {
		if assign.isDecision() {
			return true
		}
	}
	return false
}

// isComplete reports whether every non-root package with an assignment has
// been decided, meaning the solve loop can stop and build a solution.
func (ps *partialSolution) isComplete() bool {
	for name := range ps.byPackage {
		if name == ps.root {
			continue
		}
		if !ps.hasDecision(name) {
			return false
		}
	}
	return true
}

// pickablePackages walks the log once and returns every non-root package
// encountered, in first-seen order, whether or not it already has a
// decision. Both nextDecisionCandidate and pendingPackages are views over
// this single pass so they can't disagree on ordering.
func (ps *partialSolution) pickablePackages() []Name {
	seen := make(map[Name]bool)
	order := make([]Name, 0)
	for _, assign := range ps.log {
		if assign.name == ps.root || seen[assign.name] {
			continue
		}
		seen[assign.name] = true
		order = append(order, assign.name)
	}
	return order
}

// nextDecisionCandidate returns the first package (in assignment order)
// that still needs a version decision.
func (ps *partialSolution) nextDecisionCandidate() (Name, bool) {
	for _, name := range ps.pickablePackages() {
		if !ps.hasDecision(name) {
			return name, true
		}
	}
	return EmptyName(), false
}

// pendingPackages lists every package awaiting a decision, used by
// strategies that branch on the most-constrained package rather than
// assignment order.
func (ps *partialSolution) pendingPackages() []Name {
	pending := make([]Name, 0)
	for _, name := range ps.pickablePackages() {
		if !ps.hasDecision(name) {
			pending = append(pending, name)
		}
	}
	return pending
}

// satisfier performs the CDCL satisfier search: for each term in inc, find
// the most recent assignment to that term's package that satisfies it, then
// return whichever such assignment has the highest chronological index
// (i.e. was made last). That assignment is the one conflict resolution
// pivots on.
func (ps *partialSolution) satisfier(inc *Incompatibility) *assignment {
	var chosen *assignment

	for _, term := range inc.Terms {
		stack := ps.stackFor(term.Name)
		for i := len(stack) - 1; i >= 0; i-- {
			assign := stack[i]
			if !assign.satisfies(term) {
				continue
			}
			if chosen == nil || assign.index > chosen.index {
				chosen = assign
			}
			break
		}
	}

	return chosen
}

// previousDecisionLevel returns the highest decision level, among
// assignments other than satisfier that satisfy a term of inc, that the
// solver should backtrack to: the level just before the conflict became
// inevitable.
func (ps *partialSolution) previousDecisionLevel(inc *Incompatibility, satisfier *assignment) int {
	level := 0

	for _, term := range inc.Terms {
		for _, assign := range ps.stackFor(term.Name) {
			if assign == satisfier {
				continue
			}
			if assign.satisfies(term) && assign.decisionLevel > level {
				level = assign.decisionLevel
			}
		}
	}

	return level
}

// buildSolution collects the first decision recorded per package (root
// included) into the final package/version assignment, in decision order.
func (ps *partialSolution) buildSolution() Solution {
	result := make([]NameVersion, 0)
	seen := make(map[Name]bool)

	for _, assign := range ps.log {
		if !assign.isDecision() || seen[assign.name] {
			continue
		}
		seen[assign.name] = true
		result = append(result, NameVersion{Name: assign.name, Version: assign.version})
	}

	return result
}

// snapshot renders the whole log for debug logging around backtracking.
func (ps *partialSolution) snapshot() string {
	var b strings.Builder
	fmt.Fprintf(&b, "decision_level=%d next_index=%d assignments=%d\n", ps.level, ps.nextIndex, len(ps.log))
	for _, assign := range ps.log {
		fmt.Fprintf(&b, "  %s\n", assign.describe())
	}
	return b.String()
}
