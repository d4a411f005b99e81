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
	"strings"
)

// Reporter is an interface for formatting incompatibilities into error messages
type Reporter interface {
	// Report generates a human-readable error message from an incompatibility
	Report(incomp *Incompatibility) string
}

// DefaultReporter produces readable error messages with hierarchical structure
type DefaultReporter struct{}

// Report implements Reporter
func (r *DefaultReporter) Report(incomp *Incompatibility) string {
	if incomp == nil {
		return "no solution found"
	}

	ids := assignSharedIDs(incomp)
	var lines []string
	r.reportIncompatibility(incomp, &lines, 0, make(map[*Incompatibility]bool), ids)
	return strings.Join(lines, "\n")
}

// reportIncompatibility walks the derivation tree depth-first. When a node
// appears more than once (ids holds an entry for it), the first visit labels
// its conclusion with "(N)" and every later visit prints a "(see N above)"
// back-reference instead of re-expanding the subtree; this keeps diamond-shaped
// derivations (two conflicts sharing a common cause) from rendering the same
// explanation twice.
func (r *DefaultReporter) reportIncompatibility(incomp *Incompatibility, lines *[]string, depth int, visited map[*Incompatibility]bool, ids map[*Incompatibility]int) {
	indent := strings.Repeat("  ", depth)

	if id, shared := ids[incomp]; shared {
		if visited[incomp] {
			*lines = append(*lines, fmt.Sprintf("%s(see %d above)", indent, id))
			return
		}
		visited[incomp] = true
	}

	switch incomp.Kind {
	case KindNoVersions:
		if len(incomp.Terms) > 0 {
			*lines = append(*lines, fmt.Sprintf("%sNo versions of %s satisfy the constraint", indent, incomp.Terms[0]))
		}

	case KindNotRoot:
		*lines = append(*lines, fmt.Sprintf("%s%s", indent, incomp.String()))

	case KindUnavailableDependencies:
		*lines = append(*lines, fmt.Sprintf("%s%s", indent, incomp.String()))

	case KindFromDependency:
		if len(incomp.Terms) == 2 {
			// Terms are {P@v, not D@d}, unnegate the dependency for display
			dep := incomp.Terms[1]
			if !dep.Positive {
				dep = dep.Negate()
			}
			*lines = append(*lines, fmt.Sprintf("%sBecause %s %s depends on %s",
				indent, incomp.Package.Value(), incomp.Version, dep))
		}

	case KindConflict:
		if incomp.Cause1 != nil && incomp.Cause2 != nil {
			*lines = append(*lines, fmt.Sprintf("%sBecause:", indent))
			r.reportIncompatibility(incomp.Cause1, lines, depth+1, visited, ids)
			*lines = append(*lines, fmt.Sprintf("%sand:", indent))
			r.reportIncompatibility(incomp.Cause2, lines, depth+1, visited, ids)

			label := ""
			if id, shared := ids[incomp]; shared {
				label = fmt.Sprintf(" (%d)", id)
			}

			// Explain the result
			if len(incomp.Terms) == 0 {
				*lines = append(*lines, fmt.Sprintf("%sversion solving has failed.%s", indent, label))
			} else if len(incomp.Terms) == 1 {
				*lines = append(*lines, fmt.Sprintf("%s%s is forbidden.%s", indent, incomp.Terms[0], label))
			} else {
				var termStrs []string
				for _, term := range incomp.Terms {
					termStrs = append(termStrs, term.String())
				}
				*lines = append(*lines, fmt.Sprintf("%sthese constraints conflict: %s%s",
					indent, strings.Join(termStrs, " and "), label))
			}
		}

	default:
		*lines = append(*lines, fmt.Sprintf("%s%s", indent, incomp.String()))
	}
}

// assignSharedIDs finds incompatibilities reachable more than once via
// Cause1/Cause2 edges and gives each a stable 1-based id in tree-order, so
// reporters can print a back-reference instead of re-expanding that subtree.
func assignSharedIDs(root *Incompatibility) map[*Incompatibility]int {
	counts := make(map[*Incompatibility]int)
	var count func(*Incompatibility)
	count = func(inc *Incompatibility) {
		if inc == nil {
			return
		}
		counts[inc]++
		if counts[inc] > 1 {
			return
		}
		if inc.Kind == KindConflict {
			count(inc.Cause1)
			count(inc.Cause2)
		}
	}
	count(root)

	ids := make(map[*Incompatibility]int)
	seen := make(map[*Incompatibility]bool)
	next := 1
	var walk func(*Incompatibility)
	walk = func(inc *Incompatibility) {
		if inc == nil || seen[inc] {
			return
		}
		seen[inc] = true
		if counts[inc] > 1 {
			ids[inc] = next
			next++
		}
		if inc.Kind == KindConflict {
			walk(inc.Cause1)
			walk(inc.Cause2)
		}
	}
	walk(root)
	return ids
}

// CollapseNoVersions folds a KindNoVersions leaf cause directly into its
// KindFromDependency sibling's message, turning:
//
//	Because no versions of foo >=2.0.0 exist
//	and bar 1.0.0 depends on foo >=2.0.0
//	bar 1.0.0 is forbidden.
//
// into the more compact "bar 1.0.0 depends on foo >=2.0.0, for which no
// versions exist" and is otherwise a no-op. It returns a new tree; the input
// is left unmodified.
func CollapseNoVersions(incomp *Incompatibility) *Incompatibility {
	if incomp == nil || incomp.Kind != KindConflict {
		return incomp
	}

	collapsedCause1 := CollapseNoVersions(incomp.Cause1)
	collapsedCause2 := CollapseNoVersions(incomp.Cause2)

	if merged, ok := mergeNoVersionsPair(collapsedCause1, collapsedCause2); ok {
		return merged
	}
	if merged, ok := mergeNoVersionsPair(collapsedCause2, collapsedCause1); ok {
		return merged
	}

	clone := *incomp
	clone.Cause1 = collapsedCause1
	clone.Cause2 = collapsedCause2
	return &clone
}

// mergeNoVersionsPair merges a KindNoVersions leaf into its KindFromDependency
// sibling when the leaf's single term is exactly the dependency the sibling
// introduces, returning the merged node and true on success.
func mergeNoVersionsPair(noVersions, dependency *Incompatibility) (*Incompatibility, bool) {
	if noVersions == nil || dependency == nil {
		return nil, false
	}
	if noVersions.Kind != KindNoVersions || dependency.Kind != KindFromDependency {
		return nil, false
	}
	if len(noVersions.Terms) != 1 || len(dependency.Terms) != 2 {
		return nil, false
	}

	dep := dependency.Terms[1]
	if !sameConstraint(noVersions.Terms[0], dep) {
		return nil, false
	}

	merged := *dependency
	merged.Kind = KindNoVersions
	return &merged, true
}

// sameConstraint reports whether two terms name the same package and place
// the same positive/negative version constraint on it.
func sameConstraint(a, b Term) bool {
	if a.Name != b.Name {
		return false
	}
	if a.Positive == b.Positive {
		return a.String() == b.String()
	}
	return a.Negate().String() == b.String()
}

// CollapsedReporter produces a more compact error format
type CollapsedReporter struct{}

// Report implements Reporter with a collapsed format
func (r *CollapsedReporter) Report(incomp *Incompatibility) string {
	if incomp == nil {
		return "no solution found"
	}

	ids := assignSharedIDs(incomp)
	var lines []string
	r.collectLines(incomp, &lines, make(map[*Incompatibility]bool), ids)

	if len(lines) == 0 {
		return "version solving failed"
	}

	// Join with "And because" for readability
	result := lines[0]
	for i := 1; i < len(lines); i++ {
		result += "\nAnd because " + lines[i]
	}
	return result
}

func (r *CollapsedReporter) collectLines(incomp *Incompatibility, lines *[]string, visited map[*Incompatibility]bool, ids map[*Incompatibility]int) {
	if id, shared := ids[incomp]; shared {
		if visited[incomp] {
			*lines = append(*lines, fmt.Sprintf("(see %d above)", id))
			return
		}
		visited[incomp] = true
	}

	switch incomp.Kind {
	case KindNoVersions:
		if len(incomp.Terms) > 0 {
			*lines = append(*lines, fmt.Sprintf("no versions of %s satisfy the constraint", incomp.Terms[0]))
		}

	case KindNotRoot, KindUnavailableDependencies:
		*lines = append(*lines, incomp.String())

	case KindFromDependency:
		if len(incomp.Terms) == 2 {
			// Terms are {P@v, not D@d}, unnegate the dependency for display
			dep := incomp.Terms[1]
			if !dep.Positive {
				dep = dep.Negate()
			}
			*lines = append(*lines, fmt.Sprintf("%s %s depends on %s",
				incomp.Package.Value(), incomp.Version, dep))
		}

	case KindConflict:
		if incomp.Cause1 != nil && incomp.Cause2 != nil {
			// Recursively collect from causes
			r.collectLines(incomp.Cause1, lines, visited, ids)
			r.collectLines(incomp.Cause2, lines, visited, ids)

			label := ""
			if id, shared := ids[incomp]; shared {
				label = fmt.Sprintf(" (%d)", id)
			}

			// Add conclusion
			if len(incomp.Terms) == 1 {
				*lines = append(*lines, fmt.Sprintf("%s is forbidden%s", incomp.Terms[0], label))
			} else if len(incomp.Terms) > 1 {
				var termStrs []string
				for _, term := range incomp.Terms {
					termStrs = append(termStrs, term.String())
				}
				*lines = append(*lines, fmt.Sprintf("these constraints conflict: %s%s",
					strings.Join(termStrs, " and "), label))
			}
		}

	default:
		*lines = append(*lines, incomp.String())
	}
}
