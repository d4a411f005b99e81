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

package pubgrub_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pubgrub-go/pubgrub"
)

// solutionStrings reduces a Solution to a sorted "name@version" slice so
// go-cmp can diff it without needing to teach cmp about the unexported
// internals of Name (unique.Handle) or the Version interface.
func solutionStrings(t *testing.T, sol pubgrub.Solution) []string {
	t.Helper()
	out := make([]string, 0, len(sol))
	for nv := range sol.All() {
		if nv.Name == pubgrub.MakeName("$$root") {
			continue
		}
		out = append(out, nv.Name.Value()+"@"+nv.Version.String())
	}
	sort.Strings(out)
	return out
}

func TestRegistrySource_SolutionMatchesExpected(t *testing.T) {
	rs, err := pubgrub.LoadRegistryFile("examples/simple.json")
	if err != nil {
		t.Fatalf("LoadRegistryFile failed: %v", err)
	}

	root := pubgrub.NewRootSource()
	appVersion, err := pubgrub.ParseSemanticVersion("1.0.0")
	if err != nil {
		t.Fatalf("failed to parse app version: %v", err)
	}
	root.AddPackage(pubgrub.MakeName("app"), pubgrub.EqualsCondition{Version: appVersion})

	solver := pubgrub.NewSolver(root, rs)
	solution, err := solver.Solve(root.Term())
	if err != nil {
		t.Fatalf("solver failed: %v", err)
	}

	want := []string{
		"app@1.0.0",
		"left-pad@1.2.0",
		"logger@2.1.0",
	}
	got := solutionStrings(t, solution)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolved solution mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistrySource_SolutionStableAcrossStrategies(t *testing.T) {
	rs, err := pubgrub.LoadRegistryFile("examples/simple.json")
	if err != nil {
		t.Fatalf("LoadRegistryFile failed: %v", err)
	}

	root := pubgrub.NewRootSource()
	appVersion, _ := pubgrub.ParseSemanticVersion("1.0.0")
	root.AddPackage(pubgrub.MakeName("app"), pubgrub.EqualsCondition{Version: appVersion})

	fewest := pubgrub.NewSolverWithOptions([]pubgrub.Source{root, rs}, pubgrub.WithStrategy(pubgrub.FewestVersionsFirst()))
	fewestSolution, err := fewest.Solve(root.Term())
	if err != nil {
		t.Fatalf("fewest-versions-first solve failed: %v", err)
	}

	highest := pubgrub.NewSolverWithOptions([]pubgrub.Source{root, rs}, pubgrub.WithStrategy(pubgrub.HighestVersionFirst()))
	highestSolution, err := highest.Solve(root.Term())
	if err != nil {
		t.Fatalf("highest-version-first solve failed: %v", err)
	}

	if diff := cmp.Diff(solutionStrings(t, fewestSolution), solutionStrings(t, highestSolution)); diff != "" {
		t.Errorf("branching order changed the final solution (-fewest +highest):\n%s", diff)
	}
}
