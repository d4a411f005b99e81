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

	"github.com/Masterminds/semver/v3"
)

// SemanticVersion represents a semantic version (major.minor.patch[-prerelease][+build]).
// Parsing and ordering are delegated to github.com/Masterminds/semver/v3, which
// already implements the SemVer 2.0.0 precedence rules (including prerelease
// identifier comparison) correctly; this type exists only to satisfy the
// solver's Version interface.
type SemanticVersion struct {
	v *semver.Version
}

// ParseSemanticVersion parses a semantic version string.
// Supports formats like: "1.2.3", "1.2.3-alpha", "1.2.3-alpha.1", "1.2.3+build", "1.2.3-alpha+build".
func ParseSemanticVersion(s string) (*SemanticVersion, error) {
	parsed, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("invalid version format: %s: %w", s, err)
	}
	return &SemanticVersion{v: parsed}, nil
}

// String returns the string representation of the semantic version.
func (sv *SemanticVersion) String() string {
	if sv == nil || sv.v == nil {
		return ""
	}
	return sv.v.String()
}

// Major, Minor and Patch expose the numeric components for callers that
// want to build custom conditions (e.g. caret ranges) without re-parsing.
func (sv *SemanticVersion) Major() int64 { return sv.v.Major() }
func (sv *SemanticVersion) Minor() int64 { return sv.v.Minor() }
func (sv *SemanticVersion) Patch() int64 { return sv.v.Patch() }

// Sort implements Version.Sort.
// Returns:
//
//	-1 if sv < other
//	 0 if sv == other
//	 1 if sv > other
func (sv *SemanticVersion) Sort(other Version) int {
	otherSV, ok := other.(*SemanticVersion)
	if !ok {
		return compareStrings(sv.String(), other.String())
	}
	return sv.v.Compare(otherSV.v)
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// NewSemanticVersion creates a new SemanticVersion with the given major, minor, and patch versions.
// Panics if the resulting string is somehow not a valid version, which cannot
// happen for non-negative integer components.
func NewSemanticVersion(major, minor, patch int) *SemanticVersion {
	sv, err := ParseSemanticVersion(fmt.Sprintf("%d.%d.%d", major, minor, patch))
	if err != nil {
		panic(err)
	}
	return sv
}

// NewSemanticVersionWithPrerelease creates a new SemanticVersion with prerelease info.
func NewSemanticVersionWithPrerelease(major, minor, patch int, prerelease string) *SemanticVersion {
	s := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if prerelease != "" {
		s += "-" + prerelease
	}
	sv, err := ParseSemanticVersion(s)
	if err != nil {
		panic(err)
	}
	return sv
}

// Verify interface compliance
var (
	_ Version = (*SemanticVersion)(nil)
)
