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
	"context"
	"errors"
	"fmt"
)

// NoSolutionError is returned when version solving fails with detailed explanation
type NoSolutionError struct {
	// Incompatibility is the root cause of the failure
	Incompatibility *Incompatibility
	// Reporter is used to format the error message (defaults to DefaultReporter)
	Reporter Reporter
}

// Error implements the error interface
func (e *NoSolutionError) Error() string {
	if e.Incompatibility == nil {
		return "no solution found"
	}

	reporter := e.Reporter
	if reporter == nil {
		reporter = &DefaultReporter{}
	}

	return reporter.Report(e.Incompatibility)
}

// WithReporter returns a new error with a custom reporter
func (e *NoSolutionError) WithReporter(reporter Reporter) *NoSolutionError {
	return &NoSolutionError{
		Incompatibility: e.Incompatibility,
		Reporter:        reporter,
	}
}

// Unwrap returns the underlying error (for errors.Is/As compatibility)
func (e *NoSolutionError) Unwrap() error {
	return nil
}

// NewNoSolutionError creates a new NoSolutionError from an incompatibility
func NewNoSolutionError(incomp *Incompatibility) *NoSolutionError {
	return &NoSolutionError{
		Incompatibility: incomp,
		Reporter:        &DefaultReporter{},
	}
}

// VersionError represents an error related to version constraints
type VersionError struct {
	Package Name
	Message string
}

// Error implements the error interface
func (e *VersionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Package.Value(), e.Message)
	}
	return fmt.Sprintf("version error for package %s", e.Package.Value())
}

// DependencyError represents an error while fetching dependencies
type DependencyError struct {
	Package Name
	Version Version
	Err     error
}

// Error implements the error interface
func (e *DependencyError) Error() string {
	return fmt.Sprintf("failed to get dependencies for %s %s: %v", e.Package.Value(), e.Version, e.Err)
}

// Unwrap returns the underlying error
func (e *DependencyError) Unwrap() error {
	return e.Err
}

// PackageNotFoundError indicates that a package is absent from the source.
type PackageNotFoundError struct {
	Package Name
}

// Error implements the error interface.
func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %s not found", e.Package.Value())
}

// PackageVersionNotFoundError indicates a specific version is unavailable.
type PackageVersionNotFoundError struct {
	Package Name
	Version Version
}

// Error implements the error interface.
func (e *PackageVersionNotFoundError) Error() string {
	return fmt.Sprintf("package %s version %s not found", e.Package.Value(), e.Version)
}

// ErrNoSolutionFound is a simple error returned when solving fails
// without incompatibility tracking. For detailed error messages with
// derivation trees, enable WithIncompatibilityTracking and use NoSolutionError.
//
// Example:
//
//	solver := NewSolver(root, source) // Tracking disabled by default
//	_, err := solver.Solve(root.Term())
//	if err != nil {
//	    var nsf ErrNoSolutionFound
//	    if errors.As(err, &nsf) {
//	        // Handle no solution case; nsf.Term is the failing term
//	    }
//	}
type ErrNoSolutionFound struct {
	Term Term
}

// Error implements the error interface.
func (e ErrNoSolutionFound) Error() string {
	return fmt.Sprintf("no solution found for %s", e.Term)
}

// ErrIterationLimit is returned when the solver exceeds its maximum iteration count.
// This prevents infinite loops in pathological cases. Configure with WithMaxSteps(0)
// to disable the limit (not recommended for untrusted inputs).
//
// Example:
//
//	solver := NewSolverWithOptions(
//	    []Source{root, source},
//	    WithMaxSteps(1000),
//	)
//	_, err := solver.Solve(root.Term())
//	if iterErr, ok := err.(ErrIterationLimit); ok {
//	    log.Printf("Solver exceeded %d steps", iterErr.Steps)
//	}
type ErrIterationLimit struct {
	Steps int
}

// Error implements the error interface.
func (e ErrIterationLimit) Error() string {
	if e.Steps <= 0 {
		return "solver exceeded iteration limit"
	}
	return fmt.Sprintf("solver exceeded iteration limit after %d steps", e.Steps)
}

// SelfDependencyError is returned when a package version declares a dependency
// on itself, which can never be satisfied by the solver's decision machinery.
type SelfDependencyError struct {
	Package Name
	Version Version
}

// Error implements the error interface.
func (e *SelfDependencyError) Error() string {
	return fmt.Sprintf("%s %s depends on itself", e.Package.Value(), e.Version)
}

// DependencyOnEmptySetError is returned when a package version depends on a
// version range that can never be satisfied (an empty set), which signals a
// malformed registry entry rather than a resolvable conflict.
type DependencyOnEmptySetError struct {
	Package   Name
	Version   Version
	Dependent Name
}

// Error implements the error interface.
func (e *DependencyOnEmptySetError) Error() string {
	return fmt.Sprintf("%s %s depends on %s with an empty version range", e.Package.Value(), e.Version, e.Dependent.Value())
}

// ChoosePackageVersionError wraps a failure encountered while the configured
// PackageStrategy or source lookup was choosing a version to decide on.
type ChoosePackageVersionError struct {
	Package Name
	Err     error
}

// Error implements the error interface.
func (e *ChoosePackageVersionError) Error() string {
	return fmt.Sprintf("failed to choose a version for %s: %v", e.Package.Value(), e.Err)
}

// Unwrap returns the underlying error.
func (e *ChoosePackageVersionError) Unwrap() error {
	return e.Err
}

// CancellationError wraps a context cancellation or deadline error
// encountered mid-solve, so callers can distinguish it from a genuine
// no-solution result.
type CancellationError struct {
	Err error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("solving canceled: %v", e.Err)
}

// Unwrap returns the underlying context error.
func (e *CancellationError) Unwrap() error {
	return e.Err
}

// InvariantError reports a violation of one of the solver's internal
// invariants (e.g. an incompatibility that should have been satisfied but
// wasn't). Seeing this means the algorithm's bookkeeping has a bug; it is
// not expected to occur from any external input.
type InvariantError struct {
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("solver invariant violated: %s", e.Message)
}

// ErrDependenciesUnavailable is a sentinel a Source can wrap and return from
// GetDependencies to tell the solver "I don't know this package's
// dependencies" (e.g. a registry lookup that timed out or the package is
// unlisted) as distinct from a hard I/O failure. The solver records an
// UnavailableDependencies incompatibility and keeps searching instead of
// aborting the whole solve.
var ErrDependenciesUnavailable = errors.New("dependencies unavailable")

// asCancellation converts a context error into a *CancellationError, or
// returns nil if ctx hasn't been canceled.
func asCancellation(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CancellationError{Err: err}
	}
	return nil
}

var (
	_ error = (*NoSolutionError)(nil)
	_ error = (*VersionError)(nil)
	_ error = (*DependencyError)(nil)
	_ error = (*PackageNotFoundError)(nil)
	_ error = (*PackageVersionNotFoundError)(nil)
	_ error = ErrNoSolutionFound{}
	_ error = ErrIterationLimit{}
	_ error = (*SelfDependencyError)(nil)
	_ error = (*DependencyOnEmptySetError)(nil)
	_ error = (*ChoosePackageVersionError)(nil)
	_ error = (*CancellationError)(nil)
	_ error = (*InvariantError)(nil)
)
