package pubgrub

import "testing"

// parseRangeOrFail parses a range expression, failing the test immediately
// on a malformed input instead of letting every case check its own error.
func parseRangeOrFail(t *testing.T, expr string) VersionSet {
	t.Helper()
	set, err := ParseVersionRange(expr)
	if err != nil {
		t.Fatalf("ParseVersionRange(%q): %v", expr, err)
	}
	return set
}

func semverOrFail(t *testing.T, raw string) Version {
	t.Helper()
	v, err := ParseSemanticVersion(raw)
	if err != nil {
		t.Fatalf("ParseSemanticVersion(%q): %v", raw, err)
	}
	return v
}

func TestVersionSetContains(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		expr    string
		version string
		want    bool
	}{
		{"inclusive lower bound", ">=1.0.0", "1.0.0", true},
		{"below lower bound", ">=1.0.0", "0.9.9", false},
		{"within bounded range", ">=1.0.0, <2.0.0", "1.5.0", true},
		{"exclusive upper bound", ">=1.0.0, <2.0.0", "2.0.0", false},
		{"exact match", "==1.5.0", "1.5.0", true},
		{"exact mismatch", "==1.5.0", "1.5.1", false},
		{"negated match excluded", "!=1.5.0", "1.5.0", false},
		{"negated match allowed", "!=1.5.0", "1.6.0", true},
		{"second disjoint run", ">=1.0.0, <2.0.0 || >=3.0.0", "3.2.0", true},
		{"gap between disjoint runs", ">=1.0.0, <2.0.0 || >=3.0.0", "2.5.0", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := parseRangeOrFail(t, tc.expr)
			ver := semverOrFail(t, tc.version)
			if got := set.Contains(ver); got != tc.want {
				t.Fatalf("%s.Contains(%s) = %v, want %v", tc.expr, tc.version, got, tc.want)
			}
		})
	}
}

func TestVersionSetIntersectionAndUnion(t *testing.T) {
	t.Parallel()

	lower := parseRangeOrFail(t, ">=1.0.0, <2.0.0")
	upper := parseRangeOrFail(t, ">=1.5.0, <3.0.0")

	overlap := lower.Intersection(upper)
	if overlap.IsEmpty() {
		t.Fatal("overlapping ranges should produce a non-empty intersection")
	}
	if !overlap.Contains(semverOrFail(t, "1.7.0")) {
		t.Fatal("intersection should contain a version inside both ranges")
	}
	if overlap.Contains(semverOrFail(t, "2.5.0")) {
		t.Fatal("intersection should exclude a version outside the lower range")
	}

	combined := lower.Union(upper)
	if !combined.Contains(semverOrFail(t, "2.5.0")) {
		t.Fatal("union should contain a version covered by either range")
	}
}

func TestVersionSetComplement(t *testing.T) {
	t.Parallel()

	bounded := parseRangeOrFail(t, ">=1.0.0, <2.0.0")
	outside := bounded.Complement()

	if outside.Contains(semverOrFail(t, "1.5.0")) {
		t.Fatal("complement must not contain a version inside the original range")
	}
	if !outside.Contains(semverOrFail(t, "2.5.0")) {
		t.Fatal("complement must contain a version outside the original range")
	}
}

func TestVersionSetConditionSatisfies(t *testing.T) {
	t.Parallel()

	cond := NewVersionSetCondition(parseRangeOrFail(t, ">=1.0.0, <2.0.0"))

	if !cond.Satisfies(semverOrFail(t, "1.2.3")) {
		t.Fatal("condition should accept a version within its range")
	}
	if cond.Satisfies(semverOrFail(t, "2.1.0")) {
		t.Fatal("condition should reject a version past its upper bound")
	}
}

func TestVersionSetConditionNilReceiver(t *testing.T) {
	t.Parallel()

	var cond *VersionSetCondition
	if cond.String() != "*" {
		t.Fatalf("nil condition should render as *, got %q", cond.String())
	}
	if !cond.Satisfies(semverOrFail(t, "1.2.3")) {
		t.Fatal("nil condition should accept every version")
	}
}

func TestVersionSetString(t *testing.T) {
	t.Parallel()

	roundTrips := []string{
		"*",
		">=1.0.0",
		">=1.0.0, <2.0.0",
		">=1.0.0, <2.0.0 || >=3.0.0",
	}

	for _, expr := range roundTrips {
		t.Run(expr, func(t *testing.T) {
			set := parseRangeOrFail(t, expr)
			if got := set.String(); got != expr {
				t.Fatalf("String() round-trip = %q, want %q", got, expr)
			}
		})
	}
}

func TestVersionSetSingleton(t *testing.T) {
	t.Parallel()

	v := semverOrFail(t, "1.2.3")
	singleton := EmptyVersionSet().Singleton(v)

	if !singleton.Contains(v) {
		t.Fatal("singleton must contain its own version")
	}
	if singleton.Contains(semverOrFail(t, "1.2.4")) {
		t.Fatal("singleton must reject every other version")
	}
	if got := singleton.String(); got != "==1.2.3" {
		t.Fatalf("singleton string = %q, want ==1.2.3", got)
	}
}

func TestEmptyAndFullVersionSet(t *testing.T) {
	t.Parallel()

	v := semverOrFail(t, "1.2.3")

	empty := EmptyVersionSet()
	if !empty.IsEmpty() || empty.Contains(v) {
		t.Fatal("EmptyVersionSet must be empty and contain nothing")
	}

	full := FullVersionSet()
	if full.IsEmpty() || !full.Contains(v) || full.String() != "*" {
		t.Fatalf("FullVersionSet must contain everything and render as *, got %q", full.String())
	}
}

func TestVersionSetIsSubset(t *testing.T) {
	t.Parallel()

	narrow := parseRangeOrFail(t, ">=1.5.0, <1.8.0")
	wide := parseRangeOrFail(t, ">=1.0.0, <2.0.0")
	disjoint := parseRangeOrFail(t, ">=2.0.0, <3.0.0")

	if !narrow.IsSubset(wide) {
		t.Fatal("narrow range should be a subset of the wider range containing it")
	}
	if wide.IsSubset(narrow) {
		t.Fatal("wider range should not be a subset of the narrower one")
	}
	if narrow.IsSubset(disjoint) {
		t.Fatal("disjoint ranges should never be subsets of each other")
	}
	if !EmptyVersionSet().IsSubset(narrow) {
		t.Fatal("the empty set is a subset of everything")
	}
}

func TestVersionSetIsDisjoint(t *testing.T) {
	t.Parallel()

	a := parseRangeOrFail(t, ">=1.0.0, <2.0.0")
	b := parseRangeOrFail(t, ">=2.0.0, <3.0.0")
	overlapping := parseRangeOrFail(t, ">=1.5.0, <2.5.0")

	if !a.IsDisjoint(b) {
		t.Fatal("adjacent non-overlapping ranges should be disjoint")
	}
	if a.IsDisjoint(overlapping) {
		t.Fatal("ranges sharing a version should not be disjoint")
	}
	if !EmptyVersionSet().IsDisjoint(a) {
		t.Fatal("the empty set is disjoint from everything")
	}
}

func TestParseVersionRangeRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	malformed := []string{">=1.0.0,", "|| >=1.0.0"}
	for _, expr := range malformed {
		t.Run(expr, func(t *testing.T) {
			if _, err := ParseVersionRange(expr); err == nil {
				t.Fatalf("expected a parse error for %q", expr)
			}
		})
	}
}
