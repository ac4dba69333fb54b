package baseline

import (
	"errors"
	"math"
	"testing"
)

const testDataset = `
version: "test.1"
reference_domain: blog
domains:
  global:
    Analytic: {mean: 50.0, stdev: 10.0}
    i:        {mean: 5.0, stdev: 2.0}
    flat:     {mean: 3.0, stdev: 0.0}
  blog:
    Analytic: {mean: 60.0, stdev: 12.0}
    i:        {mean: 4.0, stdev: 1.5}
  tweets:
    Analytic: {mean: 45.0, stdev: 15.0}
    i:        {mean: 6.0, stdev: 2.5}
`

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Load([]byte(testDataset))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestStats_Z_ZeroStdev(t *testing.T) {
	st := Stats{Mean: 3.0, Stdev: 0}
	if got := st.Z(99.0); got != 0 {
		t.Errorf("Z with zero stdev = %v, want 0", got)
	}
}

func TestStats_Z(t *testing.T) {
	st := Stats{Mean: 50, Stdev: 10}
	if got := st.Z(65); got != 1.5 {
		t.Errorf("Z(65) = %v, want 1.5", got)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no version", "reference_domain: blog\ndomains:\n  global:\n    a: {mean: 1, stdev: 1}\n  blog:\n    a: {mean: 1, stdev: 1}\n"},
		{"no global", "version: v\nreference_domain: blog\ndomains:\n  blog:\n    a: {mean: 1, stdev: 1}\n"},
		{"no reference table", "version: v\nreference_domain: blog\ndomains:\n  global:\n    a: {mean: 1, stdev: 1}\n"},
		{"negative stdev", "version: v\nreference_domain: global\ndomains:\n  global:\n    a: {mean: 1, stdev: -1}\n"},
		{"not yaml", "{{{{"},
	}
	for _, c := range cases {
		_, err := Load([]byte(c.yaml))
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("%s: Load error = %v, want ErrUnavailable", c.name, err)
		}
	}
}

func TestResolve_Fallback(t *testing.T) {
	s := testStore(t)

	resolved, _, fellBack := s.Resolve("tweets")
	if resolved != "tweets" || fellBack {
		t.Errorf("Resolve(tweets) = %q fellBack=%v, want tweets false", resolved, fellBack)
	}

	resolved, table, fellBack := s.Resolve("channel_A")
	if resolved != GlobalDomain || !fellBack {
		t.Errorf("Resolve(channel_A) = %q fellBack=%v, want global true", resolved, fellBack)
	}
	if _, ok := table["Analytic"]; !ok {
		t.Error("Resolve(channel_A) did not return the global table")
	}

	resolved, _, fellBack = s.Resolve("")
	if resolved != GlobalDomain || fellBack {
		t.Errorf("Resolve(\"\") = %q fellBack=%v, want global false (implicit bucket)", resolved, fellBack)
	}
}

func TestComputeDeltas_ReferenceIsNoop(t *testing.T) {
	s := testStore(t)
	deltas := s.ComputeDeltas("blog")
	if len(deltas) != 0 {
		t.Errorf("ComputeDeltas(reference) = %v, want empty", deltas)
	}
}

func TestComputeDeltas(t *testing.T) {
	s := testStore(t)
	deltas := s.ComputeDeltas("tweets")
	// reference blog.Analytic 60 - tweets.Analytic 45 = 15
	if got := deltas["Analytic"]; got != 15.0 {
		t.Errorf("deltas[Analytic] = %v, want 15", got)
	}
	// blog.i 4 - tweets.i 6 = -2
	if got := deltas["i"]; got != -2.0 {
		t.Errorf("deltas[i] = %v, want -2", got)
	}
}

func TestComputeDeltaZ(t *testing.T) {
	s := testStore(t)
	dz := s.ComputeDeltaZ("tweets")
	// 15 / blog stdev 12 = 1.25
	if got := dz["Analytic"]; math.Abs(got-1.25) > 1e-9 {
		t.Errorf("deltaZ[Analytic] = %v, want 1.25", got)
	}
}

func TestReload_AtomicSwap(t *testing.T) {
	s := testStore(t)
	if s.Version() != "test.1" {
		t.Fatalf("Version = %q, want test.1", s.Version())
	}

	// A bad reload must leave the current dataset untouched.
	if err := s.Reload([]byte("version: ''")); err == nil {
		t.Fatal("Reload with invalid data: want error")
	}
	if s.Version() != "test.1" {
		t.Errorf("Version after failed reload = %q, want test.1", s.Version())
	}

	updated := `
version: "test.2"
reference_domain: global
domains:
  global:
    Analytic: {mean: 51.0, stdev: 9.0}
`
	if err := s.Reload([]byte(updated)); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Version() != "test.2" {
		t.Errorf("Version after reload = %q, want test.2", s.Version())
	}
	st, ok := s.Lookup(GlobalDomain, "Analytic")
	if !ok || st.Mean != 51.0 {
		t.Errorf("Lookup after reload = %+v ok=%v", st, ok)
	}
}

func TestDefault_Loads(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if s.ReferenceDomain() != "blog" {
		t.Errorf("ReferenceDomain = %q, want blog", s.ReferenceDomain())
	}
	if _, ok := s.Domain("tweets"); !ok {
		t.Error("embedded dataset missing tweets domain")
	}
	if len(s.Categories()) == 0 {
		t.Error("embedded dataset has no global categories")
	}
}
