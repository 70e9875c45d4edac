package fairness

import (
	"math"
	"testing"
)

func TestNewDemographicParity(t *testing.T) {
	m, err := NewDemographicParity([]string{"b", "a", "b", "a", "c"})
	if err != nil {
		t.Fatalf("NewDemographicParity failed: %v", err)
	}
	groups := m.Groups()
	if len(groups) != 3 || groups[0] != "a" || groups[1] != "b" || groups[2] != "c" {
		t.Errorf("Groups = %v, want [a b c]", groups)
	}
	if m.NumConstraints() != 6 {
		t.Errorf("NumConstraints = %d, want 6", m.NumConstraints())
	}

	if _, err := NewDemographicParity(nil); err == nil {
		t.Error("expected error for empty groups")
	}
}

func TestGroupIndexUnseenCategory(t *testing.T) {
	m, err := NewDemographicParity([]string{"a", "b"})
	if err != nil {
		t.Fatalf("NewDemographicParity failed: %v", err)
	}
	if _, err := m.GroupIndex([]string{"a", "z"}); err == nil {
		t.Error("expected error for unseen category")
	}
}

func TestGammaAndGap(t *testing.T) {
	// Group a: rate 1.0 (2/2), group b: rate 0.0 (0/2), overall 0.5.
	groups := []string{"a", "a", "b", "b"}
	m, err := NewDemographicParity(groups)
	if err != nil {
		t.Fatalf("NewDemographicParity failed: %v", err)
	}
	idx, err := m.GroupIndex(groups)
	if err != nil {
		t.Fatalf("GroupIndex failed: %v", err)
	}
	expected := []float64{1, 1, 0, 0}

	gamma := m.Gamma(expected, idx)
	want := []float64{0.5, -0.5, -0.5, 0.5}
	for j := range want {
		if math.Abs(gamma[j]-want[j]) > 1e-12 {
			t.Errorf("gamma[%d] = %v, want %v", j, gamma[j], want[j])
		}
	}

	if gap := m.Gap(expected, idx); math.Abs(gap-1.0) > 1e-12 {
		t.Errorf("Gap = %v, want 1.0", gap)
	}

	uniform := []float64{1, 0, 1, 0}
	if gap := m.Gap(uniform, idx); gap != 0 {
		t.Errorf("Gap for equal rates = %v, want 0", gap)
	}
}

func TestSignedCosts(t *testing.T) {
	groups := []string{"a", "a", "b", "b"}
	m, err := NewDemographicParity(groups)
	if err != nil {
		t.Fatalf("NewDemographicParity failed: %v", err)
	}
	idx, err := m.GroupIndex(groups)
	if err != nil {
		t.Fatalf("GroupIndex failed: %v", err)
	}

	// Only the positive-direction constraint of group a is active.
	lambda := []float64{2, 0, 0, 0}
	costs := m.SignedCosts(lambda, idx)

	// Rows of group a pay 2/n_a for their own rate minus 2/n for the
	// overall rate; rows of group b only pay the overall share.
	wantA := 2.0/2.0 - 2.0/4.0
	wantB := -2.0 / 4.0
	for i, g := range groups {
		want := wantA
		if g == "b" {
			want = wantB
		}
		if math.Abs(costs[i]-want) > 1e-12 {
			t.Errorf("costs[%d] = %v, want %v", i, costs[i], want)
		}
	}

	// A zero adversary imposes no cost.
	zero := m.SignedCosts(make([]float64, 4), idx)
	for i, c := range zero {
		if c != 0 {
			t.Errorf("zero-lambda cost[%d] = %v, want 0", i, c)
		}
	}
}
