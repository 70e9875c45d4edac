package preprocessing

import (
	"testing"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

func trainColumns() []Column {
	return []Column{
		{Name: "age", Kind: Numeric},
		{Name: "workclass", Kind: Categorical},
	}
}

func trainRows() [][]string {
	return [][]string{
		{"25", "Private"},
		{"38", "Self-emp"},
		{"47", "Government"},
		{"52", "Private"},
	}
}

func TestOneHotEncoderFitTransform(t *testing.T) {
	enc := NewOneHotEncoder()
	X, err := enc.FitTransform(trainColumns(), trainRows())
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Sorted categories: Government, Private, Self-emp. Government is the
	// dropped reference, so the output is age + 2 indicators.
	wantNames := []string{"age", "workclass_Private", "workclass_Self_emp"}
	names := enc.FeatureNames()
	if len(names) != len(wantNames) {
		t.Fatalf("feature names = %v, want %v", names, wantNames)
	}
	for i := range wantNames {
		if names[i] != wantNames[i] {
			t.Errorf("feature name[%d] = %q, want %q", i, names[i], wantNames[i])
		}
	}

	r, c := X.Dims()
	if r != 4 || c != 3 {
		t.Fatalf("encoded shape = (%d,%d), want (4,3)", r, c)
	}

	// Row 0: Private -> (25, 1, 0). Row 2: Government (reference) -> (47, 0, 0).
	checks := []struct {
		i, j int
		want float64
	}{
		{0, 0, 25}, {0, 1, 1}, {0, 2, 0},
		{1, 1, 0}, {1, 2, 1},
		{2, 0, 47}, {2, 1, 0}, {2, 2, 0},
		{3, 1, 1}, {3, 2, 0},
	}
	for _, ch := range checks {
		if got := X.At(ch.i, ch.j); got != ch.want {
			t.Errorf("X[%d,%d] = %v, want %v", ch.i, ch.j, got, ch.want)
		}
	}
}

func TestOneHotEncoderUnseenCategory(t *testing.T) {
	enc := NewOneHotEncoder()
	if err := enc.Fit(trainColumns(), trainRows()); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	_, err := enc.Transform([][]string{{"31", "Unemployed"}})
	if err == nil {
		t.Fatal("expected SchemaError for unseen category")
	}
	var se *scierrors.SchemaError
	if !scierrors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
	if se.Field != "workclass" {
		t.Errorf("SchemaError field = %q, want workclass", se.Field)
	}
}

func TestOneHotEncoderNameCollision(t *testing.T) {
	cols := []Column{{Name: "job", Kind: Categorical}}
	// "REF" sorts first and becomes the dropped reference; "a b" and "a-b"
	// both sanitize to the same indicator name "job_a_b".
	rows := [][]string{
		{"REF"},
		{"a b"},
		{"a-b"},
	}

	enc := NewOneHotEncoder()
	err := enc.Fit(cols, rows)
	if err == nil {
		t.Fatal("expected NameCollisionError")
	}
	var nc *scierrors.NameCollisionError
	if !scierrors.As(err, &nc) {
		t.Fatalf("expected NameCollisionError, got %T: %v", err, err)
	}
	if nc.Name != "job_a_b" {
		t.Errorf("colliding name = %q, want job_a_b", nc.Name)
	}
	if enc.IsFitted() {
		t.Error("encoder must not be marked fitted after a collision")
	}
}

func TestOneHotEncoderNotFitted(t *testing.T) {
	enc := NewOneHotEncoder()
	_, err := enc.Transform([][]string{{"1", "x"}})
	var nf *scierrors.NotFittedError
	if !scierrors.As(err, &nf) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
}

func TestOneHotEncoderNonNumericValue(t *testing.T) {
	enc := NewOneHotEncoder()
	if err := enc.Fit(trainColumns(), trainRows()); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	_, err := enc.Transform([][]string{{"not-a-number", "Private"}})
	var se *scierrors.SchemaError
	if !scierrors.As(err, &se) {
		t.Fatalf("expected SchemaError for non-numeric value, got %v", err)
	}
}
