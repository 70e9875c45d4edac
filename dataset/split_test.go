package dataset

import (
	"fmt"
	"math"
	"strings"
	"testing"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
	"github.com/SnoozeScript/aies-lab/preprocessing"
)

// syntheticTable builds a table with the given number of rows per sensitive
// category.
func syntheticTable(t *testing.T, perGroup map[string]int) *Table {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("x,group,label\n")
	i := 0
	for _, g := range []string{"A", "B", "C"} {
		n, ok := perGroup[g]
		if !ok {
			continue
		}
		for k := 0; k < n; k++ {
			label := "no"
			if k%2 == 0 {
				label = "yes"
			}
			fmt.Fprintf(&sb, "%d,%s,%s\n", i, g, label)
			i++
		}
	}
	tbl, err := ReadCSV(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return tbl
}

func proportions(t *testing.T, tbl *Table) map[string]float64 {
	t.Helper()
	col, err := tbl.Column("group")
	if err != nil {
		t.Fatal(err)
	}
	counts := make(map[string]float64)
	for _, g := range col {
		counts[g]++
	}
	for g := range counts {
		counts[g] /= float64(len(col))
	}
	return counts
}

func TestStratifiedSplitPreservesProportions(t *testing.T) {
	tbl := syntheticTable(t, map[string]int{"A": 120, "B": 60, "C": 20})
	full := proportions(t, tbl)

	train, test, err := StratifiedSplit(tbl, "group", 0.25, 7)
	if err != nil {
		t.Fatalf("StratifiedSplit failed: %v", err)
	}
	if train.NumRows()+test.NumRows() != tbl.NumRows() {
		t.Fatalf("split sizes %d+%d != %d", train.NumRows(), test.NumRows(), tbl.NumRows())
	}

	const tol = 0.02
	for name, part := range map[string]*Table{"train": train, "test": test} {
		got := proportions(t, part)
		for g, want := range full {
			if math.Abs(got[g]-want) >= tol {
				t.Errorf("%s: proportion of %s = %.3f, want %.3f within %.2f", name, g, got[g], want, tol)
			}
		}
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	tbl := syntheticTable(t, map[string]int{"A": 30, "B": 30})

	train1, test1, err := StratifiedSplit(tbl, "group", 0.3, 42)
	if err != nil {
		t.Fatal(err)
	}
	train2, test2, err := StratifiedSplit(tbl, "group", 0.3, 42)
	if err != nil {
		t.Fatal(err)
	}

	sameRows := func(a, b *Table) bool {
		if a.NumRows() != b.NumRows() {
			return false
		}
		for i := range a.Rows {
			for j := range a.Rows[i] {
				if a.Rows[i][j] != b.Rows[i][j] {
					return false
				}
			}
		}
		return true
	}
	if !sameRows(train1, train2) || !sameRows(test1, test2) {
		t.Error("same seed must produce the same split")
	}

	_, test3, err := StratifiedSplit(tbl, "group", 0.3, 43)
	if err != nil {
		t.Fatal(err)
	}
	if sameRows(test1, test3) {
		t.Error("different seeds should not produce identical test sets")
	}
}

func TestStratifiedSplitErrors(t *testing.T) {
	tbl := syntheticTable(t, map[string]int{"A": 10, "B": 10})

	t.Run("bad fraction", func(t *testing.T) {
		_, _, err := StratifiedSplit(tbl, "group", 1.5, 1)
		var ve *scierrors.ValidationError
		if !scierrors.As(err, &ve) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("missing column", func(t *testing.T) {
		_, _, err := StratifiedSplit(tbl, "race", 0.3, 1)
		var se *scierrors.SchemaError
		if !scierrors.As(err, &se) {
			t.Errorf("expected SchemaError, got %v", err)
		}
	})

	t.Run("tiny category", func(t *testing.T) {
		tiny := syntheticTable(t, map[string]int{"A": 10, "B": 1})
		_, _, err := StratifiedSplit(tiny, "group", 0.3, 1)
		var dq *scierrors.DataQualityError
		if !scierrors.As(err, &dq) {
			t.Errorf("expected DataQualityError, got %v", err)
		}
	})
}

func TestEncodeAppliesFrozenSchema(t *testing.T) {
	tbl := syntheticTable(t, map[string]int{"A": 20, "B": 20})
	cfg := CleanConfig{
		Target:        "label",
		PositiveLabel: "yes",
		Sensitive:     "group",
		Features:      []string{"x"},
	}

	cleaned, _, err := Clean(tbl, cfg)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	train, test, err := StratifiedSplit(cleaned, "group", 0.25, 3)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	cols, err := InferColumns(train, cfg.Features)
	if err != nil {
		t.Fatal(err)
	}
	if cols[0].Kind != preprocessing.Numeric {
		t.Fatalf("x should be numeric")
	}

	enc := preprocessing.NewOneHotEncoder()
	trainDS, err := Encode(train, cfg, cols, enc)
	if err != nil {
		t.Fatalf("Encode(train) failed: %v", err)
	}
	testDS, err := Encode(test, cfg, cols, enc)
	if err != nil {
		t.Fatalf("Encode(test) failed: %v", err)
	}

	if trainDS.Len() != train.NumRows() || testDS.Len() != test.NumRows() {
		t.Error("dataset lengths must match table lengths")
	}
	if len(trainDS.FeatureNames) != 1 || trainDS.FeatureNames[0] != "x" {
		t.Errorf("feature names = %v", trainDS.FeatureNames)
	}
	// Labels are 0/1 and groups align with rows.
	for i := 0; i < trainDS.Len(); i++ {
		y := trainDS.Y.AtVec(i)
		if y != 0 && y != 1 {
			t.Fatalf("label %v is not binary", y)
		}
	}
	gs := trainDS.GroupSet()
	if len(gs) != 2 || gs[0] != "A" || gs[1] != "B" {
		t.Errorf("GroupSet = %v, want [A B]", gs)
	}
}
