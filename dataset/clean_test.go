package dataset

import (
	"strings"
	"testing"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

const sampleCSV = `age, workclass, sex, income
39, State-gov, Male, <=50K
50, Self-emp, Female, >50K
38, ?, Male, <=50K
53, Private, Female, >50K
28, Private, Other, <=50K
37, Private, Male, >50K
49, , Female, <=50K
31, Private, Male, <=50K
`

func sampleConfig() CleanConfig {
	return CleanConfig{
		Target:             "income",
		PositiveLabel:      ">50K",
		Sensitive:          "sex",
		Features:           []string{"age", "workclass"},
		AcceptedCategories: []string{"Male", "Female"},
	}
}

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if got := tbl.NumRows(); got != 8 {
		t.Errorf("NumRows = %d, want 8", got)
	}
	if _, ok := tbl.Col("workclass"); !ok {
		t.Error("expected workclass column (leading spaces trimmed)")
	}
}

func TestReadCSVErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if _, err := ReadCSV(strings.NewReader("")); err == nil {
			t.Error("expected error for empty input")
		}
	})
	t.Run("duplicate header", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a,b,a\n1,2,3\n"))
		var se *scierrors.SchemaError
		if !scierrors.As(err, &se) {
			t.Errorf("expected SchemaError, got %v", err)
		}
	})
	t.Run("ragged row", func(t *testing.T) {
		if _, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n")); err == nil {
			t.Error("expected error for ragged row")
		}
	})
}

func TestCleanDropsAndCounts(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	cleaned, report, err := Clean(tbl, sampleConfig())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	// Rows 3 ("?") and 7 ("") have missing workclass; row 5 has an
	// unaccepted sensitive value.
	if report.DroppedMissing != 2 {
		t.Errorf("DroppedMissing = %d, want 2", report.DroppedMissing)
	}
	if report.DroppedSensitive != 1 {
		t.Errorf("DroppedSensitive = %d, want 1", report.DroppedSensitive)
	}
	if report.KeptRows != 5 || cleaned.NumRows() != 5 {
		t.Errorf("KeptRows = %d (table %d), want 5", report.KeptRows, cleaned.NumRows())
	}

	// No missing values may survive in any required field.
	for _, row := range cleaned.Rows {
		for _, v := range row {
			if v == "?" || v == "" {
				t.Errorf("missing value survived cleaning: %v", row)
			}
		}
	}
}

func TestCleanSchemaError(t *testing.T) {
	tbl, _ := ReadCSV(strings.NewReader(sampleCSV))
	cfg := sampleConfig()
	cfg.Features = []string{"age", "education"}

	_, _, err := Clean(tbl, cfg)
	var se *scierrors.SchemaError
	if !scierrors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Field != "education" {
		t.Errorf("SchemaError field = %q, want education", se.Field)
	}
}

func TestCleanSingleClassTarget(t *testing.T) {
	csv := "age, sex, income\n20, Male, <=50K\n30, Female, <=50K\n40, Male, <=50K\n"
	tbl, _ := ReadCSV(strings.NewReader(csv))

	cfg := CleanConfig{
		Target:        "income",
		PositiveLabel: ">50K",
		Sensitive:     "sex",
		Features:      []string{"age"},
	}
	_, report, err := Clean(tbl, cfg)
	var dq *scierrors.DataQualityError
	if !scierrors.As(err, &dq) {
		t.Fatalf("expected DataQualityError, got %v", err)
	}
	if dq.RowsLeft != 3 {
		t.Errorf("RowsLeft = %d, want 3", dq.RowsLeft)
	}
	if report.KeptRows != 3 {
		t.Errorf("report.KeptRows = %d, want 3", report.KeptRows)
	}
}

func TestCleanRejectsEmptyPositiveLabel(t *testing.T) {
	// An empty positive label would silently binarize every row to the
	// negative class; it must fail validation instead.
	tbl, _ := ReadCSV(strings.NewReader(sampleCSV))
	cfg := sampleConfig()
	cfg.PositiveLabel = ""

	_, _, err := Clean(tbl, cfg)
	var ve *scierrors.ValidationError
	if !scierrors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCleanRejectsSensitiveAsFeature(t *testing.T) {
	tbl, _ := ReadCSV(strings.NewReader(sampleCSV))
	cfg := sampleConfig()
	cfg.Features = append(cfg.Features, "sex")

	_, _, err := Clean(tbl, cfg)
	var ve *scierrors.ValidationError
	if !scierrors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
