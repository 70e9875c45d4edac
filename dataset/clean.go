package dataset

import (
	"log/slog"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
	plog "github.com/SnoozeScript/aies-lab/pkg/log"
)

// DefaultMissingTokens are the field values treated as missing when no
// explicit set is configured. "?" is the census-export convention.
var DefaultMissingTokens = []string{"", "?", "NA"}

// CleanConfig describes one run's view of a raw table.
type CleanConfig struct {
	// Target is the field holding the binary outcome.
	Target string
	// PositiveLabel is the Target value mapped to 1; every other value
	// maps to 0.
	PositiveLabel string
	// Sensitive is the field used for fairness stratification. It is
	// never used as a predictive feature.
	Sensitive string
	// Features are the predictive fields.
	Features []string
	// AcceptedCategories restricts the sensitive attribute to an
	// enumerated value set; rows outside it are dropped entirely. Empty
	// means every value present is accepted.
	AcceptedCategories []string
	// MissingTokens are the values treated as missing. Nil means
	// DefaultMissingTokens.
	MissingTokens []string
}

// requiredColumns lists every field cleaning inspects.
func (c *CleanConfig) requiredColumns() []string {
	out := make([]string, 0, len(c.Features)+2)
	out = append(out, c.Target, c.Sensitive)
	out = append(out, c.Features...)
	return out
}

func (c *CleanConfig) missing() map[string]bool {
	toks := c.MissingTokens
	if toks == nil {
		toks = DefaultMissingTokens
	}
	m := make(map[string]bool, len(toks))
	for _, t := range toks {
		m[t] = true
	}
	return m
}

// Validate checks the config for internal consistency.
func (c *CleanConfig) Validate() error {
	if c.Target == "" {
		return scierrors.NewValidationError("target", "must be set", c.Target)
	}
	if c.PositiveLabel == "" {
		return scierrors.NewValidationError("positiveLabel", "must be set", c.PositiveLabel)
	}
	if c.Sensitive == "" {
		return scierrors.NewValidationError("sensitive", "must be set", c.Sensitive)
	}
	if len(c.Features) == 0 {
		return scierrors.NewValidationError("features", "at least one feature field is required", c.Features)
	}
	for _, f := range c.Features {
		if f == c.Sensitive {
			return scierrors.NewValidationError("features",
				"the sensitive attribute must not be used as a predictive feature", f)
		}
		if f == c.Target {
			return scierrors.NewValidationError("features",
				"the target must not be used as a predictive feature", f)
		}
	}
	return nil
}

// CleanReport accounts for every row the cleaner removed. Row removal is
// silent at the data level, so the report is part of the contract and its
// counts are logged.
type CleanReport struct {
	TotalRows        int
	KeptRows         int
	DroppedMissing   int
	DroppedSensitive int
}

// Dropped returns the total number of removed rows.
func (r CleanReport) Dropped() int {
	return r.DroppedMissing + r.DroppedSensitive
}

// Clean filters a raw table for one run: rows with a missing value in the
// target, the sensitive attribute or any feature are dropped (never
// imputed), and rows whose sensitive value is outside the accepted category
// set are dropped entirely. The returned table is safe to encode: every
// kept row has a value for every required field.
//
// A missing required column is a SchemaError. Ending up with fewer than two
// rows, or with a single target class, is a DataQualityError carrying the
// remaining row count.
func Clean(t *Table, cfg CleanConfig) (*Table, CleanReport, error) {
	report := CleanReport{TotalRows: t.NumRows()}

	if err := cfg.Validate(); err != nil {
		return nil, report, err
	}

	colIdx := make([]int, 0, len(cfg.Features)+2)
	for _, name := range cfg.requiredColumns() {
		j, ok := t.Col(name)
		if !ok {
			return nil, report, scierrors.NewSchemaError("Clean", name, "required field is absent")
		}
		colIdx = append(colIdx, j)
	}
	sensIdx, _ := t.Col(cfg.Sensitive)
	targetIdx, _ := t.Col(cfg.Target)

	accepted := make(map[string]bool, len(cfg.AcceptedCategories))
	for _, c := range cfg.AcceptedCategories {
		accepted[c] = true
	}
	missing := cfg.missing()

	var kept []int
	var posRows, negRows int
rows:
	for i, row := range t.Rows {
		for _, j := range colIdx {
			if missing[row[j]] {
				report.DroppedMissing++
				continue rows
			}
		}
		if len(accepted) > 0 && !accepted[row[sensIdx]] {
			report.DroppedSensitive++
			continue
		}
		kept = append(kept, i)
		if row[targetIdx] == cfg.PositiveLabel {
			posRows++
		} else {
			negRows++
		}
	}
	report.KeptRows = len(kept)

	slog.Default().Info("rows dropped during cleaning",
		slog.String(plog.ComponentKey, "dataset"),
		slog.String(plog.OperationKey, "clean"),
		slog.Int(plog.RowsKey, report.KeptRows),
		slog.Int(plog.RowsDroppedKey, report.Dropped()),
		slog.Group("dropped",
			slog.Int("missing_value", report.DroppedMissing),
			slog.Int("sensitive_not_accepted", report.DroppedSensitive),
		),
	)

	if report.KeptRows < 2 {
		return nil, report, scierrors.NewDataQualityError("Clean",
			"fewer than 2 rows remain", report.KeptRows, report.TotalRows)
	}
	if posRows == 0 || negRows == 0 {
		return nil, report, scierrors.NewDataQualityError("Clean",
			"target has a single class after cleaning", report.KeptRows, report.TotalRows)
	}

	return t.subset(kept), report, nil
}
