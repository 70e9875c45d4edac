package preprocessing

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/SnoozeScript/aies-lab/core/model"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// ColumnKind classifies an input column for encoding.
type ColumnKind int

const (
	// Numeric columns are parsed as float64 and passed through.
	Numeric ColumnKind = iota
	// Categorical columns are expanded into indicator columns, one per
	// category minus a dropped reference category.
	Categorical
)

// Column describes one input column of the feature table.
type Column struct {
	Name string
	Kind ColumnKind
}

// OneHotEncoder converts a string-valued feature table into a numeric
// matrix. Fit freezes an output schema from training data; Transform applies
// that identical schema to any later data, producing zero columns for
// categories absent from it and a SchemaError for categories never seen at
// fit time.
//
// Categorical columns use a dropped reference category (the first category
// in sorted order) to avoid linear dependence among the indicators. Output
// column names are sanitized with SanitizeName; a collision between two
// sanitized names is reported as a NameCollisionError at fit time, never
// silently overwritten.
type OneHotEncoder struct {
	state *model.StateManager

	columns    []Column
	categories map[string][]string // per categorical column, sorted; [0] is the reference
	outNames   []string
	outSource  map[string]string // sanitized output name -> human-readable source
}

// NewOneHotEncoder creates an unfitted encoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{
		state: model.NewStateManager(),
	}
}

// Fit freezes the encoding schema from training rows. Each row must have one
// value per column, aligned with cols.
func (e *OneHotEncoder) Fit(cols []Column, rows [][]string) error {
	if len(cols) == 0 {
		return scierrors.NewValueError("OneHotEncoder.Fit", "no columns to encode")
	}
	if len(rows) == 0 {
		return scierrors.Wrap(scierrors.ErrEmptyData, "OneHotEncoder.Fit")
	}
	for _, row := range rows {
		if len(row) != len(cols) {
			return scierrors.NewDimensionError("OneHotEncoder.Fit", len(cols), len(row), 1)
		}
	}

	e.columns = make([]Column, len(cols))
	copy(e.columns, cols)
	e.categories = make(map[string][]string)

	for j, col := range cols {
		if col.Kind != Categorical {
			continue
		}
		seen := make(map[string]bool)
		for _, row := range rows {
			seen[row[j]] = true
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		if len(cats) < 2 {
			return scierrors.NewValueError("OneHotEncoder.Fit",
				"categorical column '"+col.Name+"' has fewer than 2 categories")
		}
		e.categories[col.Name] = cats
	}

	if err := e.buildOutputSchema(); err != nil {
		e.Reset()
		return err
	}

	e.state.SetDimensions(len(e.outNames), len(rows))
	e.state.SetFitted()
	return nil
}

// buildOutputSchema derives sanitized output names and checks collisions.
func (e *OneHotEncoder) buildOutputSchema() error {
	e.outNames = nil
	e.outSource = make(map[string]string)

	add := func(name, source string) error {
		clean := SanitizeName(name)
		if clean == "" {
			return scierrors.NewSchemaError("OneHotEncoder.Fit", name,
				"column name sanitizes to the empty string")
		}
		if first, ok := e.outSource[clean]; ok {
			return scierrors.NewNameCollisionError("OneHotEncoder.Fit", clean, first, source)
		}
		e.outSource[clean] = source
		e.outNames = append(e.outNames, clean)
		return nil
	}

	for _, col := range e.columns {
		if col.Kind != Categorical {
			if err := add(col.Name, col.Name); err != nil {
				return err
			}
			continue
		}
		cats := e.categories[col.Name]
		// cats[0] is the dropped reference category.
		for _, cat := range cats[1:] {
			if err := add(col.Name+"_"+cat, col.Name+"="+cat); err != nil {
				return err
			}
		}
	}
	return nil
}

// Transform encodes rows with the schema frozen at fit time.
func (e *OneHotEncoder) Transform(rows [][]string) (*mat.Dense, error) {
	if err := e.state.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, scierrors.Wrap(scierrors.ErrEmptyData, "OneHotEncoder.Transform")
	}

	out := mat.NewDense(len(rows), len(e.outNames), nil)
	for i, row := range rows {
		if len(row) != len(e.columns) {
			return nil, scierrors.NewDimensionError("OneHotEncoder.Transform", len(e.columns), len(row), 1)
		}

		k := 0
		for j, col := range e.columns {
			if col.Kind != Categorical {
				v, err := strconv.ParseFloat(row[j], 64)
				if err != nil {
					return nil, scierrors.NewSchemaError("OneHotEncoder.Transform", col.Name,
						"value '"+row[j]+"' is not numeric")
				}
				out.Set(i, k, v)
				k++
				continue
			}

			cats := e.categories[col.Name]
			idx := sort.SearchStrings(cats, row[j])
			if idx >= len(cats) || cats[idx] != row[j] {
				return nil, scierrors.NewSchemaError("OneHotEncoder.Transform", col.Name,
					"unseen category '"+row[j]+"'")
			}
			// Reference category (idx 0) encodes as all zeros.
			for c := 1; c < len(cats); c++ {
				if c == idx {
					out.Set(i, k, 1)
				}
				k++
			}
		}
	}
	return out, nil
}

// FitTransform fits the schema on rows and immediately encodes them.
func (e *OneHotEncoder) FitTransform(cols []Column, rows [][]string) (*mat.Dense, error) {
	if err := e.Fit(cols, rows); err != nil {
		return nil, err
	}
	return e.Transform(rows)
}

// FeatureNames returns the sanitized output column names in matrix order.
func (e *OneHotEncoder) FeatureNames() []string {
	out := make([]string, len(e.outNames))
	copy(out, e.outNames)
	return out
}

// Categories returns the frozen category list for a categorical column.
// The first entry is the dropped reference category.
func (e *OneHotEncoder) Categories(column string) ([]string, bool) {
	cats, ok := e.categories[column]
	if !ok {
		return nil, false
	}
	out := make([]string, len(cats))
	copy(out, cats)
	return out, true
}

// IsFitted reports whether the schema has been frozen.
func (e *OneHotEncoder) IsFitted() bool {
	return e.state.IsFitted()
}

// Reset discards the frozen schema.
func (e *OneHotEncoder) Reset() {
	e.columns = nil
	e.categories = nil
	e.outNames = nil
	e.outSource = nil
	e.state.Reset()
}
