package dataset

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
	"github.com/SnoozeScript/aies-lab/preprocessing"
)

// Dataset is the encoded, model-ready view of a cleaned table: feature
// matrix, 0/1 target vector and the sensitive-attribute value per row, all
// in matching row order.
type Dataset struct {
	X            *mat.Dense
	Y            *mat.VecDense
	Groups       []string
	FeatureNames []string
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	r, _ := d.X.Dims()
	return r
}

// GroupSet returns the distinct sensitive categories in sorted order.
func (d *Dataset) GroupSet() []string {
	return sortedGroupSet(d.Groups)
}

// InferColumns classifies each feature field of a cleaned table as Numeric
// or Categorical. A column is numeric when every value parses as a float;
// otherwise it is categorical. The classification is computed once, on
// training data, and reused through the encoder's frozen schema.
func InferColumns(t *Table, features []string) ([]preprocessing.Column, error) {
	cols := make([]preprocessing.Column, len(features))
	for k, name := range features {
		j, ok := t.Col(name)
		if !ok {
			return nil, scierrors.NewSchemaError("InferColumns", name, "required field is absent")
		}
		kind := preprocessing.Numeric
		for _, row := range t.Rows {
			if _, err := strconv.ParseFloat(row[j], 64); err != nil {
				kind = preprocessing.Categorical
				break
			}
		}
		cols[k] = preprocessing.Column{Name: name, Kind: kind}
	}
	return cols, nil
}

// Encode turns a cleaned table into a Dataset using enc. On the first call
// (training data) the encoder schema is fitted and frozen; later calls
// (evaluation data) apply the identical schema, so unseen categories fail
// with a SchemaError instead of silently widening the feature space.
func Encode(t *Table, cfg CleanConfig, cols []preprocessing.Column, enc *preprocessing.OneHotEncoder) (*Dataset, error) {
	featRows := make([][]string, t.NumRows())
	idx := make([]int, len(cols))
	for k, c := range cols {
		j, ok := t.Col(c.Name)
		if !ok {
			return nil, scierrors.NewSchemaError("Encode", c.Name, "required field is absent")
		}
		idx[k] = j
	}
	for i, row := range t.Rows {
		fr := make([]string, len(cols))
		for k, j := range idx {
			fr[k] = row[j]
		}
		featRows[i] = fr
	}

	var (
		X   *mat.Dense
		err error
	)
	if enc.IsFitted() {
		X, err = enc.Transform(featRows)
	} else {
		X, err = enc.FitTransform(cols, featRows)
	}
	if err != nil {
		return nil, err
	}

	target, err := t.Column(cfg.Target)
	if err != nil {
		return nil, err
	}
	y := mat.NewVecDense(len(target), nil)
	for i, v := range target {
		if v == cfg.PositiveLabel {
			y.SetVec(i, 1)
		}
	}

	groups, err := t.Column(cfg.Sensitive)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		X:            X,
		Y:            y,
		Groups:       groups,
		FeatureNames: enc.FeatureNames(),
	}, nil
}

func sortedGroupSet(groups []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range groups {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	// insertion sort; the category set is small by construction
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
