package fairness

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/SnoozeScript/aies-lab/core/model"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// ConstantClassifier predicts the same 0/1 label for every row. The
// mitigator uses constants both as degenerate best responses and as
// anchors that keep its mixture-selection problem feasible.
type ConstantClassifier struct {
	Label float64
}

var _ model.BinaryClassifier = (*ConstantClassifier)(nil)

// Fit is a no-op; the constant is fixed at construction.
func (c *ConstantClassifier) Fit(X, y mat.Matrix) error { return nil }

// FitWeighted is a no-op; the constant is fixed at construction.
func (c *ConstantClassifier) FitWeighted(X, y mat.Matrix, sampleWeight []float64) error { return nil }

// Predict returns the constant label for every row.
func (c *ConstantClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	n, _ := X.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, c.Label)
	}
	return out, nil
}

// PredictProba returns the constant label as a degenerate probability.
func (c *ConstantClassifier) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	n, _ := X.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, c.Label)
	}
	return out, nil
}

// Component is one weighted member of a randomized classifier mixture.
type Component struct {
	Predictor model.Predictor
	Weight    float64
}

// MixtureClassifier is a finite weighted mixture of base classifiers, the
// output of the fairness mitigation search. Predict is stochastic: each
// row's label is produced by one component sampled from the mixture
// weights with an explicitly seeded generator, so the realized selection
// rates match the mixture's expected rates in expectation.
// PredictExpected is the deterministic counterpart used for auditing and
// convergence checks.
//
// The mixture is owned by the run that produced it and is not safe for
// concurrent use: sampling advances the internal generator.
type MixtureClassifier struct {
	components []Component
	rng        *rand.Rand
	seed       int64
}

// NewMixtureClassifier builds a mixture from components with positive
// weights. Weights are normalized to sum to one.
func NewMixtureClassifier(components []Component, seed int64) (*MixtureClassifier, error) {
	if len(components) == 0 {
		return nil, scierrors.NewValueError("NewMixtureClassifier", "empty mixture")
	}
	var sum float64
	for _, c := range components {
		if c.Weight < 0 {
			return nil, scierrors.NewValidationError("weight", "must be non-negative", c.Weight)
		}
		sum += c.Weight
	}
	if sum <= 0 {
		return nil, scierrors.NewValidationError("weights", "must not all be zero", sum)
	}

	normalized := make([]Component, 0, len(components))
	for _, c := range components {
		if c.Weight == 0 {
			continue
		}
		normalized = append(normalized, Component{Predictor: c.Predictor, Weight: c.Weight / sum})
	}

	return &MixtureClassifier{
		components: normalized,
		rng:        rand.New(rand.NewSource(seed)),
		seed:       seed,
	}, nil
}

// Components returns the (predictor, weight) pairs of the mixture.
func (m *MixtureClassifier) Components() []Component {
	out := make([]Component, len(m.components))
	copy(out, m.components)
	return out
}

// Predict samples one component per row from the mixture weights and
// returns its 0/1 label. Repeated calls advance the generator; reset the
// seed via NewMixtureClassifier for reproducible draws.
func (m *MixtureClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	n, _ := X.Dims()
	perComponent := make([]mat.Matrix, len(m.components))
	for k, c := range m.components {
		pred, err := c.Predictor.Predict(X)
		if err != nil {
			return nil, err
		}
		perComponent[k] = pred
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		u := m.rng.Float64()
		acc := 0.0
		k := len(m.components) - 1
		for j, c := range m.components {
			acc += c.Weight
			if u < acc {
				k = j
				break
			}
		}
		out.Set(i, 0, perComponent[k].At(i, 0))
	}
	return out, nil
}

// PredictExpected returns, per row, the mixture's expected positive
// prediction: the weight-averaged 0/1 labels of all components.
func (m *MixtureClassifier) PredictExpected(X mat.Matrix) (*mat.VecDense, error) {
	n, _ := X.Dims()
	out := mat.NewVecDense(n, nil)
	for _, c := range m.components {
		pred, err := c.Predictor.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out.SetVec(i, out.AtVec(i)+c.Weight*pred.At(i, 0))
		}
	}
	return out, nil
}
