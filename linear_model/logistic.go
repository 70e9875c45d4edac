// Package linear_model provides the baseline estimator of the fairness
// pipeline: a binary logistic regression classifier with optional
// per-sample weights, compatible with scikit-learn's LogisticRegression in
// spirit.
package linear_model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/SnoozeScript/aies-lab/core/model"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// LogisticRegression implements binary logistic regression fitted by
// gradient descent with an adaptive learning rate and optional L2
// regularization. Labels may be any two distinct values; predictions are
// reported in the original label space.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	c            float64 // Inverse regularization strength (1/lambda); 0 disables the penalty
	fitIntercept bool
	maxIter      int
	tol          float64
	randomState  int64

	// Fitted parameters
	coef_      []float64
	intercept_ float64
	classes_   [2]float64
	nFeatures_ int

	rand *rand.Rand
}

var (
	_ model.BinaryClassifier = (*LogisticRegression)(nil)
	_ model.WeightedFitter   = (*LogisticRegression)(nil)
)

// Option is a functional option for LogisticRegression.
type Option func(*LogisticRegression)

// WithC sets the inverse regularization strength.
func WithC(c float64) Option {
	return func(lr *LogisticRegression) { lr.c = c }
}

// WithFitIntercept sets whether to fit an intercept term.
func WithFitIntercept(fit bool) Option {
	return func(lr *LogisticRegression) { lr.fitIntercept = fit }
}

// WithMaxIter sets the maximum number of gradient descent iterations.
func WithMaxIter(maxIter int) Option {
	return func(lr *LogisticRegression) { lr.maxIter = maxIter }
}

// WithTol sets the gradient-norm tolerance for early stopping.
func WithTol(tol float64) Option {
	return func(lr *LogisticRegression) { lr.tol = tol }
}

// WithRandomState sets the seed for weight initialization. A negative seed
// draws a fresh one.
func WithRandomState(seed int64) Option {
	return func(lr *LogisticRegression) { lr.randomState = seed }
}

// NewLogisticRegression creates a classifier with sklearn-like defaults.
func NewLogisticRegression(opts ...Option) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		c:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
		randomState:  -1,
	}
	for _, opt := range opts {
		opt(lr)
	}
	if lr.randomState >= 0 {
		lr.rand = rand.New(rand.NewSource(lr.randomState))
	} else {
		lr.rand = rand.New(rand.NewSource(rand.Int63()))
	}
	return lr
}

// Clone returns an unfitted copy with the same hyperparameters. The
// fairness mitigator uses this to train one base learner per round.
func (lr *LogisticRegression) Clone() *LogisticRegression {
	return NewLogisticRegression(
		WithC(lr.c),
		WithFitIntercept(lr.fitIntercept),
		WithMaxIter(lr.maxIter),
		WithTol(lr.tol),
		WithRandomState(lr.randomState),
	)
}

// Fit trains the model on (X, y) with uniform sample weights.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	return lr.FitWeighted(X, y, nil)
}

// FitWeighted trains the model with non-negative per-sample weights. A nil
// weight slice means uniform weights. Fitting fails with a
// DataQualityError when X has zero rows or y holds fewer than two distinct
// classes; degenerate data is reported, never silently tolerated.
func (lr *LogisticRegression) FitWeighted(X, y mat.Matrix, sampleWeight []float64) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 {
		return scierrors.NewDataQualityError("LogisticRegression.Fit",
			"feature table has zero rows", 0, 0)
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return scierrors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return scierrors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}
	if sampleWeight != nil && len(sampleWeight) != nSamples {
		return scierrors.NewDimensionError("LogisticRegression.Fit", nSamples, len(sampleWeight), 0)
	}

	if err := lr.extractClasses(y); err != nil {
		return err
	}
	lr.nFeatures_ = nFeatures

	// Binary targets in {0, 1}, class order fixed by sorted labels.
	yBin := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if y.At(i, 0) == lr.classes_[1] {
			yBin[i] = 1
		}
	}

	weightSum := float64(nSamples)
	if sampleWeight != nil {
		weightSum = 0
		for _, w := range sampleWeight {
			if w < 0 {
				return scierrors.NewValidationError("sampleWeight", "weights must be non-negative", w)
			}
			weightSum += w
		}
		if weightSum <= 0 {
			return scierrors.NewValidationError("sampleWeight", "weights sum to zero", weightSum)
		}
	}

	lr.coef_ = make([]float64, nFeatures)
	lr.intercept_ = 0
	for j := range lr.coef_ {
		lr.coef_[j] = lr.rand.NormFloat64() * 0.01
	}

	const baseLearningRate = 1.0
	grad := make([]float64, nFeatures)

	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := lr.intercept_
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.coef_[j]
			}
			residual := sigmoid(z) - yBin[i]
			if sampleWeight != nil {
				residual *= sampleWeight[i]
			}
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				grad[j] += residual * X.At(i, j)
			}
		}

		for j := range grad {
			grad[j] /= weightSum
		}
		gradIntercept /= weightSum

		if lr.c > 0 {
			lambda := 1.0 / lr.c
			for j := range lr.coef_ {
				grad[j] += lambda * lr.coef_[j] / weightSum
			}
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range lr.coef_ {
			lr.coef_[j] -= learningRate * grad[j]
		}
		if lr.fitIntercept {
			lr.intercept_ -= learningRate * gradIntercept
		}

		maxGrad := math.Abs(gradIntercept)
		for _, g := range grad {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			break
		}
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// extractClasses records the two distinct labels in sorted order.
func (lr *LogisticRegression) extractClasses(y mat.Matrix) error {
	rows, _ := y.Dims()
	seen := make(map[float64]bool)
	for i := 0; i < rows; i++ {
		seen[y.At(i, 0)] = true
	}
	switch {
	case len(seen) < 2:
		return scierrors.NewDataQualityError("LogisticRegression.Fit",
			"training target has fewer than two distinct classes", rows, rows)
	case len(seen) > 2:
		return scierrors.NewValueError("LogisticRegression.Fit",
			"target is not binary")
	}
	var classes []float64
	for c := range seen {
		classes = append(classes, c)
	}
	if classes[0] > classes[1] {
		classes[0], classes[1] = classes[1], classes[0]
	}
	lr.classes_ = [2]float64{classes[0], classes[1]}
	return nil
}

// Predict returns the predicted label per row, in the original label space.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n := proba.Len()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if proba.AtVec(i) >= 0.5 {
			out.Set(i, 0, lr.classes_[1])
		} else {
			out.Set(i, 0, lr.classes_[0])
		}
	}
	return out, nil
}

// PredictProba returns, per row, the probability of the positive (greater)
// class.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "PredictProba"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures_ {
		return nil, scierrors.NewDimensionError("LogisticRegression.PredictProba", lr.nFeatures_, nFeatures, 1)
	}

	out := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		z := lr.intercept_
		for j := 0; j < nFeatures; j++ {
			z += X.At(i, j) * lr.coef_[j]
		}
		out.SetVec(i, sigmoid(z))
	}
	return out, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := X.Dims()
	yRows, _ := y.Dims()
	if yRows != nSamples {
		return 0, scierrors.NewDimensionError("LogisticRegression.Score", nSamples, yRows, 0)
	}
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Classes returns the two labels in sorted order.
func (lr *LogisticRegression) Classes() [2]float64 {
	return lr.classes_
}

// Coef returns the fitted coefficients.
func (lr *LogisticRegression) Coef() []float64 {
	out := make([]float64, len(lr.coef_))
	copy(out, lr.coef_)
	return out
}

// Intercept returns the fitted intercept.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.intercept_
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
