package fairness

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/SnoozeScript/aies-lab/core/model"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// BaseLearner is the estimator surface the reduction needs from its base
// classifier: a binary classifier that also accepts per-sample weights.
type BaseLearner interface {
	model.BinaryClassifier
	model.WeightedFitter
}

// ExponentiatedGradient searches a randomized mixture of classifiers
// approximately satisfying demographic parity, by the exponentiated
// gradient reduction: a no-regret adversary maintains multiplicative
// weights over signed selection-rate violations, and each round the base
// learner best-responds to the implied cost-sensitive reweighting. The
// collected iterates are then rounded into a mixture by a small linear
// program minimizing training error subject to every pairwise
// selection-rate gap being at most eps.
//
// Constant all-0 and all-1 predictors are always part of the candidate
// pool, so a feasible mixture exists for any eps >= 0. If the final gap
// still exceeds eps the fit raises a ConvergenceWarning carrying the best
// achieved gap and reports Converged() == false; it never returns an
// eps-violating mixture as a silent success.
//
// The search mutates internal reweighting state; one instance must not be
// shared across concurrent invocations.
type ExponentiatedGradient struct {
	state      *model.StateManager
	newLearner func() BaseLearner

	eps     float64
	maxIter int
	eta0    float64
	bound   float64
	seed    int64

	constraint *DemographicParity
	mixture    *MixtureClassifier
	bestGap    float64
	rounds     int
	converged  bool
}

// EGOption is a functional option for ExponentiatedGradient.
type EGOption func(*ExponentiatedGradient)

// WithEps sets the demographic-parity tolerance (default 0.01).
func WithEps(eps float64) EGOption {
	return func(eg *ExponentiatedGradient) { eg.eps = eps }
}

// WithEGMaxIter sets the number of best-response rounds (default 50).
func WithEGMaxIter(n int) EGOption {
	return func(eg *ExponentiatedGradient) { eg.maxIter = n }
}

// WithEta0 sets the initial adversary learning rate (default 2).
func WithEta0(eta float64) EGOption {
	return func(eg *ExponentiatedGradient) { eg.eta0 = eta }
}

// WithBound sets the L1 bound on the adversary weights (default 100).
func WithBound(b float64) EGOption {
	return func(eg *ExponentiatedGradient) { eg.bound = b }
}

// WithEGSeed seeds the mixture's prediction sampler (default 0).
func WithEGSeed(seed int64) EGOption {
	return func(eg *ExponentiatedGradient) { eg.seed = seed }
}

// NewExponentiatedGradient creates a mitigator. newLearner must return a
// fresh unfitted base learner per call; it is invoked once per round.
func NewExponentiatedGradient(newLearner func() BaseLearner, opts ...EGOption) *ExponentiatedGradient {
	eg := &ExponentiatedGradient{
		state:      model.NewStateManager(),
		newLearner: newLearner,
		eps:        0.01,
		maxIter:    50,
		eta0:       2.0,
		bound:      100.0,
		seed:       0,
	}
	for _, opt := range opts {
		opt(eg)
	}
	return eg
}

// candidate is one member of the mixture-selection pool.
type candidate struct {
	predictor model.Predictor
	expected  []float64 // hard 0/1 training predictions
	err       float64   // training 0-1 error
}

// Fit runs the reduction on training data. y must be a 0/1 column vector
// and groups assigns each row to a sensitive category.
func (eg *ExponentiatedGradient) Fit(X, y mat.Matrix, groups []string) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 {
		return scierrors.Wrap(scierrors.ErrEmptyData, "ExponentiatedGradient.Fit")
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples || yCols != 1 {
		return scierrors.NewDimensionError("ExponentiatedGradient.Fit", nSamples, yRows, 0)
	}
	if len(groups) != nSamples {
		return scierrors.NewDimensionError("ExponentiatedGradient.Fit", nSamples, len(groups), 0)
	}
	if eg.eps < 0 {
		return scierrors.NewValidationError("eps", "must be non-negative", eg.eps)
	}

	labels := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		v := y.At(i, 0)
		if v != 0 && v != 1 {
			return scierrors.NewValueError("ExponentiatedGradient.Fit", "labels must be 0 or 1")
		}
		labels[i] = v
	}

	constraint, err := NewDemographicParity(groups)
	if err != nil {
		return err
	}
	groupIdx, err := constraint.GroupIndex(groups)
	if err != nil {
		return err
	}
	eg.constraint = constraint

	// Feasibility anchors: the constant predictors have zero gap at any
	// eps, so the rounding LP below always has a solution.
	pool := []candidate{
		eg.newCandidate(&ConstantClassifier{Label: 0}, labels, nSamples, 0),
		eg.newCandidate(&ConstantClassifier{Label: 1}, labels, nSamples, 1),
	}

	theta := make([]float64, constraint.NumConstraints())
	lambda := make([]float64, constraint.NumConstraints())
	baseCost := make([]float64, nSamples)
	n := float64(nSamples)
	for i, yi := range labels {
		baseCost[i] = (1 - 2*yi) / n
	}

	for t := 1; t <= eg.maxIter; t++ {
		// lambda = B * softmax-like weights over theta, leaving slack mass
		// on the implicit zero coordinate.
		var expSum float64
		for _, th := range theta {
			expSum += math.Exp(th)
		}
		for j, th := range theta {
			lambda[j] = eg.bound * math.Exp(th) / (1 + expSum)
		}

		signed := constraint.SignedCosts(lambda, groupIdx)
		h, err := eg.bestResponse(X, baseCost, signed)
		if err != nil {
			return err
		}

		cand, err := eg.evaluate(h, X, labels)
		if err != nil {
			return err
		}
		pool = append(pool, cand)
		eg.rounds = t

		gamma := constraint.Gamma(cand.expected, groupIdx)
		eta := eg.eta0 / math.Sqrt(float64(t))
		for j := range theta {
			theta[j] += eta * (gamma[j] - eg.eps)
		}
	}

	weights, lpErr := eg.solveMixture(pool, groupIdx)
	if lpErr != nil {
		// Numerical LP failure: fall back to the lowest-gap candidate.
		weights = eg.fallbackWeights(pool, groupIdx)
	}

	components := make([]Component, 0, len(pool))
	mixExpected := make([]float64, nSamples)
	for k, w := range weights {
		if w <= 1e-9 {
			continue
		}
		components = append(components, Component{Predictor: pool[k].predictor, Weight: w})
		for i := range mixExpected {
			mixExpected[i] += w * pool[k].expected[i]
		}
	}
	mixture, err := NewMixtureClassifier(components, eg.seed)
	if err != nil {
		return err
	}
	eg.mixture = mixture

	eg.bestGap = constraint.Gap(mixExpected, groupIdx)
	eg.converged = eg.bestGap <= eg.eps+1e-6
	if !eg.converged {
		scierrors.Warn(scierrors.NewConvergenceWarning(
			"ExponentiatedGradient", eg.rounds, eg.eps, eg.bestGap))
	}

	eg.state.SetDimensions(nFeatures, nSamples)
	eg.state.SetFitted()
	return nil
}

// bestResponse fits one cost-sensitive learner: each row's net cost of
// predicting positive decides its pseudo-label, the magnitude its weight.
func (eg *ExponentiatedGradient) bestResponse(X mat.Matrix, baseCost, signed []float64) (BaseLearner, error) {
	nSamples := len(baseCost)
	z := mat.NewDense(nSamples, 1, nil)
	w := make([]float64, nSamples)
	positives := 0
	for i := 0; i < nSamples; i++ {
		cost := baseCost[i] + signed[i]
		if cost < 0 {
			z.Set(i, 0, 1)
			positives++
		}
		w[i] = math.Abs(cost)
	}

	if positives == 0 {
		return &ConstantClassifier{Label: 0}, nil
	}
	if positives == nSamples {
		return &ConstantClassifier{Label: 1}, nil
	}

	h := eg.newLearner()
	if err := h.FitWeighted(X, z, w); err != nil {
		return nil, err
	}
	return h, nil
}

// evaluate records a learner's hard training predictions and 0-1 error.
func (eg *ExponentiatedGradient) evaluate(h BaseLearner, X mat.Matrix, labels []float64) (candidate, error) {
	pred, err := h.Predict(X)
	if err != nil {
		return candidate{}, err
	}
	expected := make([]float64, len(labels))
	errSum := 0.0
	for i := range labels {
		expected[i] = pred.At(i, 0)
		errSum += math.Abs(expected[i] - labels[i])
	}
	return candidate{
		predictor: h,
		expected:  expected,
		err:       errSum / float64(len(labels)),
	}, nil
}

// newCandidate evaluates a constant predictor against the labels.
func (eg *ExponentiatedGradient) newCandidate(c *ConstantClassifier, labels []float64, nSamples int, value float64) candidate {
	expected := make([]float64, nSamples)
	errSum := 0.0
	for i := range labels {
		expected[i] = value
		errSum += math.Abs(value - labels[i])
	}
	return candidate{predictor: c, expected: expected, err: errSum / float64(nSamples)}
}

// solveMixture picks mixture weights by linear programming: minimize the
// weighted training error subject to the weights lying on the simplex and
// every pairwise per-group selection-rate difference being at most eps.
// Standard-form slack variables absorb the inequality constraints.
func (eg *ExponentiatedGradient) solveMixture(pool []candidate, groupIdx []int) ([]float64, error) {
	m := len(pool)
	k := len(eg.constraint.Groups())
	pairs := k * (k - 1) / 2

	rates := make([][]float64, m)
	for t, cand := range pool {
		r, _ := eg.constraint.GroupRates(cand.expected, groupIdx)
		rates[t] = r
	}

	nVars := m + 2*pairs
	nRows := 1 + 2*pairs
	A := mat.NewDense(nRows, nVars, nil)
	b := make([]float64, nRows)
	c := make([]float64, nVars)

	for t := 0; t < m; t++ {
		A.Set(0, t, 1)
		c[t] = pool[t].err
	}
	b[0] = 1

	row := 1
	slack := m
	for g := 0; g < k; g++ {
		for h := g + 1; h < k; h++ {
			for t := 0; t < m; t++ {
				diff := rates[t][g] - rates[t][h]
				A.Set(row, t, diff)
				A.Set(row+1, t, -diff)
			}
			A.Set(row, slack, 1)
			A.Set(row+1, slack+1, 1)
			b[row] = eg.eps
			b[row+1] = eg.eps
			row += 2
			slack += 2
		}
	}

	_, x, err := lp.Simplex(c, A, b, 1e-10, nil)
	if err != nil {
		return nil, scierrors.Wrapf(scierrors.ErrInfeasible,
			"ExponentiatedGradient: mixture LP: %v", err)
	}

	weights := make([]float64, m)
	for t := 0; t < m; t++ {
		if x[t] > 0 {
			weights[t] = x[t]
		}
	}
	return weights, nil
}

// fallbackWeights puts all mass on the candidate with the smallest gap,
// breaking ties toward lower error.
func (eg *ExponentiatedGradient) fallbackWeights(pool []candidate, groupIdx []int) []float64 {
	best := 0
	bestGap := math.Inf(1)
	for t, cand := range pool {
		gap := eg.constraint.Gap(cand.expected, groupIdx)
		if gap < bestGap || (gap == bestGap && cand.err < pool[best].err) {
			best = t
			bestGap = gap
		}
	}
	weights := make([]float64, len(pool))
	weights[best] = 1
	return weights
}

// Predictor returns the fitted mixture.
func (eg *ExponentiatedGradient) Predictor() (*MixtureClassifier, error) {
	if err := eg.state.RequireFitted("ExponentiatedGradient", "Predictor"); err != nil {
		return nil, err
	}
	return eg.mixture, nil
}

// BestGap returns the training selection-rate gap of the fitted mixture.
func (eg *ExponentiatedGradient) BestGap() float64 { return eg.bestGap }

// Converged reports whether the fitted mixture's gap is within eps.
func (eg *ExponentiatedGradient) Converged() bool { return eg.converged }

// Rounds returns the number of best-response rounds performed.
func (eg *ExponentiatedGradient) Rounds() int { return eg.rounds }
