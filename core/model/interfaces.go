package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// WeightedFitter is implemented by estimators that accept per-sample
// weights. The fairness mitigator's cost-sensitive best response requires
// this of its base learner.
type WeightedFitter interface {
	// FitWeighted fits the model on (X, y) with non-negative sample
	// weights. A nil weight vector means uniform weights.
	FitWeighted(X, y mat.Matrix, sampleWeight []float64) error
}

// BinaryClassifier is the estimator surface the fairness pipeline audits
// and mitigates: a probabilistic binary classifier producing 0/1 labels.
type BinaryClassifier interface {
	Fitter
	Predictor

	// PredictProba returns, per row, the probability of the positive class.
	PredictProba(X mat.Matrix) (*mat.VecDense, error)
}
