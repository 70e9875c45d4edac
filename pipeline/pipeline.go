// Package pipeline wires the full fairness experiment: load, clean, split,
// encode, fit a baseline, audit it, mitigate, audit again. A run is
// strictly linear and owns every intermediate value, so concurrent runs
// never share state.
package pipeline

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/SnoozeScript/aies-lab/dataset"
	"github.com/SnoozeScript/aies-lab/fairness"
	"github.com/SnoozeScript/aies-lab/linear_model"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
	plog "github.com/SnoozeScript/aies-lab/pkg/log"
	"github.com/SnoozeScript/aies-lab/preprocessing"
)

// ConstraintDemographicParity is the only mitigation constraint currently
// implemented.
const ConstraintDemographicParity = "demographic_parity"

// Config describes one experiment run.
type Config struct {
	// DataPath is the CSV file to load. Ignored when Reader is set.
	DataPath string `yaml:"data_path"`
	// Reader overrides DataPath, mainly for tests.
	Reader io.Reader `yaml:"-"`

	Target        string   `yaml:"target"`
	PositiveLabel string   `yaml:"positive_label"`
	Sensitive     string   `yaml:"sensitive"`
	Features      []string `yaml:"features"`
	// AcceptedCategories restricts the sensitive attribute; empty accepts
	// every category.
	AcceptedCategories []string `yaml:"accepted_categories"`
	// MissingTokens defaults to dataset.DefaultMissingTokens when empty.
	MissingTokens []string `yaml:"missing_tokens"`

	TestFraction float64 `yaml:"test_fraction"`
	Seed         int64   `yaml:"seed"`

	Constraint string  `yaml:"constraint"`
	Epsilon    float64 `yaml:"epsilon"`
	// MaxIter bounds the mitigation search; 0 means the default budget.
	MaxIter int `yaml:"max_iter"`
}

func (c *Config) cleanConfig() dataset.CleanConfig {
	return dataset.CleanConfig{
		Target:             c.Target,
		PositiveLabel:      c.PositiveLabel,
		Sensitive:          c.Sensitive,
		Features:           c.Features,
		AcceptedCategories: c.AcceptedCategories,
		MissingTokens:      c.MissingTokens,
	}
}

// Validate checks the configuration without touching the data.
func (c *Config) Validate() error {
	if c.DataPath == "" && c.Reader == nil {
		return scierrors.NewValidationError("data_path", "must be set", c.DataPath)
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return scierrors.NewValidationError("test_fraction", "must be in (0, 1)", c.TestFraction)
	}
	if c.Epsilon < 0 {
		return scierrors.NewValidationError("epsilon", "must be non-negative", c.Epsilon)
	}
	if c.Constraint != "" && c.Constraint != ConstraintDemographicParity {
		return scierrors.NewValidationError("constraint", "unknown constraint kind", c.Constraint)
	}
	if c.MaxIter < 0 {
		return scierrors.NewValidationError("max_iter", "must be non-negative", c.MaxIter)
	}
	cc := c.cleanConfig()
	return cc.Validate()
}

// Result is the outcome of one run. Non-convergence of the mitigation is
// reported here (and as a ConvergenceWarning), never as an error.
type Result struct {
	RunID string

	Clean dataset.CleanReport

	Baseline  *fairness.MetricFrame
	Mitigated *fairness.MetricFrame

	// BaselineGap and MitigatedGap are the test-set selection-rate gaps.
	BaselineGap  float64
	MitigatedGap float64

	// TrainGap is the mitigated mixture's expected gap on the training
	// rows, the quantity the search drives under Epsilon.
	TrainGap  float64
	Converged bool
	Rounds    int
}

// Run executes one experiment. Terminal data problems (empty data after
// cleaning, schema violations, degenerate labels) abort with an error.
func Run(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := plog.RunLogger(runID)

	// Route library warnings (undefined metrics, non-convergence) through
	// the run's logger, restoring the previous handler when the run ends.
	prev := scierrors.SetWarningHandler(func(w error) {
		logger.Warn("pipeline warning", plog.ErrAttr(w))
	})
	defer scierrors.SetWarningHandler(prev)

	table, err := loadTable(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("data loaded",
		slog.String(plog.OperationKey, "load"),
		slog.Int(plog.RowsKey, table.NumRows()),
	)

	cleanCfg := cfg.cleanConfig()
	cleaned, cleanReport, err := dataset.Clean(table, cleanCfg)
	if err != nil {
		return nil, err
	}

	train, test, err := dataset.StratifiedSplit(cleaned, cfg.Sensitive, cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info("data split",
		slog.String(plog.OperationKey, "split"),
		slog.Int("data.train_rows", train.NumRows()),
		slog.Int("data.test_rows", test.NumRows()),
	)

	// The encoder schema is frozen on the training rows; unseen test
	// categories are an error, not a silent new column.
	cols, err := dataset.InferColumns(train, cfg.Features)
	if err != nil {
		return nil, err
	}
	enc := preprocessing.NewOneHotEncoder()
	trainSet, err := dataset.Encode(train, cleanCfg, cols, enc)
	if err != nil {
		return nil, err
	}
	testSet, err := dataset.Encode(test, cleanCfg, cols, enc)
	if err != nil {
		return nil, err
	}
	logger.Info("features encoded",
		slog.String(plog.OperationKey, "encode"),
		slog.Int(plog.FeaturesKey, len(trainSet.FeatureNames)),
		slog.Any(plog.GroupsKey, trainSet.GroupSet()),
	)

	baseline := newBaseline(cfg.Seed)
	if err := baseline.Fit(trainSet.X, trainSet.Y); err != nil {
		return nil, err
	}
	baseFrame, baseGap, err := audit(baseline, testSet)
	if err != nil {
		return nil, err
	}
	logger.Info("baseline audited",
		slog.String(plog.OperationKey, "audit"),
		slog.String(plog.ModelNameKey, "LogisticRegression"),
		slog.String(plog.MetricKey, fairness.MetricSelectionRate),
		slog.Float64(plog.GapKey, baseGap),
	)

	eg := fairness.NewExponentiatedGradient(
		func() fairness.BaseLearner { return newBaseline(cfg.Seed) },
		fairness.WithEps(cfg.Epsilon),
		fairness.WithEGSeed(cfg.Seed),
		egIterOption(cfg.MaxIter),
	)
	if err := eg.Fit(trainSet.X, trainSet.Y, trainSet.Groups); err != nil {
		return nil, err
	}
	mixture, err := eg.Predictor()
	if err != nil {
		return nil, err
	}
	mitFrame, mitGap, err := audit(mixture, testSet)
	if err != nil {
		return nil, err
	}
	logger.Info("mitigation audited",
		slog.String(plog.OperationKey, "mitigate"),
		slog.Float64(plog.EpsilonKey, cfg.Epsilon),
		slog.Float64(plog.GapKey, mitGap),
		slog.Bool(plog.ConvergedKey, eg.Converged()),
		slog.Int(plog.IterationsKey, eg.Rounds()),
	)

	return &Result{
		RunID:        runID,
		Clean:        cleanReport,
		Baseline:     baseFrame,
		Mitigated:    mitFrame,
		BaselineGap:  baseGap,
		MitigatedGap: mitGap,
		TrainGap:     eg.BestGap(),
		Converged:    eg.Converged(),
		Rounds:       eg.Rounds(),
	}, nil
}

func loadTable(cfg Config) (*dataset.Table, error) {
	if cfg.Reader != nil {
		return dataset.ReadCSV(cfg.Reader)
	}
	return dataset.ReadCSVFile(cfg.DataPath)
}

func newBaseline(seed int64) *linear_model.LogisticRegression {
	return linear_model.NewLogisticRegression(
		linear_model.WithMaxIter(500),
		linear_model.WithRandomState(seed),
	)
}

func egIterOption(maxIter int) fairness.EGOption {
	if maxIter > 0 {
		return fairness.WithEGMaxIter(maxIter)
	}
	return fairness.WithEGMaxIter(50)
}

// audit evaluates hard test-set predictions into a metric frame plus the
// selection-rate gap.
func audit(p interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}, set *dataset.Dataset) (*fairness.MetricFrame, float64, error) {
	pred, err := p.Predict(set.X)
	if err != nil {
		return nil, 0, err
	}
	n, _ := pred.Dims()
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yPred.SetVec(i, pred.At(i, 0))
	}

	frame, err := fairness.NewMetricFrame(set.Y, yPred, set.Groups)
	if err != nil {
		return nil, 0, err
	}
	gap, err := frame.Gap(fairness.MetricSelectionRate)
	if err != nil {
		return nil, 0, err
	}
	if !gap.Defined {
		return frame, 0, nil
	}
	return frame, gap.Value, nil
}
