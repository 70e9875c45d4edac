// Package aieslab audits binary classifiers for group fairness and
// mitigates selection-rate disparities under a demographic-parity
// constraint.
//
// The library is organized as a linear experiment pipeline:
//
//   - dataset: CSV loading, cleaning with an explicit drop report, and
//     stratified train/test splitting
//   - preprocessing: one-hot encoding with a schema frozen at fit time
//   - linear_model: a weighted logistic-regression baseline
//   - metrics: confusion-matrix rates that distinguish "zero" from
//     "undefined"
//   - fairness: group-disaggregated audits (MetricFrame) and the
//     exponentiated-gradient reduction producing a randomized mixture of
//     classifiers
//   - report: text tables and selection-rate bar charts
//   - pipeline: one-call orchestration of a full run
//
// # Quick start
//
//	res, err := pipeline.Run(pipeline.Config{
//	    DataPath:           "adult.csv",
//	    Target:             "income",
//	    PositiveLabel:      ">50K",
//	    Sensitive:          "sex",
//	    Features:           []string{"age", "education", "hours_per_week"},
//	    AcceptedCategories: []string{"Male", "Female"},
//	    TestFraction:       0.3,
//	    Seed:               42,
//	    Constraint:         pipeline.ConstraintDemographicParity,
//	    Epsilon:            0.01,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.RenderComparison(os.Stdout, res.Baseline, res.Mitigated)
//
// Every run owns its intermediate state, so runs may execute concurrently.
// Non-convergence of the mitigation search is reported on the Result and
// as a ConvergenceWarning, never silently.
package aieslab
