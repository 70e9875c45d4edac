// Standard attribute keys for fairness pipeline logging.
//
// Using these keys consistently keeps the audit trail of a run machine
// readable: how many rows the cleaner removed and why, which model was fit
// on how much data, and what selection-rate gaps were measured before and
// after mitigation. Keys follow a hierarchical naming convention
// ("data.rows_dropped", "fairness.gap") for log filtering.
package log

// Run and operation context.
const (
	// RunIDKey identifies one experiment run end to end.
	RunIDKey = "run.id"

	// OperationKey specifies the pipeline operation being performed.
	// Standard values: "load", "clean", "encode", "split", "fit",
	// "audit", "mitigate".
	OperationKey = "pipeline.operation"

	// ModelNameKey identifies the estimator type.
	// Examples: "LogisticRegression", "MixtureClassifier"
	ModelNameKey = "model.name"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "preprocessing", "fairness"
	ComponentKey = "pipeline.component"
)

// Data shape and cleaning audit trail.
const (
	// RowsKey is the number of rows currently in the dataset.
	RowsKey = "data.rows"

	// FeaturesKey is the number of encoded feature columns.
	FeaturesKey = "data.features"

	// RowsDroppedKey is the total number of rows removed by the cleaner.
	// Row removal is silent at the data level, so it MUST be logged.
	RowsDroppedKey = "data.rows_dropped"

	// DropReasonKey qualifies RowsDroppedKey.
	// Standard values: "missing_value", "sensitive_not_accepted".
	DropReasonKey = "data.drop_reason"

	// GroupsKey is the list of sensitive-attribute categories in play.
	GroupsKey = "data.groups"
)

// Fairness measurements.
const (
	// SensitiveKey names the sensitive attribute a run stratifies on.
	SensitiveKey = "fairness.sensitive"

	// MetricKey names a fairness metric ("selection_rate", "tpr", ...).
	MetricKey = "fairness.metric"

	// GapKey is a max pairwise per-group difference for MetricKey.
	GapKey = "fairness.gap"

	// EpsilonKey is the demographic-parity tolerance requested of the
	// mitigator.
	EpsilonKey = "fairness.eps"

	// ConvergedKey reports whether mitigation reached EpsilonKey.
	ConvergedKey = "fairness.converged"

	// IterationsKey is the number of mitigation rounds actually used.
	IterationsKey = "fairness.iterations"
)
