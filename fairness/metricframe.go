// Package fairness provides the auditing and mitigation stage of the
// pipeline: group-disaggregated classification metrics, the demographic
// parity constraint, and an exponentiated-gradient reduction producing a
// randomized mixture of classifiers.
package fairness

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/SnoozeScript/aies-lab/metrics"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// Metric names understood by MetricFrame.
const (
	MetricSelectionRate     = "selection_rate"
	MetricTruePositiveRate  = "true_positive_rate"
	MetricFalsePositiveRate = "false_positive_rate"
	MetricFalseNegativeRate = "false_negative_rate"
	MetricAccuracy          = "accuracy"
)

// OverallKey is the pseudo-category aggregating across all rows.
const OverallKey = "overall"

// AllMetrics lists the metric names in presentation order.
var AllMetrics = []string{
	MetricSelectionRate,
	MetricTruePositiveRate,
	MetricFalsePositiveRate,
	MetricFalseNegativeRate,
	MetricAccuracy,
}

// MetricFrame holds confusion-derived rates disaggregated by a sensitive
// attribute, plus the overall aggregate. It is created fresh per model
// evaluation and never mutated afterwards; baseline and mitigated frames
// are only ever compared.
type MetricFrame struct {
	groups  []string
	byGroup map[string]metrics.Confusion
	overall metrics.Confusion
}

// NewMetricFrame audits predictions: yTrue and yPred are 0/1 label vectors
// and groups assigns each row to a sensitive-attribute category, all of
// equal length. A category with zero actual positives gets an undefined
// true-positive rate (reported via a Rate with Defined=false and an
// UndefinedMetricWarning), never a false zero.
func NewMetricFrame(yTrue, yPred *mat.VecDense, groups []string) (*MetricFrame, error) {
	if yTrue == nil || yPred == nil {
		return nil, scierrors.NewValueError("NewMetricFrame", "nil label vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return nil, scierrors.Wrap(scierrors.ErrEmptyData, "NewMetricFrame")
	}
	if yPred.Len() != n {
		return nil, scierrors.NewDimensionError("NewMetricFrame", n, yPred.Len(), 0)
	}
	if len(groups) != n {
		return nil, scierrors.NewDimensionError("NewMetricFrame", n, len(groups), 0)
	}

	overall, err := metrics.NewConfusion(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	byIdx := make(map[string][]int)
	for i, g := range groups {
		byIdx[g] = append(byIdx[g], i)
	}
	names := make([]string, 0, len(byIdx))
	for g := range byIdx {
		names = append(names, g)
	}
	sort.Strings(names)

	frame := &MetricFrame{
		groups:  names,
		byGroup: make(map[string]metrics.Confusion, len(names)),
		overall: overall,
	}
	for _, g := range names {
		idx := byIdx[g]
		yt := mat.NewVecDense(len(idx), nil)
		yp := mat.NewVecDense(len(idx), nil)
		for k, i := range idx {
			yt.SetVec(k, yTrue.AtVec(i))
			yp.SetVec(k, yPred.AtVec(i))
		}
		c, err := metrics.NewConfusion(yt, yp)
		if err != nil {
			return nil, err
		}
		frame.byGroup[g] = c

		if !c.TruePositiveRate().Defined {
			scierrors.Warn(scierrors.NewUndefinedMetricWarning(
				MetricTruePositiveRate, g, "zero actual positives in category"))
		}
	}
	return frame, nil
}

// Groups returns the sensitive categories in sorted order.
func (f *MetricFrame) Groups() []string {
	out := make([]string, len(f.groups))
	copy(out, f.groups)
	return out
}

// GroupCount returns the number of rows in a category (or all rows for
// OverallKey).
func (f *MetricFrame) GroupCount(group string) int {
	if group == OverallKey {
		return f.overall.Total()
	}
	return f.byGroup[group].Total()
}

// Rate returns one metric for one category. OverallKey addresses the
// aggregate row.
func (f *MetricFrame) Rate(metric, group string) (metrics.Rate, error) {
	var c metrics.Confusion
	if group == OverallKey {
		c = f.overall
	} else {
		var ok bool
		c, ok = f.byGroup[group]
		if !ok {
			return metrics.Rate{}, scierrors.NewValueError("MetricFrame.Rate", "unknown category '"+group+"'")
		}
	}
	return rateOf(c, metric)
}

// Overall returns a metric aggregated over all rows.
func (f *MetricFrame) Overall(metric string) (metrics.Rate, error) {
	return f.Rate(metric, OverallKey)
}

// Gap returns the maximum pairwise difference of a metric across
// categories, considering only categories where the metric is defined. It
// is undefined when fewer than two categories define the metric.
func (f *MetricFrame) Gap(metric string) (metrics.Rate, error) {
	var defined []float64
	for _, g := range f.groups {
		r, err := f.Rate(metric, g)
		if err != nil {
			return metrics.Rate{}, err
		}
		if r.Defined {
			defined = append(defined, r.Value)
		}
	}
	if len(defined) < 2 {
		return metrics.UndefinedRate(), nil
	}
	lo, hi := defined[0], defined[0]
	for _, v := range defined[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return metrics.DefinedRate(hi - lo), nil
}

func rateOf(c metrics.Confusion, metric string) (metrics.Rate, error) {
	switch metric {
	case MetricSelectionRate:
		return c.SelectionRate(), nil
	case MetricTruePositiveRate:
		return c.TruePositiveRate(), nil
	case MetricFalsePositiveRate:
		return c.FalsePositiveRate(), nil
	case MetricFalseNegativeRate:
		return c.FalseNegativeRate(), nil
	case MetricAccuracy:
		return c.AccuracyRate(), nil
	default:
		return metrics.Rate{}, scierrors.NewValueError("MetricFrame", "unknown metric '"+metric+"'")
	}
}
