// Package report renders audit results for humans: text tables of the
// group-disaggregated metrics and a bar chart of selection rates.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/SnoozeScript/aies-lab/fairness"
	"github.com/SnoozeScript/aies-lab/metrics"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// fmtRate prints a rate, or "n/a" where the metric is undefined.
func fmtRate(r metrics.Rate) string {
	if !r.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", r.Value)
}

// RenderMetricFrame writes one audit as a category x metric table. The
// overall aggregate is the last row and the per-metric gaps the footer.
func RenderMetricFrame(w io.Writer, title string, frame *fairness.MetricFrame) error {
	if frame == nil {
		return scierrors.NewValueError("RenderMetricFrame", "nil frame")
	}

	fmt.Fprintf(w, "%s\n", title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprint(tw, "category\tn")
	for _, m := range fairness.AllMetrics {
		fmt.Fprintf(tw, "\t%s", m)
	}
	fmt.Fprintln(tw)

	rows := append(frame.Groups(), fairness.OverallKey)
	for _, g := range rows {
		fmt.Fprintf(tw, "%s\t%d", g, frame.GroupCount(g))
		for _, m := range fairness.AllMetrics {
			r, err := frame.Rate(m, g)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "\t%s", fmtRate(r))
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprint(tw, "gap\t")
	for _, m := range fairness.AllMetrics {
		gap, err := frame.Gap(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "\t%s", fmtRate(gap))
	}
	fmt.Fprintln(tw)

	return tw.Flush()
}

// RenderComparison writes baseline and mitigated audits side by side, one
// row per (metric, category) pair, with the change in the last column.
func RenderComparison(w io.Writer, baseline, mitigated *fairness.MetricFrame) error {
	if baseline == nil || mitigated == nil {
		return scierrors.NewValueError("RenderComparison", "nil frame")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "metric\tcategory\tbaseline\tmitigated\tchange")

	rows := append(baseline.Groups(), fairness.OverallKey)
	for _, m := range fairness.AllMetrics {
		for _, g := range rows {
			b, err := baseline.Rate(m, g)
			if err != nil {
				return err
			}
			a, err := mitigated.Rate(m, g)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m, g, fmtRate(b), fmtRate(a), fmtDelta(b, a))
		}

		bGap, err := baseline.Gap(m)
		if err != nil {
			return err
		}
		aGap, err := mitigated.Gap(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\tgap\t%s\t%s\t%s\n", m, fmtRate(bGap), fmtRate(aGap), fmtDelta(bGap, aGap))
	}

	return tw.Flush()
}

func fmtDelta(before, after metrics.Rate) string {
	if !before.Defined || !after.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%+.4f", after.Value-before.Value)
}
