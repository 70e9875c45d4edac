package fairness

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// DemographicParity is the constraint that selection rates be equal across
// sensitive categories, up to a tolerance handled by the mitigator. For K
// categories it exposes 2K signed constraints: for each category g, the
// violation gamma of "rate(g) − rate(overall)" and its negation.
type DemographicParity struct {
	groups []string
	index  map[string]int
	counts []int
	n      int
}

// NewDemographicParity binds the constraint to the training rows' category
// assignments.
func NewDemographicParity(groups []string) (*DemographicParity, error) {
	if len(groups) == 0 {
		return nil, scierrors.Wrap(scierrors.ErrEmptyData, "NewDemographicParity")
	}
	set := make(map[string]bool)
	for _, g := range groups {
		set[g] = true
	}
	names := make([]string, 0, len(set))
	for g := range set {
		names = append(names, g)
	}
	sort.Strings(names)

	m := &DemographicParity{
		groups: names,
		index:  make(map[string]int, len(names)),
		counts: make([]int, len(names)),
		n:      len(groups),
	}
	for i, g := range names {
		m.index[g] = i
	}
	for _, g := range groups {
		m.counts[m.index[g]]++
	}
	return m, nil
}

// Name identifies the constraint kind.
func (m *DemographicParity) Name() string { return "demographic_parity" }

// Groups returns the bound categories in sorted order.
func (m *DemographicParity) Groups() []string {
	out := make([]string, len(m.groups))
	copy(out, m.groups)
	return out
}

// NumConstraints returns the number of signed constraints (2 per category).
func (m *DemographicParity) NumConstraints() int { return 2 * len(m.groups) }

// GroupIndex maps each row's category to its index, in the same order the
// constraint was bound with.
func (m *DemographicParity) GroupIndex(groups []string) ([]int, error) {
	idx := make([]int, len(groups))
	for i, g := range groups {
		j, ok := m.index[g]
		if !ok {
			return nil, scierrors.NewSchemaError("DemographicParity", g, "unseen category")
		}
		idx[i] = j
	}
	return idx, nil
}

// GroupRates returns the per-category mean of expected positive
// predictions, plus the overall mean.
func (m *DemographicParity) GroupRates(expected []float64, groupIdx []int) (rates []float64, overall float64) {
	rates = make([]float64, len(m.groups))
	for i, p := range expected {
		rates[groupIdx[i]] += p
	}
	for g := range rates {
		if m.counts[g] > 0 {
			rates[g] /= float64(m.counts[g])
		}
	}
	return rates, stat.Mean(expected, nil)
}

// Gamma returns the signed constraint violations for expected predictions:
// entry 2g is rate(g) − rate(overall), entry 2g+1 its negation.
func (m *DemographicParity) Gamma(expected []float64, groupIdx []int) []float64 {
	rates, overall := m.GroupRates(expected, groupIdx)
	gamma := make([]float64, m.NumConstraints())
	for g := range rates {
		diff := rates[g] - overall
		gamma[2*g] = diff
		gamma[2*g+1] = -diff
	}
	return gamma
}

// Gap returns the maximum pairwise difference of per-category rates.
func (m *DemographicParity) Gap(expected []float64, groupIdx []int) float64 {
	rates, _ := m.GroupRates(expected, groupIdx)
	if len(rates) < 2 {
		return 0
	}
	lo, hi := rates[0], rates[0]
	for _, r := range rates[1:] {
		if r < lo {
			lo = r
		}
		if r > hi {
			hi = r
		}
	}
	return hi - lo
}

// SignedCosts converts adversary weights lambda (length NumConstraints)
// into the per-row cost added to predicting positive: for a row in
// category g the Lagrangian contributes (λ_{g+} − λ_{g−})/n_g minus the
// mean signed weight 1/n over all categories.
func (m *DemographicParity) SignedCosts(lambda []float64, groupIdx []int) []float64 {
	signed := make([]float64, len(m.groups))
	var total float64
	for g := range m.groups {
		signed[g] = lambda[2*g] - lambda[2*g+1]
		total += signed[g]
	}

	costs := make([]float64, len(groupIdx))
	n := float64(m.n)
	for i, g := range groupIdx {
		costs[i] = signed[g]/float64(m.counts[g]) - total/n
	}
	return costs
}
