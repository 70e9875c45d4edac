package dataset

import (
	"math/rand"
	"sort"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// StratifiedSplit partitions a cleaned table into train and test subsets,
// stratified by the sensitive attribute: each category is shuffled and
// split independently so category proportions are preserved on both sides.
// The split is deterministic under a fixed seed and the inputs are not
// mutated; the partition is created once per run and immutable thereafter.
//
// Each category needs at least 2 rows so both subsets see it; a smaller
// category is a DataQualityError.
func StratifiedSplit(t *Table, sensitive string, testFraction float64, seed int64) (train, test *Table, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, scierrors.NewValidationError("testFraction", "must be in (0, 1)", testFraction)
	}
	sensIdx, ok := t.Col(sensitive)
	if !ok {
		return nil, nil, scierrors.NewSchemaError("StratifiedSplit", sensitive, "required field is absent")
	}

	byGroup := make(map[string][]int)
	for i, row := range t.Rows {
		g := row[sensIdx]
		byGroup[g] = append(byGroup[g], i)
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for _, g := range groups {
		idx := byGroup[g]
		if len(idx) < 2 {
			return nil, nil, scierrors.NewDataQualityError("StratifiedSplit",
				"sensitive category '"+g+"' has fewer than 2 rows", len(idx), t.NumRows())
		}
		rng.Shuffle(len(idx), func(a, b int) {
			idx[a], idx[b] = idx[b], idx[a]
		})

		nTest := int(testFraction*float64(len(idx)) + 0.5)
		if nTest < 1 {
			nTest = 1
		}
		if nTest > len(idx)-1 {
			nTest = len(idx) - 1
		}
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}

	// Restore original row order inside each subset.
	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	return t.subset(trainIdx), t.subset(testIdx), nil
}
