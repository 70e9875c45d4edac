package pipeline

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// biasedCSV builds an income-style dataset whose score column is shifted
// per sensitive category, plus a few rows the cleaner must drop.
func biasedCSV(n int, seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	b.WriteString("score,group,income\n")
	for i := 0; i < n; i++ {
		offset, group := 0.3, "A"
		if i%2 == 1 {
			offset, group = -0.3, "B"
		}
		x := rng.Float64() + offset
		label := "<=50K"
		if x > 0.5 {
			label = ">50K"
		}
		fmt.Fprintf(&b, "%.6f,%s,%s\n", x, group, label)
	}
	// Rows the cleaner must remove: missing feature, missing target,
	// unaccepted sensitive category.
	b.WriteString("?,A,>50K\n")
	b.WriteString("0.9,B,?\n")
	b.WriteString("0.9,Other,>50K\n")
	return b.String()
}

func testConfig(csv string) Config {
	return Config{
		Reader:             strings.NewReader(csv),
		Target:             "income",
		PositiveLabel:      ">50K",
		Sensitive:          "group",
		Features:           []string{"score"},
		AcceptedCategories: []string{"A", "B"},
		TestFraction:       0.25,
		Seed:               7,
		Constraint:         ConstraintDemographicParity,
		Epsilon:            0.02,
		MaxIter:            20,
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(biasedCSV(400, 3))

	res, err := Run(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	assert.Equal(t, 403, res.Clean.TotalRows)
	assert.Equal(t, 400, res.Clean.KeptRows)
	assert.Equal(t, 2, res.Clean.DroppedMissing)
	assert.Equal(t, 1, res.Clean.DroppedSensitive)

	require.NotNil(t, res.Baseline)
	require.NotNil(t, res.Mitigated)
	assert.ElementsMatch(t, []string{"A", "B"}, res.Baseline.Groups())

	// The shifted score column induces a large baseline disparity; the
	// mitigation drives the training gap under epsilon and the realized
	// test gap well below the baseline.
	assert.Greater(t, res.BaselineGap, 0.3)
	assert.True(t, res.Converged, "train gap %v", res.TrainGap)
	assert.LessOrEqual(t, res.TrainGap, cfg.Epsilon+1e-6)
	assert.Less(t, res.MitigatedGap, res.BaselineGap)
	assert.Equal(t, 20, res.Rounds)
}

func TestRunDeterminism(t *testing.T) {
	csv := biasedCSV(200, 5)

	r1, err := Run(testConfig(csv))
	require.NoError(t, err)
	r2, err := Run(testConfig(csv))
	require.NoError(t, err)

	assert.NotEqual(t, r1.RunID, r2.RunID)
	assert.Equal(t, r1.BaselineGap, r2.BaselineGap)
	assert.Equal(t, r1.TrainGap, r2.TrainGap)
	assert.Equal(t, r1.MitigatedGap, r2.MitigatedGap)
}

func TestRunRestoresWarningHandler(t *testing.T) {
	var captured []error
	prev := scierrors.SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer scierrors.SetWarningHandler(prev)

	_, err := Run(testConfig(biasedCSV(200, 5)))
	require.NoError(t, err)

	// Warnings raised after the run must still reach the handler that was
	// installed before it.
	w := scierrors.NewUndefinedMetricWarning("true_positive_rate", "B", "zero actual positives")
	scierrors.Warn(w)

	require.NotEmpty(t, captured, "caller-installed warning handler was dropped by Run")
	assert.Equal(t, w, captured[len(captured)-1])
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no data source", func(c *Config) { c.Reader = nil; c.DataPath = "" }},
		{"fraction too low", func(c *Config) { c.TestFraction = 0 }},
		{"fraction too high", func(c *Config) { c.TestFraction = 1 }},
		{"negative epsilon", func(c *Config) { c.Epsilon = -0.01 }},
		{"unknown constraint", func(c *Config) { c.Constraint = "equalized_odds" }},
		{"negative budget", func(c *Config) { c.MaxIter = -1 }},
		{"no target", func(c *Config) { c.Target = "" }},
		{"no positive label", func(c *Config) { c.PositiveLabel = "" }},
		{"sensitive as feature", func(c *Config) { c.Features = []string{"group"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("score,group,income\n")
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRunAbortsOnDegenerateData(t *testing.T) {
	// Single target class after cleaning is terminal.
	csv := "score,group,income\n" +
		"0.9,A,>50K\n0.8,B,>50K\n0.7,A,>50K\n0.6,B,>50K\n"
	cfg := testConfig(csv)

	_, err := Run(cfg)
	require.Error(t, err)
}

func TestRunUnknownColumn(t *testing.T) {
	cfg := testConfig(biasedCSV(20, 1))
	cfg.Features = []string{"nonexistent"}

	_, err := Run(cfg)
	require.Error(t, err)
}
