package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/mendloop/pkg/engine"
	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

func sampleResult() *engine.RunResult {
	m := engine.NewMetrics()
	for i := 0; i < 8; i++ {
		m.RecordOutcome(true, i < 4, 2, 1)
	}
	for i := 0; i < 2; i++ {
		m.RecordOutcome(false, false, 0, 0)
	}
	m.RecordFailure(shipping.CodeHazmatItem)
	m.RecordFailure(shipping.CodeHazmatItem)
	m.RecordFailure(shipping.CodeUnitUnknown)
	m.PatchesCreated = 3
	m.PatchesActive = 2
	m.PatchesQuarantined = 1

	return &engine.RunResult{
		RunID:   "test-run",
		Seed:    42,
		Metrics: m,
		Patches: []*engine.Patch{
			{
				ID:      engine.PatchID("hazmat:battery"),
				Trigger: "battery",
				Status:  engine.StatusActive,
				Ops:     []engine.Op{engine.AddHazmatItem{Item: "battery"}},
			},
			{
				ID:      engine.PatchID("unit:lb"),
				Trigger: "lb",
				Status:  engine.StatusQuarantined,
				Ops:     []engine.Op{engine.AddUnitConversion{Unit: "lb", Factor: 0.453592}},
			},
		},
		Golden: []engine.GoldenEval{
			{Request: "a", TrueLabel: shipping.LabelOK, BaselineLabel: shipping.LabelOK, PatchedLabel: shipping.LabelOK},
			{Request: "b", TrueLabel: shipping.CodeHazmatItem, BaselineLabel: shipping.LabelOK, PatchedLabel: shipping.CodeHazmatItem},
			{Request: "c", TrueLabel: shipping.CodeEmbargoDest, BaselineLabel: shipping.LabelOK, PatchedLabel: shipping.LabelOK},
		},
	}
}

func TestFormatRates(t *testing.T) {
	out := Format(sampleResult(), 5)

	assert.Contains(t, out, "Total runs: 10")
	assert.Contains(t, out, "Baseline success rate: 40.00%")
	assert.Contains(t, out, "Patched success rate: 80.00%")
	assert.Contains(t, out, "Delta: 40.00%")
	assert.Contains(t, out, "Patches created: 3")
	assert.Contains(t, out, "Active patches: 2")
	assert.Contains(t, out, "Quarantined patches: 1")
}

func TestFormatFailureClustersOrdered(t *testing.T) {
	out := Format(sampleResult(), 5)

	hazmat := strings.Index(out, shipping.CodeHazmatItem+": 2")
	unit := strings.Index(out, shipping.CodeUnitUnknown+": 1")
	require.Greater(t, hazmat, 0)
	require.Greater(t, unit, 0)
	assert.Less(t, hazmat, unit, "clusters sort by descending count")
}

func TestFormatGoldenSection(t *testing.T) {
	out := Format(sampleResult(), 5)

	assert.Contains(t, out, "Golden set size: 3")
	// Baseline gets 1 of 3 right, patched 2 of 3.
	assert.Contains(t, out, "Baseline golden accuracy: 33.33%")
	assert.Contains(t, out, "Patched golden accuracy: 66.67%")
	assert.Contains(t, out, "Per-label precision/recall:")
	assert.Contains(t, out, shipping.CodeEmbargoDest)
}

func TestFormatPatchSection(t *testing.T) {
	result := sampleResult()

	out := Format(result, 1)
	assert.Contains(t, out, result.Patches[0].ID)
	assert.Contains(t, out, "[active] trigger='battery'")
	assert.NotContains(t, out, result.Patches[1].ID, "show cap hides the rest")

	out = Format(result, 0)
	assert.Contains(t, out, "Sample Patches:\n- none")
}

func TestFormatEmptyFailures(t *testing.T) {
	result := sampleResult()
	result.Metrics = engine.NewMetrics()
	result.Metrics.RecordOutcome(true, true, 0, 0)

	out := Format(result, 0)
	assert.Contains(t, out, "Failure Clusters:\n- none")
}

func TestFormatSweep(t *testing.T) {
	first := sampleResult()
	second := sampleResult()
	second.Seed = 7

	out := FormatSweep([]*engine.RunResult{first, second})
	assert.Contains(t, out, "=== Seed Sweep ===")
	assert.Contains(t, out, "seed")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header, column row, one line per seed")
	assert.True(t, strings.HasPrefix(lines[2], "42"))
	assert.True(t, strings.HasPrefix(lines[3], "7"))
}
