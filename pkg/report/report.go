// Package report renders the post-run textual report: success-rate deltas,
// failure clusters, golden-set precision/recall, and sample patches. It is a
// read-only consumer of run results.
package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/XiaoConstantine/mendloop/pkg/engine"
	"github.com/XiaoConstantine/mendloop/pkg/metrics"
)

var titleCaser = cases.Title(language.English)

func heading(b *strings.Builder, text string) {
	b.WriteString(titleCaser.String(text))
	b.WriteString(":\n")
}

// Format renders the full report for one run result.
func Format(result *engine.RunResult, showPatches int) string {
	m := result.Metrics

	patchedRate := metrics.Rate(m.OK, m.Total)
	baselineRate := metrics.Rate(m.BaselineOK, m.Total)

	var b strings.Builder
	b.WriteString("=== Mendloop Simulation Report ===\n")
	fmt.Fprintf(&b, "Total runs: %d\n", m.Total)
	fmt.Fprintf(&b, "Baseline success rate: %s\n", percent(baselineRate))
	fmt.Fprintf(&b, "Patched success rate: %s\n", percent(patchedRate))
	fmt.Fprintf(&b, "Delta: %s\n", percent(patchedRate-baselineRate))
	fmt.Fprintf(&b, "Rolling(%d) success rate: %s\n", engine.WindowCap, percent(m.RollingRate()))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Patches created: %d\n", m.PatchesCreated)
	fmt.Fprintf(&b, "Active patches: %d\n", m.PatchesActive)
	fmt.Fprintf(&b, "Quarantined patches: %d\n", m.PatchesQuarantined)
	fmt.Fprintf(&b, "Avg patches retrieved/run: %.2f\n", metrics.Rate(m.RetrievedPatches, m.Total))
	fmt.Fprintf(&b, "Avg patches applied/run: %.2f\n", metrics.Rate(m.AppliedPatches, m.Total))
	b.WriteString("\n")

	heading(&b, "failure clusters")
	writeFailures(&b, m.Failures)
	b.WriteString("\n")

	heading(&b, "golden set evaluation")
	writeGolden(&b, result.Golden)
	b.WriteString("\n")

	heading(&b, "sample patches")
	writePatches(&b, result.Patches, showPatches)

	return b.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func writeFailures(b *strings.Builder, failures map[string]int) {
	if len(failures) == 0 {
		b.WriteString("- none\n")
		return
	}

	type cluster struct {
		code  string
		count int
	}
	clusters := make([]cluster, 0, len(failures))
	for code, count := range failures {
		clusters = append(clusters, cluster{code, count})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].count != clusters[j].count {
			return clusters[i].count > clusters[j].count
		}
		return clusters[i].code < clusters[j].code
	})

	for _, c := range clusters {
		fmt.Fprintf(b, "- %s: %d\n", c.code, c.count)
	}
}

func writeGolden(b *strings.Builder, evals []engine.GoldenEval) {
	fmt.Fprintf(b, "Golden set size: %d\n", len(evals))
	if len(evals) == 0 {
		return
	}

	basePairs := make([]metrics.LabelPair, len(evals))
	patchedPairs := make([]metrics.LabelPair, len(evals))
	for i, e := range evals {
		basePairs[i] = metrics.LabelPair{True: e.TrueLabel, Pred: e.BaselineLabel}
		patchedPairs[i] = metrics.LabelPair{True: e.TrueLabel, Pred: e.PatchedLabel}
	}

	basePerLabel, baseMacro := metrics.PrecisionRecall(basePairs)
	patchedPerLabel, patchedMacro := metrics.PrecisionRecall(patchedPairs)

	fmt.Fprintf(b, "Baseline golden accuracy: %s\n", percent(metrics.Accuracy(basePairs)))
	fmt.Fprintf(b, "Patched golden accuracy: %s\n", percent(metrics.Accuracy(patchedPairs)))
	fmt.Fprintf(b, "Baseline macro P/R: %s / %s\n", percent(baseMacro.Precision), percent(baseMacro.Recall))
	fmt.Fprintf(b, "Patched macro P/R: %s / %s\n", percent(patchedMacro.Precision), percent(patchedMacro.Recall))

	b.WriteString("Per-label precision/recall:\n")
	for _, label := range metrics.Labels(basePairs) {
		bp := basePerLabel[label]
		pp := patchedPerLabel[label]
		fmt.Fprintf(b, "- %s: baseline %s/%s | patched %s/%s\n",
			label,
			percent(bp.Precision), percent(bp.Recall),
			percent(pp.Precision), percent(pp.Recall))
	}
}

func writePatches(b *strings.Builder, patches []*engine.Patch, show int) {
	if len(patches) == 0 || show <= 0 {
		b.WriteString("- none\n")
		return
	}
	if show > len(patches) {
		show = len(patches)
	}
	for _, patch := range patches[:show] {
		fmt.Fprintf(b, "- %s [%s] trigger='%s' (%s)\n", patch.ID, patch.Status, patch.Trigger, patch.Summary())
	}
}

// FormatSweep renders the per-seed summary table printed after a multi-seed
// sweep.
func FormatSweep(results []*engine.RunResult) string {
	var b strings.Builder
	b.WriteString("=== Seed Sweep ===\n")
	b.WriteString("seed      baseline   patched    delta      active  quarantined\n")
	for _, r := range results {
		m := r.Metrics
		baselineRate := metrics.Rate(m.BaselineOK, m.Total)
		patchedRate := metrics.Rate(m.OK, m.Total)
		fmt.Fprintf(&b, "%-9d %-10s %-10s %-10s %-7d %d\n",
			r.Seed,
			percent(baselineRate), percent(patchedRate), percent(patchedRate-baselineRate),
			m.PatchesActive, m.PatchesQuarantined)
	}
	return b.String()
}
