package engine

import (
	"github.com/XiaoConstantine/mendloop/pkg/embedding"
	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

// goldenRequests is the curated evaluation set: happy paths, every unknown
// flavor, every restriction, both embargoes, and the parcel weight edges.
var goldenRequests = []string{
	"Ship 2 kg books box to US",
	"Ship 1 kg clothes box to EU",
	"Send 0.5 kg toys letter to APAC",
	"Ship 2 kg books box to atlantis",
	"Send 2 kg mystery box to US",
	"Quote 2 kg books satchel to EU",
	"Ship 1 stone books box to US",
	"Ship 2 kg weapon box to US",
	"Ship 2 kg fireworks crate to US",
	"Ship 2 kg battery box to US",
	"Ship 2 kg paint crate to EU",
	"Ship 2 kg perfume box to US",
	"Ship 2 kg alcohol box to APAC",
	"Ship 1 kg books box to iran",
	"Ship 1 kg books box to north korea",
	"Ship 1 kg books letter to EU",
	"Ship 5 kg books letter to EU",
	"Ship 10 kg books tube to EU",
	"Ship 2 kg books crate to US",
	"Ship 1 kg laptop box to canada",
}

// GoldenRequests returns up to size built-in golden requests plus any
// extras, in order. A zero cap keeps none of the built-ins, so golden
// evaluation runs over the extras only; a negative or oversized cap returns
// the whole built-in list.
func GoldenRequests(size int, extra []string) []string {
	n := len(goldenRequests)
	if size >= 0 && size < n {
		n = size
	}
	out := make([]string, 0, n+len(extra))
	out = append(out, goldenRequests[:n]...)
	out = append(out, extra...)
	return out
}

// GoldenEval is one golden request's true label with the baseline and
// patched predictions. It feeds precision/recall aggregation only and never
// mutates engine state.
type GoldenEval struct {
	Request       string
	TrueLabel     string
	BaselineLabel string
	PatchedLabel  string
}

// EvaluateGoldenSet replays the given requests at the configured noise rate
// through the pristine base configuration and through a patched copy built
// with the same retrieval and trigger filter the loop uses. True labels come
// from the carrier.
func EvaluateGoldenSet(
	requests []string,
	noise float64,
	embedder *embedding.HashingEmbedder,
	store *PatchStore,
	carrier *shipping.Carrier,
) []GoldenEval {
	evals := make([]GoldenEval, 0, len(requests))
	for _, request := range requests {
		trueLabel := carrier.Feedback(request).Label()

		base := shipping.NewBaseConfig()
		baselineLabel := shipping.Evaluate(request, base, noise).Label()

		patched := base.Clone()
		for _, patch := range store.RetrieveActive(embedder.Embed(request), retrievePatchK) {
			if patch.Matches(request) {
				patch.Apply(patched)
			}
		}
		patchedLabel := shipping.Evaluate(request, patched, noise).Label()

		evals = append(evals, GoldenEval{
			Request:       request,
			TrueLabel:     trueLabel,
			BaselineLabel: baselineLabel,
			PatchedLabel:  patchedLabel,
		})
	}
	return evals
}
