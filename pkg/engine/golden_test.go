package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/mendloop/internal/testutil"
	"github.com/XiaoConstantine/mendloop/pkg/embedding"
	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

func TestGoldenRequestsCapping(t *testing.T) {
	all := GoldenRequests(-1, nil)
	require.NotEmpty(t, all)

	assert.Equal(t, all, GoldenRequests(len(all)+100, nil), "oversized cap returns the whole list")
	assert.Equal(t, all[:5], GoldenRequests(5, nil))
	assert.Empty(t, GoldenRequests(0, nil), "zero cap disables the built-in set")
}

func TestGoldenRequestsZeroCapKeepsExtras(t *testing.T) {
	extra := []string{"Ship 9 kg books box to US"}
	assert.Equal(t, extra, GoldenRequests(0, extra))
}

func TestGoldenRequestsExtras(t *testing.T) {
	extra := []string{"Ship 9 kg books box to US"}

	got := GoldenRequests(3, extra)
	require.Len(t, got, 4)
	assert.Equal(t, extra[0], got[3], "extras append after the built-in slice")
}

func TestEvaluateGoldenSetEmptyStore(t *testing.T) {
	embedder := embedding.NewHashingEmbedder(64)
	store := NewPatchStore()
	carrier := shipping.NewCarrier()

	evals := EvaluateGoldenSet(GoldenRequests(-1, nil), 0, embedder, store, carrier)
	require.Len(t, evals, len(GoldenRequests(-1, nil)))

	for _, eval := range evals {
		assert.Equal(t, carrier.Feedback(eval.Request).Label(), eval.TrueLabel, eval.Request)
		assert.Equal(t, eval.BaselineLabel, eval.PatchedLabel,
			"no patches means patched and baseline agree: %s", eval.Request)
	}
}

func TestEvaluateGoldenSetPatchFlipsEmbargo(t *testing.T) {
	embedder := embedding.NewHashingEmbedder(64)
	carrier := shipping.NewCarrier()
	store := NewPatchStore()

	// The base skill quotes the embargoed request; the carrier rejects it.
	request := testutil.EmbargoRequest
	predicted := shipping.Evaluate(request, shipping.NewBaseConfig(), 0)
	require.True(t, predicted.OK())
	feedback := carrier.Feedback(request)
	require.Equal(t, shipping.CodeEmbargoDest, feedback.ErrorCode)

	patch, err := NewSynthesizer(embedder, carrier).Synthesize(request, predicted, feedback)
	require.NoError(t, err)
	require.True(t, NewGate(carrier).Admit(patch, store))

	evals := EvaluateGoldenSet([]string{request}, 0, embedder, store, carrier)
	require.Len(t, evals, 1)
	assert.Equal(t, shipping.CodeEmbargoDest, evals[0].TrueLabel)
	assert.Equal(t, shipping.LabelOK, evals[0].BaselineLabel)
	assert.Equal(t, shipping.CodeEmbargoDest, evals[0].PatchedLabel,
		"active embargo patch corrects the golden prediction")
}

func TestEvaluateGoldenSetTriggerFilter(t *testing.T) {
	embedder := embedding.NewHashingEmbedder(64)
	carrier := shipping.NewCarrier()
	store := NewPatchStore()

	patch, err := NewSynthesizer(embedder, carrier).Synthesize(
		testutil.EmbargoRequest,
		shipping.Evaluate(testutil.EmbargoRequest, shipping.NewBaseConfig(), 0),
		carrier.Feedback(testutil.EmbargoRequest))
	require.NoError(t, err)
	require.True(t, NewGate(carrier).Admit(patch, store))

	// A request not mentioning the trigger is untouched even if the patch
	// ranks in the retrieval window.
	evals := EvaluateGoldenSet([]string{"Ship 2 kg books box to US"}, 0, embedder, store, carrier)
	require.Len(t, evals, 1)
	assert.Equal(t, shipping.LabelOK, evals[0].PatchedLabel)
	assert.Equal(t, evals[0].BaselineLabel, evals[0].PatchedLabel)
}
