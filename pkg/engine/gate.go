package engine

import (
	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

// regressionRequests are the canonical requests every candidate must keep
// working. Their expected labels are recomputed from the carrier when the
// gate is built, so the suite tracks carrier truth rather than a hardcoded
// guess.
var regressionRequests = []string{
	"Ship 2 kg books box to US",
	"Quote 1.5kg clothes box to EU",
	"Send 3 kgs toys box to APAC",
}

// Gate is the sole correctness barrier between a synthesized candidate and
// the retrievable corpus. A candidate activates only if the regression
// suite plus its own tests pass when it is composed with every already
// active patch on a fresh base configuration.
type Gate struct {
	suite []PatchTest
}

// NewGate builds the gate, relabelling the canonical suite from the
// carrier.
func NewGate(carrier *shipping.Carrier) *Gate {
	suite := make([]PatchTest, len(regressionRequests))
	for i, request := range regressionRequests {
		suite[i] = PatchTest{
			Request: request,
			Label:   carrier.Feedback(request).Label(),
		}
	}
	return &Gate{suite: suite}
}

// Suite returns the gate's canonical tests.
func (g *Gate) Suite() []PatchTest {
	return g.suite
}

// Evaluate composes the candidate with the given active patches on a fresh
// base configuration and runs the regression suite plus the candidate's own
// tests at zero noise. It reports whether every test produced its expected
// label.
func (g *Gate) Evaluate(candidate *Patch, active []*Patch) bool {
	cfg := shipping.NewBaseConfig()
	for _, p := range active {
		p.Apply(cfg)
	}
	candidate.Apply(cfg)

	for _, test := range g.suite {
		if shipping.Evaluate(test.Request, cfg, 0).Label() != test.Label {
			return false
		}
	}
	for _, test := range candidate.Tests {
		if shipping.Evaluate(test.Request, cfg, 0).Label() != test.Label {
			return false
		}
	}
	return true
}

// Admit runs the gate over the store's active set and records the verdict:
// pass transitions the candidate to active, fail to quarantined. Either way
// the candidate is upserted, so quarantined patches remain inspectable.
// Quarantine is terminal; there is no retry path.
func (g *Gate) Admit(candidate *Patch, store *PatchStore) bool {
	passed := g.Evaluate(candidate, store.Active())
	if passed {
		candidate.Status = StatusActive
	} else {
		candidate.Status = StatusQuarantined
	}
	store.Upsert(candidate)
	return passed
}
