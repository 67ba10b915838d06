package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/mendloop/pkg/config"
	"github.com/XiaoConstantine/mendloop/pkg/embedding"
	"github.com/XiaoConstantine/mendloop/pkg/errors"
	"github.com/XiaoConstantine/mendloop/pkg/logging"
	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

// Retrieval fan-out per request. Trace lookback is observational only; the
// patch retrieval bounds how many corrections one request may compose.
const (
	retrievePatchK = 8
	retrieveTraceK = 5
)

// RunResult is everything one simulation run produced.
type RunResult struct {
	RunID   string
	Seed    int64
	Metrics *Metrics
	Traces  []*Trace
	Patches []*Patch
	Golden  []GoldenEval
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithExtraGolden appends externally supplied golden requests to the
// built-in list.
func WithExtraGolden(requests []string) Option {
	return func(s *Simulation) {
		s.extraGolden = requests
	}
}

// WithOutput redirects verbose step traces, which default to stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Simulation) {
		s.out = w
	}
}

// Simulation owns one run's private state: stores, metrics, generator, and
// the synthesis/gate pair. Runs are strictly sequential inside; parallelism
// is only ever across Simulation instances.
type Simulation struct {
	cfg         *config.SimulationConfig
	runID       string
	embedder    *embedding.HashingEmbedder
	carrier     *shipping.Carrier
	synthesizer *Synthesizer
	gate        *Gate
	generator   *RequestGenerator
	traces      *TraceStore
	patches     *PatchStore
	metrics     *Metrics
	extraGolden []string
	out         io.Writer
	logger      *logging.Logger
}

// NewSimulation wires a fresh run. Nothing is shared with any other
// Simulation: each one owns its stores, metrics, and seeded generator.
func NewSimulation(cfg *config.SimulationConfig, opts ...Option) *Simulation {
	carrier := shipping.NewCarrier()
	embedder := embedding.NewHashingEmbedder(cfg.EmbeddingDims)
	s := &Simulation{
		cfg:         cfg,
		runID:       uuid.New().String(),
		embedder:    embedder,
		carrier:     carrier,
		synthesizer: NewSynthesizer(embedder, carrier),
		gate:        NewGate(carrier),
		generator:   NewRequestGenerator(cfg.Seed),
		traces:      NewTraceStore(),
		patches:     NewPatchStore(),
		metrics:     NewMetrics(),
		out:         os.Stdout,
		logger:      logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunID returns the run's unique identifier.
func (s *Simulation) RunID() string {
	return s.runID
}

// Run drives the configured number of requests through the loop, then
// evaluates the golden set against whatever corpus accumulated.
func (s *Simulation) Run(ctx context.Context) (*RunResult, error) {
	ctx = logging.WithRunID(ctx, s.runID)
	s.logger.Info(ctx, "starting simulation: runs=%d seed=%d noise=%v", s.cfg.Runs, s.cfg.Seed, s.cfg.NoiseRate)

	printed := 0
	for i := 1; i <= s.cfg.Runs; i++ {
		if err := errors.CheckContext(ctx, "simulation"); err != nil {
			return nil, err
		}
		verbose := s.cfg.Verbose && printed < s.cfg.TraceRuns
		if s.step(ctx, i, verbose) {
			printed++
		}
	}

	active, quarantined := s.patches.Counts()
	s.metrics.PatchesActive = active
	s.metrics.PatchesQuarantined = quarantined

	golden := EvaluateGoldenSet(
		GoldenRequests(s.cfg.GoldenSize, s.extraGolden),
		s.cfg.NoiseRate, s.embedder, s.patches, s.carrier)

	s.logger.Info(ctx, "simulation done: total=%d ok=%d baseline_ok=%d active=%d quarantined=%d",
		s.metrics.Total, s.metrics.OK, s.metrics.BaselineOK, active, quarantined)

	return &RunResult{
		RunID:   s.runID,
		Seed:    s.cfg.Seed,
		Metrics: s.metrics,
		Traces:  s.traces.All(),
		Patches: s.patches.All(),
		Golden:  golden,
	}, nil
}

// step processes one request end to end and reports whether it printed a
// verbose trace.
func (s *Simulation) step(ctx context.Context, runIdx int, verbose bool) bool {
	request := s.generator.Next()
	queryVec := s.embedder.Embed(request)

	// Lookback over past traces is observational; the result does not
	// influence the outcome.
	similar := s.traces.RetrieveSimilar(queryVec, retrieveTraceK)
	s.logger.Debug(ctx, "run %d: %q (%d similar traces)", runIdx, request, len(similar))

	activePatches := s.patches.RetrieveActive(queryVec, retrievePatchK)

	baseCfg := shipping.NewBaseConfig()
	patchedCfg := baseCfg.Clone()

	retrievedIDs := make([]string, 0, len(activePatches))
	var appliedIDs []string
	for _, patch := range activePatches {
		retrievedIDs = append(retrievedIDs, patch.ID)
		if patch.Matches(request) {
			patch.Apply(patchedCfg)
			appliedIDs = append(appliedIDs, patch.ID)
		}
	}

	var result, baseline shipping.Result
	var patchedSteps, baselineSteps []string
	if verbose {
		result, patchedSteps = shipping.EvaluateTrace(request, patchedCfg, s.cfg.NoiseRate)
		baseline, baselineSteps = shipping.EvaluateTrace(request, baseCfg, s.cfg.NoiseRate)
	} else {
		result = shipping.Evaluate(request, patchedCfg, s.cfg.NoiseRate)
		baseline = shipping.Evaluate(request, baseCfg, s.cfg.NoiseRate)
	}
	feedback := s.carrier.Feedback(request)

	carrierLabel := feedback.Label()
	ok := result.Label() == carrierLabel
	baselineOK := baseline.Label() == carrierLabel

	s.metrics.RecordOutcome(ok, baselineOK, len(retrievedIDs), len(appliedIDs))

	var failureCluster string
	var patchEvents []string
	if !ok {
		failureCluster = carrierLabel
		if carrierLabel == shipping.LabelOK {
			failureCluster = result.Label()
		}
		s.metrics.RecordFailure(failureCluster)
		patchEvents = append(patchEvents, "failure_label: "+failureCluster)
		patchEvents = append(patchEvents, s.repair(ctx, request, result, feedback)...)
	}

	trace := &Trace{
		ID:                uuid.New().String(),
		Request:           request,
		Result:            result,
		Feedback:          feedback,
		OK:                ok,
		BaselineOK:        baselineOK,
		RetrievedPatchIDs: retrievedIDs,
		AppliedPatchIDs:   appliedIDs,
		FailureCluster:    failureCluster,
	}
	s.traces.Append(trace, queryVec)

	if verbose {
		s.printTrace(runIdx, request, baseline, baselineSteps, result, patchedSteps,
			carrierLabel, retrievedIDs, appliedIDs, patchEvents)
		return true
	}
	return false
}

// repair attempts to learn from a miss: synthesize one candidate patch and
// push it through the gate. Synthesis failures are logged and skipped; a
// request the engine cannot learn from is left unpatched.
func (s *Simulation) repair(ctx context.Context, request string, result shipping.Result, feedback shipping.Feedback) []string {
	patch, err := s.synthesizer.Synthesize(request, result, feedback)
	if err != nil {
		s.logger.Debug(ctx, "patch synthesis skipped: %v", err)
		return []string{fmt.Sprintf("create_patch: skipped (%v)", err)}
	}
	patch.SourceTraceID = uuid.New().String()
	s.metrics.PatchesCreated++

	if s.gate.Admit(patch, s.patches) {
		s.logger.Info(ctx, "patch activated: id=%s trigger=%q", patch.ID, patch.Trigger)
		return []string{fmt.Sprintf("create_patch: %s trigger='%s' status=active tests=pass", patch.ID, patch.Trigger)}
	}
	s.logger.Info(ctx, "patch quarantined: id=%s trigger=%q", patch.ID, patch.Trigger)
	return []string{fmt.Sprintf("create_patch: %s trigger='%s' status=quarantined tests=fail", patch.ID, patch.Trigger)}
}

func formatResult(result shipping.Result) string {
	if result.OK() {
		q := result.Quote
		return fmt.Sprintf("OK zone=%s weight_kg=%v cost=%v", q.Zone, q.WeightKg, q.Cost)
	}
	return fmt.Sprintf("ERR %s (%s)", result.Error.Code, result.Error.Detail)
}

func (s *Simulation) printTrace(
	runIdx int,
	request string,
	baseline shipping.Result, baselineSteps []string,
	result shipping.Result, patchedSteps []string,
	carrierLabel string,
	retrievedIDs, appliedIDs, patchEvents []string,
) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== TRACE RUN %d ===\n", runIdx)
	fmt.Fprintf(&b, "request: %s\n", request)
	fmt.Fprintf(&b, "retrieve patches: %v\n", retrievedIDs)
	fmt.Fprintf(&b, "apply patches: %v\n", appliedIDs)
	if len(patchEvents) > 0 {
		b.WriteString("patch events:\n")
		for _, event := range patchEvents {
			fmt.Fprintf(&b, "  - %s\n", event)
		}
	}
	b.WriteString("\n[baseline]\n")
	for _, step := range baselineSteps {
		fmt.Fprintf(&b, "  - %s\n", step)
	}
	fmt.Fprintf(&b, "  => %s\n", formatResult(baseline))
	b.WriteString("\n[patched]\n")
	for _, step := range patchedSteps {
		fmt.Fprintf(&b, "  - %s\n", step)
	}
	fmt.Fprintf(&b, "  => %s\n", formatResult(result))
	fmt.Fprintf(&b, "\n[carrier feedback] %s\n", carrierLabel)
	fmt.Fprint(s.out, b.String())
}
