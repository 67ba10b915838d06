// Package mendloop simulates a self-repairing skill: an agent that quotes
// shipping requests from a deliberately incomplete rule table, compares its
// answers against a carrier that holds the complete table, and learns typed
// corrective patches from every disagreement.
//
// The loop is closed and fully deterministic for a fixed seed:
//   - A seeded generator produces free-text shipping requests.
//   - The skill interprets each request with its current configuration plus
//     any retrieved patches whose trigger occurs in the request.
//   - The carrier evaluates the same request with ground-truth rules and
//     returns structured feedback on rejection.
//   - On a mismatch, a synthesizer diagnoses the gap and emits a candidate
//     patch: a trigger phrase, typed operations, and self-tests.
//   - A regression gate replays canonical requests and the candidate's own
//     tests before activation; failures quarantine the patch permanently.
//
// Key packages:
//
//   - shipping: the configurable interpreter, the rule tables, and the
//     carrier oracle.
//
//   - engine: the orchestration loop, patch synthesis, the regression gate,
//     embedding-based retrieval stores, and golden-set evaluation.
//
//   - embedding: the hashing projection used to score trigger and trace
//     similarity.
//
//   - report and metrics: the post-run textual report with success-rate
//     deltas, failure clusters, and golden precision/recall.
//
//   - audit: SQLite archival of finished runs.
//
// Minimal use:
//
//	cfg := config.Default()
//	cfg.Runs = 500
//
//	result, err := engine.NewSimulation(cfg).Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Format(result, cfg.ShowPatches))
//
// The mendloop command wraps the same loop with flags for seeds, noise,
// golden-set overrides, and multi-seed sweeps.
package mendloop
