package engine

import "github.com/XiaoConstantine/mendloop/pkg/shipping"

// Trace records one processed request. Traces are immutable once appended;
// they exist for observability and post-run reporting, never for control
// flow.
type Trace struct {
	ID       string
	Request  string
	Result   shipping.Result
	Feedback shipping.Feedback

	// OK / BaselineOK compare the patched and baseline predicted labels
	// against the carrier's label.
	OK         bool
	BaselineOK bool

	RetrievedPatchIDs []string
	AppliedPatchIDs   []string

	// FailureCluster is set when the patched evaluation missed: the
	// carrier's label if the carrier rejected, otherwise the skill's own
	// error code.
	FailureCluster string
}
