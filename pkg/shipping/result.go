// Package shipping implements the quoting skill and the carrier it is
// checked against. The skill interprets free-text shipping requests with a
// configurable rule table; the carrier evaluates the same requests with the
// complete table and acts as ground truth.
package shipping

// Failure codes produced by request evaluation. They are data carried in a
// Result, not Go errors: a request that cannot be quoted is a normal outcome.
const (
	CodeNoWeight         = "no_weight"
	CodeUnitUnknown      = "unit_unknown"
	CodeDestUnknown      = "dest_unknown"
	CodeItemUnknown      = "item_unknown"
	CodeParcelUnknown    = "parcel_unknown"
	CodeEmbargoDest      = "embargo_dest"
	CodeProhibitedItem   = "prohibited_item"
	CodeHazmatItem       = "hazmat_item"
	CodeLiquidDisallowed = "liquid_disallowed"
	CodeParcelOverweight = "parcel_overweight"
	CodeZoneUnknown      = "zone_unknown"
)

// LabelOK is the outcome label of a successfully quoted request.
const LabelOK = "ok"

// Quote is a priced shipping quote.
type Quote struct {
	WeightKg float64
	Zone     string
	Cost     float64
}

// ParseError describes why a request could not be quoted.
type ParseError struct {
	Code   string
	Detail string
}

// Result is the outcome of evaluating one request: either a quote or a
// parse/policy error.
type Result struct {
	Quote *Quote
	Error *ParseError
}

// OK reports whether the request produced a quote.
func (r Result) OK() bool {
	return r.Error == nil && r.Quote != nil
}

// Label collapses a result to its outcome label: "ok" or the failure code.
func (r Result) Label() string {
	if r.OK() {
		return LabelOK
	}
	if r.Error != nil {
		return r.Error.Code
	}
	return "unknown"
}

// Feedback is the carrier's verdict on a request.
type Feedback struct {
	OK        bool
	ErrorCode string
	Context   FeedbackContext
	Quote     *Quote
}

// FeedbackContext carries the artifacts the carrier extracted before
// rejecting a request. Empty strings and a nil MaxKg mean the carrier did
// not get far enough to extract that artifact.
type FeedbackContext struct {
	Item   string
	Dest   string
	Parcel string
	Unit   string
	MaxKg  *float64
}

// Label collapses feedback to its outcome label.
func (f Feedback) Label() string {
	if f.OK {
		return LabelOK
	}
	if f.ErrorCode == "" {
		return "unknown"
	}
	return f.ErrorCode
}
