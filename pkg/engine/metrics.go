package engine

// WindowCap bounds the rolling success window: only the most recent
// outcomes count toward the rolling rate.
const WindowCap = 50

// Metrics accumulates run-lifetime counters. The orchestration loop is its
// only writer; the report reads it after the run.
type Metrics struct {
	Total      int
	OK         int
	BaselineOK int

	Failures map[string]int

	PatchesCreated     int
	PatchesActive      int
	PatchesQuarantined int

	RetrievedPatches int
	AppliedPatches   int

	window []int
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{Failures: make(map[string]int)}
}

// RecordOutcome updates the per-request counters and the rolling window.
func (m *Metrics) RecordOutcome(ok, baselineOK bool, retrieved, applied int) {
	m.Total++
	if ok {
		m.OK++
	}
	if baselineOK {
		m.BaselineOK++
	}
	m.RetrievedPatches += retrieved
	m.AppliedPatches += applied

	outcome := 0
	if ok {
		outcome = 1
	}
	m.window = append(m.window, outcome)
	if len(m.window) > WindowCap {
		m.window = m.window[1:]
	}
}

// RecordFailure counts one failure cluster occurrence.
func (m *Metrics) RecordFailure(cluster string) {
	m.Failures[cluster]++
}

// RollingRate returns the success rate over the current window, 0 when
// nothing has been recorded.
func (m *Metrics) RollingRate() float64 {
	if len(m.window) == 0 {
		return 0
	}
	sum := 0
	for _, v := range m.window {
		sum += v
	}
	return float64(sum) / float64(len(m.window))
}

// WindowLen returns how many outcomes the rolling window currently holds.
func (m *Metrics) WindowLen() int {
	return len(m.window)
}
