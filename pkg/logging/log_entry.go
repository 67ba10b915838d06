package logging

// LogEntry represents a structured log record for simulation events.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// RunID correlates entries belonging to one simulation run.
	RunID string

	// General structured data
	Fields map[string]interface{}
}
