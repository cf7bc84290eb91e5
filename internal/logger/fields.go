package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through a call chain.
const (
	FieldService   = "service"
	FieldRequestID = "request_id"
	FieldComponent = "component"
	// FieldCommand is the pipeline subcommand being run.
	FieldCommand = "command"
	// FieldStage is the pipeline stage within a command.
	FieldStage = "stage"
	FieldPath  = "path"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
	// FieldScore is a model output or evaluation score.
	FieldScore = "score"
)
