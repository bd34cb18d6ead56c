package contextkey

// Key is the type used for context values shared across services.
type Key string

const (
	// TraceID identifies one logical request across service boundaries.
	TraceID Key = "trace_id"

	// RequestID identifies one HTTP request.
	RequestID Key = "request_id"

	// SubmissionID identifies the submission a pipeline operation belongs to.
	SubmissionID Key = "submission_id"
)
