package model

// MessageType tags a dispatched judge request for routing on the result side.
type MessageType string

const (
	// MessageTypeJudge is a full judge run against the problem's testcases.
	MessageTypeJudge MessageType = "Judge"
	// MessageTypeRun is a test run against the problem's sample testcases.
	MessageTypeRun MessageType = "Run"
	// MessageTypeUserTestcase is a run against a user-supplied testcase.
	MessageTypeUserTestcase MessageType = "UserTestcase"
)

// Priority orders judge requests within the broker queue, higher first.
type Priority uint8

const (
	PriorityLow    Priority = 1
	PriorityMiddle Priority = 5
	PriorityHigh   Priority = 9
)

// JudgeRequest is the payload describing a submission to be executed
// against a problem's testcases. The pipeline treats it as opaque beyond
// the submission id.
type JudgeRequest struct {
	SubmissionID string `json:"submission_id"`
	ProblemID    int64  `json:"problem_id"`
	ContestID    string `json:"contest_id,omitempty"`
	UserID       string `json:"user_id"`
	LanguageID   string `json:"language_id"`
	SourceKey    string `json:"source_key"`
	CustomInput  string `json:"custom_input,omitempty"`
}
