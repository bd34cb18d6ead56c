package model

// TestcaseStatus is the outcome of executing one testcase.
type TestcaseStatus string

const (
	StatusAccepted            TestcaseStatus = "Accepted"
	StatusWrongAnswer         TestcaseStatus = "Wrong Answer"
	StatusTimeLimitExceeded   TestcaseStatus = "Time Limit Exceeded"
	StatusMemoryLimitExceeded TestcaseStatus = "Memory Limit Exceeded"
	StatusRuntimeError        TestcaseStatus = "Runtime Error"
	StatusCompileError        TestcaseStatus = "Compile Error"
	StatusSegmentationFault   TestcaseStatus = "Segmentation Fault"
	StatusSystemError         TestcaseStatus = "System Error"
)

// TestcaseResult is one execution outcome produced by the execution engine.
// Results for a submission arrive independently and out of order; the
// sequence is append-only and never mutated.
type TestcaseResult struct {
	SubmissionID string         `json:"submission_id"`
	TestcaseID   int64          `json:"testcase_id"`
	Status       TestcaseStatus `json:"status"`
	CPUTimeNS    int64          `json:"cpu_time_ns"`
	MemoryBytes  int64          `json:"memory_bytes"`
}

// ResultMessage is the decoded payload of one inbound judge-result message.
// Final marks the last message for a submission and carries the aggregate
// verdict.
type ResultMessage struct {
	TestcaseResult
	Final   bool           `json:"final,omitempty"`
	Verdict TestcaseStatus `json:"verdict,omitempty"`
}

// SubmissionStatus is the terminal aggregate for one submission, published
// on the status event feed once judging finishes.
type SubmissionStatus struct {
	SubmissionID string         `json:"submission_id"`
	Verdict      TestcaseStatus `json:"verdict"`
	FinishedAt   int64          `json:"finished_at"`
}
