package broadcast

import (
	"encoding/json"
	"fmt"
	"strconv"

	"vexoj/internal/pipeline/model"
)

// wireTestcaseResult is the transport form of a testcase result. The 64-bit
// fields travel as decimal strings: JSON numbers lose precision past 2^53
// in JavaScript consumers, so the conversion is explicit on both ends.
type wireTestcaseResult struct {
	SubmissionID string `json:"submission_id"`
	TestcaseID   string `json:"testcase_id"`
	Status       string `json:"status"`
	CPUTimeNS    string `json:"cpu_time_ns"`
	MemoryBytes  string `json:"memory_bytes"`
}

// EncodeTestcaseResult serializes a result for the broadcast topic.
func EncodeTestcaseResult(result model.TestcaseResult) ([]byte, error) {
	wire := wireTestcaseResult{
		SubmissionID: result.SubmissionID,
		TestcaseID:   strconv.FormatInt(result.TestcaseID, 10),
		Status:       string(result.Status),
		CPUTimeNS:    strconv.FormatInt(result.CPUTimeNS, 10),
		MemoryBytes:  strconv.FormatInt(result.MemoryBytes, 10),
	}
	return json.Marshal(wire)
}

// DecodeTestcaseResult parses a broadcast payload back into a result.
func DecodeTestcaseResult(data []byte) (model.TestcaseResult, error) {
	var wire wireTestcaseResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return model.TestcaseResult{}, fmt.Errorf("unmarshal testcase result failed: %w", err)
	}

	testcaseID, err := strconv.ParseInt(wire.TestcaseID, 10, 64)
	if err != nil {
		return model.TestcaseResult{}, fmt.Errorf("parse testcase id failed: %w", err)
	}
	cpuTime, err := strconv.ParseInt(wire.CPUTimeNS, 10, 64)
	if err != nil {
		return model.TestcaseResult{}, fmt.Errorf("parse cpu time failed: %w", err)
	}
	memory, err := strconv.ParseInt(wire.MemoryBytes, 10, 64)
	if err != nil {
		return model.TestcaseResult{}, fmt.Errorf("parse memory failed: %w", err)
	}

	return model.TestcaseResult{
		SubmissionID: wire.SubmissionID,
		TestcaseID:   testcaseID,
		Status:       model.TestcaseStatus(wire.Status),
		CPUTimeNS:    cpuTime,
		MemoryBytes:  memory,
	}, nil
}
