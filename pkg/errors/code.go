package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 20000-20999: Policy validation errors
// 21000-21999: Dispatch & routing errors
// 22000-22999: Broadcast errors
// 23000-23999: Reminder scheduling errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	ServiceUnavailable  ErrorCode = 10004
	Timeout             ErrorCode = 10005

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Policy Validation Errors (20000-20999) ==========

	PolicyViolation      ErrorCode = 20000
	SourceTooLarge       ErrorCode = 20001
	LanguageNotSupported ErrorCode = 20002

	// ========== Dispatch & Routing Errors (21000-21999) ==========

	DispatchFailed      ErrorCode = 21000
	BrokerUnavailable   ErrorCode = 21001
	HandlerFailed       ErrorCode = 21100
	MessageDecodeFailed ErrorCode = 21101

	// ========== Broadcast Errors (22000-22999) ==========

	BroadcastPublishFailed ErrorCode = 22000
	SubscribeFailed        ErrorCode = 22001

	// ========== Reminder Scheduling Errors (23000-23999) ==========

	SchedulingFailed ErrorCode = 23000
	CancelFailed     ErrorCode = 23001
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Validation
	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "Required field is empty",

	// Policy
	PolicyViolation:      "Forbidden API usage",
	SourceTooLarge:       "Source code is too large",
	LanguageNotSupported: "Programming language not supported",

	// Dispatch & routing
	DispatchFailed:      "Failed to dispatch judge request",
	BrokerUnavailable:   "Message broker unavailable",
	HandlerFailed:       "Result handler failed",
	MessageDecodeFailed: "Failed to decode result message",

	// Broadcast
	BroadcastPublishFailed: "Failed to publish testcase result",
	SubscribeFailed:        "Failed to subscribe to submission results",

	// Reminder
	SchedulingFailed: "Failed to schedule contest reminder",
	CancelFailed:     "Failed to cancel contest reminder",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound:
		return 404
	case c == PolicyViolation, c == SourceTooLarge:
		return 422
	case c == InvalidParams, c == LanguageNotSupported:
		return 400
	case c >= 10300 && c < 10400:
		return 400
	case c == ServiceUnavailable, c == BrokerUnavailable:
		return 503
	default:
		return 500
	}
}
