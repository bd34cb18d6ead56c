package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	t.Parallel()

	err := New(PolicyViolation)
	if err.Code != PolicyViolation {
		t.Errorf("code: got %d", err.Code)
	}
	if err.Error() != "Forbidden API usage" {
		t.Errorf("message: got %q", err.Error())
	}
	if err.Stack == "" {
		t.Error("stack must be captured")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("dial tcp: connection refused")
	err := Wrapf(cause, DispatchFailed, "publish judge request failed")
	if !Is(err, DispatchFailed) {
		t.Errorf("code: got %d", GetCode(err))
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable through Unwrap")
	}
}

func TestGetCodeOnForeignError(t *testing.T) {
	t.Parallel()

	if got := GetCode(fmt.Errorf("plain")); got != InternalServerError {
		t.Errorf("foreign error code: got %d", got)
	}
	if got := GetCode(nil); got != Success {
		t.Errorf("nil error code: got %d", got)
	}
}

func TestValidationErrorDetails(t *testing.T) {
	t.Parallel()

	err := ValidationError("submission_id", "required")
	if !Is(err, ValidationFailed) {
		t.Errorf("code: got %d", err.Code)
	}
	if err.Details["field"] != "submission_id" || err.Details["reason"] != "required" {
		t.Errorf("details: got %v", err.Details)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code ErrorCode
		want int
	}{
		{Success, 200},
		{PolicyViolation, 422},
		{SourceTooLarge, 422},
		{InvalidParams, 400},
		{ValidationFailed, 400},
		{NotFound, 404},
		{BrokerUnavailable, 503},
		{DispatchFailed, 500},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("code %d: got status %d, want %d", tc.code, got, tc.want)
		}
	}
}
