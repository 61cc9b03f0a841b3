package errors

import "testing"

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrorTypeRateLimit) {
		t.Error("rate_limit should be retryable")
	}

	fatal := []ErrorType{
		ErrorTypeValidation,
		ErrorTypeAuth,
		ErrorTypeUpstream,
		ErrorTypeStorage,
		ErrorTypeThrottleBudget,
	}
	for _, errorType := range fatal {
		if IsRetryable(errorType) {
			t.Errorf("%s should not be retryable", errorType)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	err := NewWithCode(ErrorTypeUpstream, 502, "bad gateway")
	got := err.Error()
	want := "upstream error (code 502): bad gateway"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	plain := New(ErrorTypeStorage, "write failed")
	if plain.Code != 0 {
		t.Errorf("expected zero code, got %d", plain.Code)
	}
}

func TestValidationError(t *testing.T) {
	err := ValidationError("per_page", "must be between 1 and 200")
	if err.Type != ErrorTypeValidation {
		t.Errorf("unexpected type %s", err.Type)
	}
	if err.Message != "per_page: must be between 1 and 200" {
		t.Errorf("unexpected message %q", err.Message)
	}
}
