package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := WrapError(ErrNoData, fmt.Errorf("AAPL: feed empty"))

	if !errors.Is(wrapped, ErrNoData) {
		t.Error("wrapped error should match its base by code")
	}
	if errors.Is(wrapped, ErrSymbolNotFound) {
		t.Error("wrapped error must not match a different code")
	}
}

func TestError_UnwrapReachesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := WrapError(ErrExternalDataUnavailable, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

func TestError_Message(t *testing.T) {
	plain := ErrConfigInvalid.Error()
	if plain != "[CONFIG_INVALID] configuration invalid" {
		t.Errorf("unexpected message: %q", plain)
	}

	wrapped := WrapError(ErrConfigInvalid, fmt.Errorf("weights sum to 1.05"))
	want := "[CONFIG_INVALID] configuration invalid: weights sum to 1.05"
	if wrapped.Error() != want {
		t.Errorf("wrapped message = %q, want %q", wrapped.Error(), want)
	}
}
