package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewFormatsMessage(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != "test message: value" {
		t.Errorf("Message = %q", err.Message)
	}
	if got, want := err.Error(), "INVALID_INPUT: test message: value"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapKeepsCauseReachable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetching manifest")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want the cause", errors.Unwrap(err))
	}
	want := "NETWORK_ERROR: fetching manifest: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeInvalidLayout, "x"), ErrCodeInvalidLayout, true},
		{"different code", New(ErrCodeInvalidLayout, "x"), ErrCodeNetwork, false},
		{"outer code of a wrapped chain", Wrap(ErrCodeNetwork, New(ErrCodeInvalidLayout, "inner"), "outer"), ErrCodeNetwork, true},
		{"code buried under fmt.Errorf", fmt.Errorf("context: %w", New(ErrCodeNotFound, "gone")), ErrCodeNotFound, true},
		{"rate limited via Code method", &RateLimitedError{RetryAfter: 5}, ErrCodeRateLimited, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidLayout, false},
		{"nil", nil, ErrCodeInvalidLayout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsBounds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"source bounds", New(ErrCodeSourceBounds, "src past end"), true},
		{"dest bounds", New(ErrCodeDestBounds, "dst past end"), true},
		{"wrapped dest bounds", fmt.Errorf("assemble: %w", New(ErrCodeDestBounds, "dst past end")), true},
		{"other code", New(ErrCodeInvalidLayout, "negative"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBounds(tt.err); got != tt.want {
				t.Errorf("IsBounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded error", New(ErrCodeInvalidGUID, "x"), ErrCodeInvalidGUID},
		{"wrapped coded error", fmt.Errorf("outer: %w", New(ErrCodeInvalidGUID, "x")), ErrCodeInvalidGUID},
		{"rate limited", &RateLimitedError{}, ErrCodeRateLimited},
		{"wrapped rate limited", fmt.Errorf("outer: %w", &RateLimitedError{RetryAfter: 2}), ErrCodeRateLimited},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	coded := New(ErrCodeInvalidInput, "friendly message")
	if got := UserMessage(coded); got != "friendly message" {
		t.Errorf("UserMessage() = %q, want the bare message", got)
	}

	wrapped := Wrap(ErrCodeNetwork, errors.New("tcp reset"), "fetching tiles")
	if got := UserMessage(wrapped); got != "fetching tiles" {
		t.Errorf("UserMessage() = %q, want the message without the cause", got)
	}

	plain := errors.New("plain error")
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage() = %q, want the error text", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	withHint := &RateLimitedError{RetryAfter: 60}
	if got, want := withHint.Error(), "rate limited: retry after 60 seconds"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noHint := &RateLimitedError{}
	if got, want := noHint.Error(), "rate limited"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
