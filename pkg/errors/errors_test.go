package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidLayout, "object %d: bad direction", 7)

	if err.Code != ErrCodeInvalidLayout {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidLayout)
	}

	expected := "INVALID_LAYOUT: object 7: bad direction"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidCatalog, cause, "decode catalog")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := err.Error(); got != "INVALID_CATALOG: decode catalog: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() Code    { return ErrCodeCycle }

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeNotFound, "x"), ErrCodeNotFound, true},
		{"non-matching code", New(ErrCodeNotFound, "x"), ErrCodeCycle, false},
		{"inner code", Wrap(ErrCodeInvalidLayout, New(ErrCodeDuplicateObject, "inner"), "outer"), ErrCodeDuplicateObject, true},
		{"fmt wrapped", fmt.Errorf("load: %w", New(ErrCodeInvalidFormat, "x")), ErrCodeInvalidFormat, true},
		{"joined", errors.Join(errors.New("plain"), codedErr{}), ErrCodeCycle, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(fmt.Errorf("x: %w", New(ErrCodeOccupied, "y"))); got != ErrCodeOccupied {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeOccupied)
	}
	if got := GetCode(codedErr{}); got != ErrCodeCycle {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeCycle)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotFound, "object 3 not found")); got != "object 3 not found" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		ErrCodeInvalidLayout:    http.StatusBadRequest,
		ErrCodeUnknownPrototype: http.StatusBadRequest,
		ErrCodeNotFound:         http.StatusNotFound,
		ErrCodeCycle:            http.StatusUnprocessableEntity,
		ErrCodeInternal:         http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := HTTPStatus(New(code, "x")); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}
