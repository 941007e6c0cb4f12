package ipierr

import (
	"errors"
	"testing"
)

func TestCode_String(t *testing.T) {
	tests := []struct {
		name string
		code Code
		want string
	}{
		{"Success", Success, "Success"},
		{"CorruptData", CorruptData, "CorruptData"},
		{"InsufficientHandles", InsufficientHandles, "InsufficientHandles"},
		{"unknown", Code(9999), "Code(9999)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_CapturesLocation(t *testing.T) {
	err := New(InvalidInput, "bad thing")
	if err.Code != InvalidInput {
		t.Fatalf("Code = %v, want InvalidInput", err.Code)
	}
	if err.Line == 0 || err.File == "" {
		t.Fatalf("expected caller location to be captured, got file=%q line=%d", err.File, err.Line)
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(CollectionFileReadFail, "reading collection", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the wrapped cause")
	}
	if CodeOf(err) != CollectionFileReadFail {
		t.Fatalf("CodeOf = %v, want CollectionFileReadFail", CodeOf(err))
	}
}

func TestWrap_NilCause(t *testing.T) {
	err := Wrap(CorruptData, "no cause here", nil)
	if err.Err != nil {
		t.Fatalf("expected nil Err field")
	}
}

func TestError_IsMatchesOnCodeOnly(t *testing.T) {
	a := New(InsufficientHandles, "first")
	b := New(InsufficientHandles, "second, different message")
	if !errors.Is(a, b) {
		t.Fatalf("expected errors.Is to treat same-code errors as matching")
	}
	c := New(CorruptData, "different code")
	if errors.Is(a, c) {
		t.Fatalf("expected errors.Is to reject different-code errors")
	}
}

func TestCodeOf_PlainError(t *testing.T) {
	if CodeOf(errors.New("plain")) != Success {
		t.Fatalf("expected CodeOf of a plain error to fall back to Success")
	}
}
