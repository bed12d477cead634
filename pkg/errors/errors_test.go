package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeFatalParse, "unexpected root element %q", "Blueprint")
	if err.Code != ErrCodeFatalParse {
		t.Errorf("code = %s", err.Code)
	}
	want := `FATAL_PARSE: unexpected root element "Blueprint"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(ErrCodeFatalParse, cause, "parse document")

	if !strings.Contains(err.Error(), "unexpected EOF") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should satisfy errors.Is")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInvalidMode, "invalid mode")
	if !Is(err, ErrCodeInvalidMode) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrCodeFatalParse) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeFatalParse) {
		t.Error("Is should reject plain errors")
	}
	if Is(nil, ErrCodeFatalParse) {
		t.Error("Is should reject nil")
	}

	// Codes survive another layer of wrapping.
	outer := fmt.Errorf("context: %w", err)
	if !Is(outer, ErrCodeInvalidMode) {
		t.Error("Is should unwrap to find the code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInternal, "boom")); got != ErrCodeInternal {
		t.Errorf("GetCode = %s", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeFatalParse, "unexpected root element %q", "Blueprint")
	if got := UserMessage(err); got != `unexpected root element "Blueprint"` {
		t.Errorf("UserMessage = %q, want code prefix stripped", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}
