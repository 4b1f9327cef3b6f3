package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeForStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Code
	}{
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusForbidden, CodeForbidden},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusBadRequest, CodeRejected},
		{http.StatusConflict, CodeRejected},
		{http.StatusInternalServerError, CodeTransport},
		{http.StatusBadGateway, CodeTransport},
	}
	for _, tc := range cases {
		if got := CodeForStatus(tc.status); got != tc.want {
			t.Fatalf("status %d: expected %s, got %s", tc.status, tc.want, got)
		}
	}
}

func TestUserMessageSurfacesDetailWhenAllowed(t *testing.T) {
	err := New(CodeRejected, "Coupon has expired.")
	if got := err.UserMessage(); got != "Coupon has expired." {
		t.Fatalf("expected server detail surfaced, got %q", got)
	}
}

func TestUserMessageHidesDetailForOpaqueCodes(t *testing.T) {
	err := New(CodeTransport, "dial tcp 10.0.0.1:443: i/o timeout")
	if got := err.UserMessage(); got != "something went wrong, please try again" {
		t.Fatalf("expected generic message, got %q", got)
	}

	err = New(CodeUnauthorized, "token signature mismatch")
	if got := err.UserMessage(); got != "please login to continue" {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(CodeStorage, cause, "read storage key")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeStorage {
		t.Fatalf("expected storage code, got %s", err.Code())
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	inner := New(CodeValidation, "quantity must be at least 1")
	wrapped := fmt.Errorf("add to cart: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error through wrapping")
	}
	if typed.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", typed.Code())
	}

	if As(fmt.Errorf("plain")) != nil {
		t.Fatalf("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeRejected, "rejected").WithDetails(map[string]any{"status": 400})
	details, ok := err.Details().(map[string]any)
	if !ok || details["status"] != 400 {
		t.Fatalf("unexpected details %+v", err.Details())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_NEW"))
	if meta.UserMessage != metadataByCode[CodeInternal].UserMessage {
		t.Fatalf("expected internal metadata fallback, got %+v", meta)
	}
}
