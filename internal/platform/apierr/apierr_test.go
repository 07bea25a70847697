package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromKeepsTypedErrors(t *testing.T) {
	base := Conflict(errors.New("already uploaded"))
	wrapped := fmt.Errorf("upload: %w", base)
	got := From(wrapped)
	if got.Status != http.StatusConflict || got.Code != CodeDuplicateUpload {
		t.Fatalf("From: got status=%d code=%s", got.Status, got.Code)
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	got := From(cause)
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("status: got %d", got.Status)
	}
	if got.Error() != "internal error" {
		t.Fatalf("message leaked: %q", got.Error())
	}
	if !errors.Is(got, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
}
