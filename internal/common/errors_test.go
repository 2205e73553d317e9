package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesWrappedCode(t *testing.T) {
	base := NewError(CodeNotFound, "job not found", nil)
	wrapped := fmt.Errorf("load dashboard: %w", base)
	if !Is(wrapped, CodeNotFound) {
		t.Fatal("expected wrapped error to match not_found")
	}
	if Is(wrapped, CodeForbidden) {
		t.Fatal("expected wrapped error not to match forbidden")
	}
}

func TestCodeOfPlainErrorIsInternal(t *testing.T) {
	if code := CodeOf(errors.New("boom")); code != CodeInternal {
		t.Fatalf("expected internal, got %s", code)
	}
	if code := CodeOf(NewValidationError("bad", map[string]string{"period": "unknown"})); code != CodeValidation {
		t.Fatalf("expected validation, got %s", code)
	}
}

func TestParseUUIDNormalizes(t *testing.T) {
	id, err := ParseUUID("  6F9619FF-8B86-D011-B42D-00C04FC964FF ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if id.String() != "6f9619ff-8b86-d011-b42d-00c04fc964ff" {
		t.Fatalf("unexpected uuid %s", id)
	}
	if _, err := ParseUUID("not-a-uuid"); err == nil {
		t.Fatal("expected error for invalid uuid")
	}
}
