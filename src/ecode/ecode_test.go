package ecode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestStatus checks the HTTP status of every kind.
func TestStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{InvalidCredential, http.StatusBadRequest},
		{SelfFollow, http.StatusBadRequest},
		{Conflict, http.StatusConflict},
		{Unauthorized, http.StatusUnauthorized},
		{Expired, http.StatusUnauthorized},
		{InvalidToken, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.kind.Status(); got != tt.want {
			t.Errorf("%s.Status() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

// TestAuthKindsAreDistinct makes sure clients can tell the auth failures apart.
func TestAuthKindsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range []Kind{Unauthorized, Expired, InvalidToken} {
		if seen[k.String()] {
			t.Errorf("duplicate code %q", k.String())
		}
		seen[k.String()] = true
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := NotFoundError("Post not found")
	wrapped := fmt.Errorf("loading post: %w", base)

	if got := KindOf(wrapped); got != NotFound {
		t.Errorf("KindOf() = %v, want %v", got, NotFound)
	}
	if got := Message(wrapped); got != "Post not found" {
		t.Errorf("Message() = %q, want %q", got, "Post not found")
	}
	if !errors.Is(wrapped, NotFoundError("Post not found")) {
		t.Error("errors.Is() = false, want true")
	}
	if errors.Is(wrapped, NotFoundError("User not found")) {
		t.Error("errors.Is() matched a different message")
	}
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("connection reset")

	if got := KindOf(err); got != Internal {
		t.Errorf("KindOf() = %v, want %v", got, Internal)
	}
	if got := Message(err); got == err.Error() {
		t.Errorf("Message() leaked %q", got)
	}
}
