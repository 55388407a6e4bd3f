package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"invalid argument", InvalidArgumentf("name is required"), http.StatusBadRequest},
		{"not found", NotFoundf("group %s", "abc"), http.StatusNotFound},
		{"permission denied", PermissionDeniedf("admin role required"), http.StatusForbidden},
		{"internal", Internalf("store failure: %v", errors.New("boom")), http.StatusInternalServerError},
		{"unclassified", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped twice", fmt.Errorf("join: %w", NotFoundf("no such code")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrappersMatchSentinels(t *testing.T) {
	if !errors.Is(InvalidArgumentf("x"), ErrInvalidArgument) {
		t.Error("InvalidArgumentf does not match ErrInvalidArgument")
	}
	if !errors.Is(NotFoundf("x"), ErrNotFound) {
		t.Error("NotFoundf does not match ErrNotFound")
	}
	if !errors.Is(PermissionDeniedf("x"), ErrPermissionDenied) {
		t.Error("PermissionDeniedf does not match ErrPermissionDenied")
	}
	if !errors.Is(Internalf("x"), ErrInternal) {
		t.Error("Internalf does not match ErrInternal")
	}
}

func TestInternalfDoesNotLeakWrappedCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Internalf("insert failed: %v", cause)
	if errors.Is(err, cause) {
		t.Error("Internalf should not wrap the cause for errors.Is matching")
	}
}
