package txn

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some random error"), false},
		{"command error code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, true},
		{"command error code 51", mongo.CommandError{Code: 51, Message: "Illegal operation"}, true},
		{"command error code 263", mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}, true},
		{"other command error code", mongo.CommandError{Code: 100, Message: "Some other error"}, false},
		{"replica set keyword pair", errors.New("transaction failed because this is not a replica set member"), true},
		{"session not supported keyword pair", errors.New("session operations are not supported on this server"), true},
		{"single keyword only", errors.New("transaction failed"), false},
		{"transaction and session keywords", errors.New("cannot start transaction in current session state"), true},
		{"illegal operation during transaction", errors.New("illegal operation during transaction"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNotSupported_CaseInsensitive(t *testing.T) {
	err := errors.New("TRANSACTION FAILED on REPLICA SET")
	if !IsNotSupported(err) {
		t.Errorf("IsNotSupported(%v) = false, want true", err)
	}
}

func TestIsNotSupported_WrappedCommandErrorMessage(t *testing.T) {
	// Wrapping loses the concrete type; detection falls back to keywords.
	wrapped := fmt.Errorf("recompute: %w", errors.New("Transaction numbers are only allowed on a replica set member"))
	if !IsNotSupported(wrapped) {
		t.Errorf("IsNotSupported(%v) = false, want true", wrapped)
	}
}
