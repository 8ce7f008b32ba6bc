package metrics

import (
	"errors"
	"testing"
)

func TestClassifyDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "none"},
		{"unique violation", errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`), "duplicate"},
		{"no rows", errors.New("sql: no rows in result set"), "not_found"},
		{"deadline", errors.New("context deadline exceeded"), "timeout"},
		{"refused", errors.New("dial tcp: connection refused"), "connection"},
		{"foreign key", errors.New("violates foreign key constraint"), "foreign_key"},
		{"check constraint", errors.New("violates check constraint"), "constraint"},
		{"other", errors.New("something odd"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDBError(tt.err); got != tt.expected {
				t.Errorf("classifyDBError(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}
