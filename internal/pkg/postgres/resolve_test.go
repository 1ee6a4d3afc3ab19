package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveID_RejectsUnlistedIdentifiers(t *testing.T) {
	// The allowlist check fires before any SQL is built, so a nil querier
	// proves no query was attempted.
	tests := []struct {
		table  string
		column string
	}{
		{"users", "password_hash"},
		{"orders", "reference"},
		{"token_revocation", "token_hash"},
		{"users; DROP TABLE users", "email"},
		{"", ""},
	}

	for _, tt := range tests {
		_, err := ResolveID(context.Background(), nil, tt.table, tt.column, "x")
		assert.Error(t, err, "%s.%s must not be resolvable", tt.table, tt.column)
		assert.NotErrorIs(t, err, ErrNotFound)
	}
}
