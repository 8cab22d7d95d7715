package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/surrealdb/surrealdb.go"
)

func TestWrapQueryError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "nil error",
			err:      nil,
			sentinel: nil,
		},
		{
			name:     "unique index violation",
			err:      &surrealdb.QueryError{Message: `Database index 'thread_ref_owner' already contains 'thread_ref:abc'`},
			sentinel: ErrAlreadyExists,
		},
		{
			name:     "record already exists",
			err:      &surrealdb.QueryError{Message: `The record 'thread_ref:abc' already exists`},
			sentinel: ErrAlreadyExists,
		},
		{
			name:     "transaction conflict",
			err:      &surrealdb.QueryError{Message: `Transaction conflict: retry the statement`},
			sentinel: ErrTransactionConflict,
		},
		{
			name:     "wrapped query error",
			err:      fmt.Errorf("create: %w", &surrealdb.QueryError{Message: `already exists`}),
			sentinel: ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapQueryError(tt.err)
			if tt.sentinel == nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.sentinel)
		})
	}
}

func TestWrapQueryErrorPassesThroughUnknown(t *testing.T) {
	err := errors.New("connection reset by peer")
	got := wrapQueryError(err)
	assert.Equal(t, err, got)
	assert.NotErrorIs(t, got, ErrAlreadyExists)
	assert.NotErrorIs(t, got, ErrTransactionConflict)
}
