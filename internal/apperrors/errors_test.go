package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not found", err: NewNotFound("table not found"), want: NotFound},
		{name: "wrapped invalid input", err: fmt.Errorf("open order: %w", NewInvalidInput("items required")), want: InvalidInput},
		{name: "plain error", err: errors.New("boom"), want: Internal},
		{name: "wrapped cause", err: Wrap(errors.New("db down"), "failed to load table"), want: Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOfHidesCause(t *testing.T) {
	err := Wrap(errors.New("pq: connection refused"), "failed to open order")

	assert.Equal(t, "failed to open order", MessageOf(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "internal server error", MessageOf(errors.New("raw")))
}

func TestIs(t *testing.T) {
	err := NewPreconditionFailed("table %d is active", 2)

	assert.True(t, Is(err, PreconditionFailed))
	assert.False(t, Is(err, Conflict))
	assert.False(t, Is(nil, PreconditionFailed))
	assert.Equal(t, "table 2 is active", err.Error())
}
