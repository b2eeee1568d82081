package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewCapacityExceededError("room is full"))

	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, CodeCapacityExceeded, CodeOf(err))
}

func TestDomainError_WithReasonReturnsCopy(t *testing.T) {
	base := NewValidationError("bad dates")
	withReason := base.WithReason("invalid_date_range")

	assert.Empty(t, base.Reason)
	assert.Equal(t, "invalid_date_range", withReason.Reason)
	assert.Contains(t, withReason.Error(), "invalid_date_range")
}

func TestCodeOf_NonDomainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("boom")))
}

func TestNewPaginatedResult(t *testing.T) {
	res := NewPaginatedResult([]int{1, 2}, 5, 1, 2)
	assert.Equal(t, 3, res.TotalPages)

	empty := NewPaginatedResult[int](nil, 0, 1, 20)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
