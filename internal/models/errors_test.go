package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		matches func(error) bool
		status  int
	}{
		{"validation", NewValidationError("bad input"), IsValidation, fiber.StatusBadRequest},
		{"permission", NewPermissionError("nope"), IsPermission, fiber.StatusForbidden},
		{"not found", NewNotFoundError("post", "p1"), IsNotFound, fiber.StatusNotFound},
		{"transient", NewTransientError(errors.New("conn reset")), IsTransient, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.matches(tt.err))
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}

func TestErrorPredicates_DoNotCrossMatch(t *testing.T) {
	err := NewValidationError("bad input")
	assert.False(t, IsPermission(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsTransient(err))

	assert.False(t, IsValidation(errors.New("plain error")))
	assert.Equal(t, fiber.StatusInternalServerError, StatusOf(errors.New("plain error")))
}

func TestErrorPredicates_MatchWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("toggling like: %w", NewNotFoundError("post", "p1"))
	assert.True(t, IsNotFound(wrapped))
}

func TestTransientError_PreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := NewTransientError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "i/o timeout")
}

func TestQuestionStatusOf(t *testing.T) {
	now := time.Now()

	assert.Equal(t, QuestionPending, QuestionStatusOf(&Post{IsQuestion: true}))
	assert.Equal(t, QuestionRejected, QuestionStatusOf(&Post{IsQuestion: true, IsFlagged: true}))
	assert.Equal(t, QuestionAnswered, QuestionStatusOf(&Post{IsQuestion: true, ResolvedAt: &now}))

	// Re-flagging clears resolution, so both fields set at once should not
	// happen; resolution wins if it does.
	assert.Equal(t, QuestionAnswered, QuestionStatusOf(&Post{IsQuestion: true, IsFlagged: true, ResolvedAt: &now}))
}
