package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("missing")))
	assert.True(t, IsConflict(NewConflict("taken")))
	assert.True(t, IsReferenced(NewReferenced("in use")))
	assert.True(t, IsValidation(NewValidation("bad input")))
	assert.True(t, IsStore(NewStore("query failed", errors.New("boom"))))

	assert.False(t, IsNotFound(NewConflict("taken")))
	assert.False(t, IsConflict(errors.New("plain error")))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("while deleting: %w", NewReferenced("in use"))
	assert.True(t, IsReferenced(wrapped))
	assert.Equal(t, http.StatusConflict, HTTPStatus(wrapped))
}

func TestFromStore(t *testing.T) {
	t.Run("duplicated key becomes a conflict", func(t *testing.T) {
		err := FromStore("insert failed", gorm.ErrDuplicatedKey)
		assert.True(t, IsConflict(err))
	})

	t.Run("other store errors stay store errors", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := FromStore("insert failed", cause)
		assert.True(t, IsStore(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NewNotFound("missing")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(NewConflict("taken")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(NewReferenced("in use")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewValidation("bad input")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(NewStore("query failed", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain error")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "not_found: services not found (unknown service ids: [4])",
		NewNotFound("services not found", "unknown service ids: [4]").Error())
	assert.Equal(t, "conflict: name taken", NewConflict("name taken").Error())
}
