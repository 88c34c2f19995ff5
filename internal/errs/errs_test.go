package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/baharkarakas/librarium/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("update book: %w", Forbidden("not the author"))
	assert.True(t, IsForbidden(err))
	assert.False(t, IsNotFound(err))

	var ae *AppErr
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusForbidden, ae.StatusCode)
	assert.Equal(t, "not the author", ae.Message())
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("book")
	assert.Equal(t, "not found: book not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestFieldErrors(t *testing.T) {
	err := Invalid(validate.Errs{{Field: "title", Msg: "required"}})
	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "title", fields[0].Field)

	_, ok = FieldErrors(Conflict("library already has a librarian", nil))
	assert.False(t, ok)
	assert.True(t, IsValidation(InvalidField("author", "required")))
}

func TestConflictKeepsCause(t *testing.T) {
	storeErr := errors.New("unique constraint violated")
	err := fmt.Errorf("assign librarian: %w", Conflict("library already has a librarian", storeErr))

	assert.True(t, IsConflict(err))
	assert.True(t, errors.Is(err, storeErr))
	assert.False(t, errors.Is(Conflict("duplicate", nil), storeErr))

	var ae *AppErr
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusConflict, ae.StatusCode)
}
