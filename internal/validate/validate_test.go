package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrsCollectsEveryField(t *testing.T) {
	var errs Errs
	var year *int
	errs.Add(
		Required("title", "  "),
		Present("publication_year", year),
		Required("author", ""),
		Required("name", "ok"),
	)

	require.Len(t, errs, 3)
	assert.Equal(t, map[string][]string{
		"title":            {MsgRequired},
		"publication_year": {MsgRequired},
		"author":           {MsgRequired},
	}, errs.ByField())
	assert.Equal(t, "title: required; publication_year: required; author: required", errs.Error())
}

func TestErrReturnsNilWhenEmpty(t *testing.T) {
	var errs Errs
	assert.NoError(t, errs.Err())

	errs.Addf("tags", "Tag '%s' is too long", "x")
	err := errs.Err()
	require.Error(t, err)

	var target Errs
	require.True(t, errors.As(err, &target))
	assert.True(t, target.Has("tags"))
	assert.False(t, target.Has("title"))
}

func TestLengthHelpersCountRunes(t *testing.T) {
	assert.Nil(t, MinLen("title", "héllo", 5, ""))
	assert.NotNil(t, MinLen("title", "héll", 5, ""))
	assert.Nil(t, MaxLen("content", "ééé", 3, ""))

	fe := MaxLen("content", "abcd", 3, "too long")
	require.NotNil(t, fe)
	assert.Equal(t, "too long", fe.Msg)
}

func TestIntHelpers(t *testing.T) {
	assert.NotNil(t, MinInt("page", 0, 1))
	assert.Nil(t, MinInt("page", 1, 1))
	fe := MaxInt("publication_year", 3000, 2026, "in the future")
	require.NotNil(t, fe)
	assert.Equal(t, "in the future", fe.Msg)
}

func TestEmail(t *testing.T) {
	assert.Nil(t, Email("email", "reader@example.com"))
	assert.NotNil(t, Email("email", "reader"))
	assert.NotNil(t, Email("email", "Reader <reader@example.com>"))
}
