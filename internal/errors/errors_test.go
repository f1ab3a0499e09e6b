package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsInnerCode(t *testing.T) {
	inner := IngestionFailed("ragged row 4", stderrors.New("wrong number of fields"))
	err := Wrap(inner, "loading policies.txt")

	assert.Equal(t, CodeIngestionFailed, GetCode(err))
	assert.Equal(t, "loading policies.txt: ragged row 4: wrong number of fields", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestWrap_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternalError, GetCode(Wrap(stderrors.New("boom"), "ctx")))
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.Nil(t, Wrapf(nil, "ctx %d", 1))
}

func TestWithCode(t *testing.T) {
	base := stderrors.New("bad yaml")
	err := WithCode(CodeInvalidInput, base)
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.ErrorIs(t, err, base)

	relabeled := WithCode(CodeValidationError, err)
	assert.Equal(t, CodeValidationError, GetCode(relabeled))
	assert.ErrorIs(t, relabeled, base)
}

func TestGetCode_Unknown(t *testing.T) {
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("x")))
	assert.False(t, IsAppError(stderrors.New("x")))
	assert.True(t, IsAppError(NotFound("run")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("run")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(CodeInvalidInput, "x")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(DatabaseError("down", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("x")))
}
