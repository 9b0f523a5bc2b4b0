package errs

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, EINVALID, ErrorCode(Errorf(EINVALID, "bad input")))
	assert.Equal(t, EINTERNAL, ErrorCode(errors.New("driver broke")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, "bad input", ErrorMessage(Errorf(EINVALID, "bad input")))

	// Details of non-application errors stay out of responses.
	assert.Equal(t, "Internal error.", ErrorMessage(errors.New("driver broke")))
}

func TestReturnError(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	w := httptest.NewRecorder()
	ReturnError(w, r, Errorf(ENOTFOUND, "The post does not exist."))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "The post does not exist."}`, w.Body.String())

	w = httptest.NewRecorder()
	ReturnError(w, r, errors.New("driver broke"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Internal error."}`, w.Body.String())
}
