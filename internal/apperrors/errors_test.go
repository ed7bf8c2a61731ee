package apperrors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusClassification(t *testing.T) {
	assert.Equal(t, "fail", BadRequest("nope").Status())
	assert.Equal(t, "fail", Unauthorized("nope").Status())
	assert.Equal(t, "fail", Forbidden("nope").Status())
	assert.Equal(t, "fail", NotFound("nope").Status())
	assert.Equal(t, "error", Internal("boom").Status())
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, NotFound("There is no user with that email address"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"fail","message":"There is no user with that email address"}`, rec.Body.String())
}
