package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]int{"n": 1}, "ok")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":200,"success":true,"message":"ok","data":{"n":1}}`, rec.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "missing", "nope")

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "nope", resp.Errors)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Text string `json:"text"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"fear"}`))
	require.NoError(t, DecodeJSON(req, &v))
	assert.Equal(t, "fear", v.Text)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"txt":"fear"}`))
	assert.Error(t, DecodeJSON(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"a"}{"text":"b"}`))
	assert.Error(t, DecodeJSON(req, &v))
}
