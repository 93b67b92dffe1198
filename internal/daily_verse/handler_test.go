package dailyverse

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taiwoajasa245/verse-courier/pkg/response"
)

func newRouter(f *fixture) http.Handler {
	h := NewDailyVerseHandler(f.service)
	r := chi.NewRouter()
	r.Get("/topics", h.TopicsHandler)
	r.Get("/search", h.SearchHandler)
	r.Get("/passages/{book}/{chapter}/{verse}", h.PassageHandler)
	r.Get("/subscribers/{id}", h.GetSubscriberHandler)
	r.Patch("/subscribers/{id}", h.UpdateSubscriberHandler)
	r.Post("/subscribers/{id}/ask", h.AskHandler)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (int, response.APIResponse, json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	var envelope struct {
		response.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return rec.Code, envelope.APIResponse, envelope.Data
}

func TestSearchHandler(t *testing.T) {
	h := newRouter(newFixture(t))

	code, _, data := do(t, h, http.MethodGet, "/search?q=fear+dismayed&limit=1", "")
	require.Equal(t, http.StatusOK, code)
	var results []SearchResult
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Isaiah 41:10", results[0].Reference)

	code, resp, _ := do(t, h, http.MethodGet, "/search", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)

	code, _, _ = do(t, h, http.MethodGet, "/search?q=fear&limit=-3", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPassageHandler(t *testing.T) {
	h := newRouter(newFixture(t))

	code, _, data := do(t, h, http.MethodGet, "/passages/Song%20of%20Solomon/2/4", "")
	require.Equal(t, http.StatusOK, code)
	var v Verse
	require.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, "Song of Solomon 2:4", v.Reference)

	code, _, _ = do(t, h, http.MethodGet, "/passages/Jude/1/99", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = do(t, h, http.MethodGet, "/passages/Jude/one/1", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTopicsHandler(t *testing.T) {
	h := newRouter(newFixture(t))
	code, _, data := do(t, h, http.MethodGet, "/topics", "")
	require.Equal(t, http.StatusOK, code)

	var topics []TopicSummary
	require.NoError(t, json.Unmarshal(data, &topics))
	require.Len(t, topics, 2)
	assert.Equal(t, "encouragement", topics[0].Label)
}

func TestSubscriberHandlers(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	code, _, _ := do(t, h, http.MethodGet, "/subscribers/U1", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, data := do(t, h, http.MethodPatch, "/subscribers/U1", `{"topic":"faith","morning":"6:45"}`)
	require.Equal(t, http.StatusOK, code)
	var sub struct {
		Topic string `json:"topic"`
		Slots struct {
			Morning string `json:"morning"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(data, &sub))
	assert.Equal(t, "faith", sub.Topic)
	assert.Equal(t, "06:45", sub.Slots.Morning)

	code, _, _ = do(t, h, http.MethodGet, "/subscribers/U1", "")
	assert.Equal(t, http.StatusOK, code)

	code, _, _ = do(t, h, http.MethodPatch, "/subscribers/U1", `{"evening":"25:00"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = do(t, h, http.MethodPatch, "/subscribers/U1", `{"unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAskHandler(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	code, resp, data := do(t, h, http.MethodPost, "/subscribers/U1/ask", `{"text":"I am afraid"}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	var res AskResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "encouragement", res.Topic)
	assert.Len(t, res.Verses, 2)
	assert.True(t, res.Delivered)
	assert.Len(t, f.sender.sent["U1"], 1)

	code, _, _ = do(t, h, http.MethodPost, "/subscribers/U1/ask", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}
