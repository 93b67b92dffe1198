package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/taiwoajasa245/verse-courier/pkg/config"
	"github.com/taiwoajasa245/verse-courier/pkg/util"
)

const secret = "server-secret"

// bcrypt hash of "test-key" at util.BcryptCost.
var testKeyHash = func() string {
	hash, err := util.HashKeyBcrypt("test-key")
	if err != nil {
		panic(err)
	}
	return hash
}()

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T, store string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:     "0",
		Timezone: "Africa/Lagos",
		CorpusPath: writeFile(t, dir, "corpus.json", `[
  {"book_name": "Isaiah", "chapter": 41, "verse": 10, "text": "Fear thou not; for I am with thee: be not dismayed."},
  {"book_name": "Joshua", "chapter": 1, "verse": 9, "text": "Be strong and of a good courage; be not afraid."},
  {"book_name": "Psalms", "chapter": 4, "verse": 8, "text": "I will both lay me down in peace, and sleep."}
]`),
		TopicsPath: writeFile(t, dir, "topics.yaml", `
encouragement:
  - {book: Isaiah, chapter: 41, verse: 10}
  - {book: Joshua, chapter: 1, verse: 9}
`),
		KeywordsPath:       writeFile(t, dir, "keywords.yaml", "afraid: encouragement\n"),
		DefaultTopic:       "encouragement",
		DefaultMorning:     "07:30",
		DefaultMidday:      "12:00",
		DefaultAfternoon:   "16:30",
		DefaultEvening:     "21:00",
		StoreDriver:        store,
		SQLitePath:         filepath.Join(dir, "courier.db"),
		LedgerDriver:       "store",
		Transport:          "log",
		JWTSecret:          secret,
		GatewayKeys:        "test:" + testKeyHash,
		TokenTTL:           time.Hour,
		SearchCacheTTL:     time.Minute,
		SendTimeout:        time.Second,
		MaxConcurrentSends: 4,
	}
}

func newTestServer(t *testing.T, store string) *Server {
	t.Helper()
	app, err := Build(context.Background(), testConfig(t, store), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })
	return NewServer(app)
}

func request(t *testing.T, s *Server, method, target, body, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.HTTPServer().Handler.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec.Code, payload
}

func TestBuild_UnknownDrivers(t *testing.T) {
	for _, mutate := range []func(*config.Config){
		func(c *config.Config) { c.StoreDriver = "mongo" },
		func(c *config.Config) { c.LedgerDriver = "etcd" },
		func(c *config.Config) { c.Transport = "carrier-pigeon" },
		func(c *config.Config) { c.Transport = "mail" },
		func(c *config.Config) { c.Timezone = "Mars/Olympus" },
		func(c *config.Config) { c.CorpusPath = "" },
		func(c *config.Config) { c.GatewayKeys = "no-separator" },
	} {
		cfg := testConfig(t, "memory")
		mutate(cfg)
		_, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
	}
}

func TestHealth(t *testing.T) {
	for _, store := range []string{"memory", "sqlite"} {
		t.Run(store, func(t *testing.T) {
			s := newTestServer(t, store)
			code, payload := request(t, s, http.MethodGet, apiPrefix+"/health", "", "")
			require.Equal(t, http.StatusOK, code)
			data := payload["data"].(map[string]any)
			assert.EqualValues(t, 3, data["passages"])
			assert.EqualValues(t, 1, data["topics"])
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, "memory")

	code, _ := request(t, s, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, code)

	code, payload := request(t, s, http.MethodGet, apiPrefix+"/search?q=peace+sleep", "", "")
	require.Equal(t, http.StatusOK, code)
	results := payload["data"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "Psalms 4:8", results[0].(map[string]any)["reference"])

	code, _ = request(t, s, http.MethodGet, apiPrefix+"/passages/Isaiah/41/10", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestSubscriberRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, "sqlite")

	code, _ := request(t, s, http.MethodPost, apiPrefix+"/subscribers/U1/ask", `{"text":"afraid"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = request(t, s, http.MethodPost, apiPrefix+"/subscribers/U1/ask", `{"text":"afraid"}`, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, code)

	token, err := util.GenerateJWT(secret, "test", time.Minute)
	require.NoError(t, err)

	code, payload := request(t, s, http.MethodPost, apiPrefix+"/subscribers/U1/ask", `{"text":"I am afraid"}`, token)
	require.Equal(t, http.StatusOK, code)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "encouragement", data["topic"])
	assert.Len(t, data["verses"], 2)

	code, payload = request(t, s, http.MethodGet, apiPrefix+"/subscribers/U1", "", token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "encouragement", payload["data"].(map[string]any)["topic"])
}

func TestBackgroundJobsStop(t *testing.T) {
	s := newTestServer(t, "memory")
	s.StartBackgroundJobs()

	done := make(chan struct{})
	go func() {
		s.StopBackgroundJobs()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestTokenExchangeUnlocksSubscriberRoutes(t *testing.T) {
	s := newTestServer(t, "memory")

	code, _ := request(t, s, http.MethodPost, apiPrefix+"/auth/token", `{"gateway":"test","key":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, payload := request(t, s, http.MethodPost, apiPrefix+"/auth/token", `{"gateway":"test","key":"test-key"}`, "")
	require.Equal(t, http.StatusOK, code)
	token := payload["data"].(map[string]any)["token"].(string)

	code, _ = request(t, s, http.MethodPatch, apiPrefix+"/subscribers/U9", `{"topic":"peace"}`, token)
	assert.Equal(t, http.StatusOK, code)
}
