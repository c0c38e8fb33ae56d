package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
)

type stubAnalyzer struct {
	raw map[string]interface{}
	err error
}

func (s stubAnalyzer) Analyze(context.Context, string, string) (map[string]interface{}, error) {
	return s.raw, s.err
}

func testSettings() config.Server {
	return config.ServerSettings(nil)
}

func serve(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestAnalyzeSuccess(t *testing.T) {
	srv := New(hclog.NewNullLogger(), testSettings(), stubAnalyzer{raw: map[string]interface{}{
		"issues": []interface{}{
			map[string]interface{}{"title": "SQL Injection", "severity": "medium", "description": "d"},
		},
		"explanation": "e",
	}})

	for _, path := range []string{AnalyzePath, LegacyAnalyzePath} {
		t.Run(path, func(t *testing.T) {
			body := `{"code": "const query = \"SELECT * FROM users WHERE id = \" + userId; db.query(query, cb);", "language": "JavaScript"}`
			rec := serve(t, srv, http.MethodPost, path, body)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
			assert.NoError(t, err)

			var resp struct {
				Analysis map[string]interface{} `json:"analysis"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Nil(t, resp.Analysis["languageMismatch"])
			fix, ok := resp.Analysis["suggestedFix"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, `"SELECT * FROM users WHERE id = " + userId`, fix["vulnerableCode"])
		})
	}
}

func TestAnalyzeMismatch(t *testing.T) {
	srv := New(nil, testSettings(), stubAnalyzer{raw: map[string]interface{}{
		"issues": []interface{}{map[string]interface{}{"title": "XSS", "description": "d"}},
	}})

	rec := serve(t, srv, http.MethodPost, AnalyzePath, `{"code": "const x = 1; console.log(x);", "language": "Python"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Analysis.Mismatch)
	assert.Equal(t, "JavaScript", resp.Analysis.Mismatch.DetectedLabel)
	assert.Nil(t, resp.Analysis.SuggestedFix)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		analyzer   *stubAnalyzer
		body       string
		wantStatus int
		wantError  string
	}{
		{"missing code", &stubAnalyzer{}, `{"language": "Go"}`, http.StatusBadRequest, errors.MessageCodeRequired},
		{"empty code", &stubAnalyzer{}, `{"code": ""}`, http.StatusBadRequest, errors.MessageCodeRequired},
		{"non string code", &stubAnalyzer{}, `{"code": 42}`, http.StatusBadRequest, errors.MessageCodeRequired},
		{"malformed body", &stubAnalyzer{}, `{"code":`, http.StatusBadRequest, "invalid body: malformed JSON"},
		{"not configured", nil, `{"code": "x"}`, http.StatusInternalServerError, errors.MessageNotConfigured},
		{
			"rate limited",
			&stubAnalyzer{err: errors.NewUpstreamError(http.StatusTooManyRequests, "", nil)},
			`{"code": "x"}`, http.StatusTooManyRequests, errors.MessageRateLimited,
		},
		{
			"credits exhausted",
			&stubAnalyzer{err: errors.NewUpstreamError(http.StatusPaymentRequired, "", nil)},
			`{"code": "x"}`, http.StatusPaymentRequired, errors.MessageCreditsOut,
		},
		{
			"upstream failure",
			&stubAnalyzer{err: errors.NewUpstreamError(http.StatusServiceUnavailable, "", nil)},
			`{"code": "x"}`, http.StatusInternalServerError, errors.MessageAnalyzeFailed,
		},
		{
			"unparseable answer",
			&stubAnalyzer{err: &errors.ParseError{Content: "nope"}},
			`{"code": "x"}`, http.StatusInternalServerError, errors.MessageParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var srv *Server
			if tt.analyzer == nil {
				srv = New(nil, testSettings(), nil)
			} else {
				srv = New(nil, testSettings(), *tt.analyzer)
			}

			rec := serve(t, srv, http.MethodPost, AnalyzePath, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec))
			assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestAnalyzeBodyTooLarge(t *testing.T) {
	settings := testSettings()
	settings.MaxBodyBytes = 16
	srv := New(nil, settings, stubAnalyzer{})

	rec := serve(t, srv, http.MethodPost, AnalyzePath, `{"code": "`+strings.Repeat("a", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, errors.MessageBodyTooLarge, decodeError(t, rec))
}

func TestPreflight(t *testing.T) {
	srv := New(nil, testSettings(), nil)

	rec := serve(t, srv, http.MethodOptions, AnalyzePath, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	srv := New(nil, testSettings(), stubAnalyzer{})
	rec := serve(t, srv, http.MethodGet, AnalyzePath, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := New(nil, testSettings(), nil)
	rec := serve(t, srv, http.MethodGet, HealthPath, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListenAndServeShutsDown(t *testing.T) {
	settings := testSettings()
	settings.Address = "127.0.0.1:0"
	srv := New(nil, settings, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
