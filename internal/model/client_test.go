package model

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
)

const testKeyEnv = "CODESHIELD_TEST_API_KEY"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	t.Setenv(testKeyEnv, "secret-key")

	cfg := &config.Config{Model: config.Model{Endpoint: server.URL, APIKeyEnv: testKeyEnv}}
	client, err := New(nil, cfg)
	require.NoError(t, err)
	return client
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

func TestAnalyze(t *testing.T) {
	var got CompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "```json\n{\"issues\": [], \"explanation\": \"fine\"}\n```")
	})

	raw, err := client.Analyze(context.Background(), "print(1)", "Python")
	require.NoError(t, err)
	assert.Equal(t, "fine", raw["explanation"])

	assert.Equal(t, config.DefaultModelName, got.Model)
	assert.Equal(t, config.DefaultTemperature, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, UserPrompt("Python", "print(1)"), got.Messages[1].Content)
}

func TestAnalyzeStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
		wantMsg    string
	}{
		{"rate limited", http.StatusTooManyRequests, http.StatusTooManyRequests, errors.MessageRateLimited},
		{"credits exhausted", http.StatusPaymentRequired, http.StatusPaymentRequired, errors.MessageCreditsOut},
		{"gateway failure", http.StatusBadGateway, http.StatusInternalServerError, errors.MessageAnalyzeFailed},
		{"unauthorized", http.StatusUnauthorized, http.StatusInternalServerError, errors.MessageAnalyzeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream says no", tt.status)
			})

			_, err := client.Analyze(context.Background(), "x", "")
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, errors.HTTPStatus(err))
			assert.Equal(t, tt.wantMsg, errors.PublicMessage(err))
		})
	}
}

func TestAnalyzeEmptyContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "  ")
	})

	_, err := client.Analyze(context.Background(), "x", "")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrEmptyAnalysis))
	assert.Equal(t, errors.MessageNoAnalysis, errors.PublicMessage(err))
}

func TestAnalyzeUnparseableContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "I could not analyse this code.")
	})

	_, err := client.Analyze(context.Background(), "x", "")
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.True(t, stderrors.As(err, &parseErr))
	assert.Equal(t, errors.MessageParseFailed, errors.PublicMessage(err))
}

func TestNewWithoutKey(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := New(nil, &config.Config{Model: config.Model{APIKeyEnv: testKeyEnv}})
	require.Error(t, err)
	assert.Equal(t, errors.MessageNotConfigured, errors.PublicMessage(err))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(err))
}

func TestParseContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain json", `{"issues": []}`, false},
		{"fenced json", "```json\n{\"issues\": []}\n```", false},
		{"bare fence", "```\n{\"issues\": []}\n```", false},
		{"array", `[1, 2]`, true},
		{"null", `null`, true},
		{"prose", `no json here`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ParseContent(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, raw, "issues")
		})
	}
}

func TestUserPrompt(t *testing.T) {
	assert.Equal(t,
		"Analyze the following Go for security vulnerabilities:\n\n```Go\nx := 1\n```\n\nProvide your analysis in the specified JSON format.",
		UserPrompt("Go", "x := 1"))
	assert.Contains(t, UserPrompt("", "x"), "Analyze the following code for")
}
