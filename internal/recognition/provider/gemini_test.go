package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGeminiTestClient(srv *httptest.Server) *GeminiClient {
	return &GeminiClient{
		apiKey:     "test-key",
		model:      "gemini-1.5-flash",
		baseURL:    srv.URL,
		log:        zap.NewNop(),
		httpClient: &http.Client{Timeout: time.Second},
	}
}

func TestGeminiAnalyze_SendsInlinePhoto(t *testing.T) {
	photo := []byte{0xff, 0xd8, 0xff, 0xe0}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Contains(t, r.URL.Path, "gemini-1.5-flash:generateContent")

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "rice and beans")
		require.NotNil(t, req.Contents[0].Parts[1].InlineData)
		assert.Equal(t, base64.StdEncoding.EncodeToString(photo), req.Contents[0].Parts[1].InlineData.Data)

		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "{\"food\": \"rice and beans\", \"grams\": 350}"}]}}]}`))
	}))
	defer srv.Close()

	raw, err := newGeminiTestClient(srv).Analyze(context.Background(), "rice and beans", photo)
	require.NoError(t, err)
	assert.JSONEq(t, `{"food": "rice and beans", "grams": 350}`, raw)
}

func TestGeminiAnalyze_NoCandidatesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	_, err := newGeminiTestClient(srv).Analyze(context.Background(), "lunch", []byte{0x01})
	assert.Error(t, err)
}

func TestGeminiAnalyze_APIErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := newGeminiTestClient(srv).Analyze(context.Background(), "lunch", []byte{0x01})
	assert.ErrorContains(t, err, "API key not valid")
}
