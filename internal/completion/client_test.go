package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})
	assert.Equal(t, DefaultEndpoint, client.endpoint)
	assert.Equal(t, DefaultModel, client.model)
	assert.Zero(t, client.httpClient.Timeout)

	client = NewClient(Config{Endpoint: " http://local/v1 ", Model: "gpt-4o", Timeout: time.Minute})
	assert.Equal(t, "http://local/v1", client.endpoint)
	assert.Equal(t, "gpt-4o", client.model)
	assert.Equal(t, time.Minute, client.httpClient.Timeout)
}

func TestClient_Complete_RequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var payload Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-test", payload.Model)
		require.Len(t, payload.Messages, 1)
		assert.Equal(t, "user", payload.Messages[0].Role)
		assert.Equal(t, "Describe what the following code does:\nx := 1", payload.Messages[0].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"It assigns 1 to x."}}]}` + "\n"))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL + "/v1/chat/completions", Model: "gpt-test"})
	result, err := client.Complete(context.Background(), "sk-test", "Describe what the following code does:\nx := 1")
	require.NoError(t, err)
	assert.Equal(t, "It assigns 1 to x.", result.Text)
	assert.False(t, result.APIError)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, 1, result.Chunks)
}

func TestClient_Complete_ConcatenatesChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher, _ := w.(http.Flusher)
		for _, part := range []string{"Hello", ", ", "world"} {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + part + `"}}]}` + "\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	defer server.Close()

	result, err := NewClient(Config{Endpoint: server.URL}).Complete(context.Background(), "sk", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", result.Text)
	assert.Equal(t, 3, result.Chunks)
}

func TestClient_Complete_ErrorMessageVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided: ''.","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	result, err := NewClient(Config{Endpoint: server.URL}).Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.True(t, result.APIError)
	assert.Equal(t, "Incorrect API key provided: ''.", result.Text)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
}

func TestClient_Complete_EmptyCredentialIsSent(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	_, err := NewClient(Config{Endpoint: server.URL}).Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", strings.TrimSpace(auth))
}

func TestClient_Complete_HTTPErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(Config{Endpoint: server.URL}).Complete(context.Background(), "sk", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error 502")
}

func TestClient_Complete_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	_, err := NewClient(Config{Endpoint: server.URL}).Complete(context.Background(), "sk", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read response")
}

func TestClient_Complete_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(Config{Endpoint: url}).Complete(context.Background(), "sk", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
}

func TestClient_Complete_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Complete(context.Background(), "sk", "hi")
	assert.Error(t, err)
}

func TestReadStream(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
		apiError bool
	}{
		{
			name:     "single document",
			body:     `{"choices":[{"message":{"content":"X"}}]}`,
			expected: "X",
		},
		{
			name:     "newline delimited",
			body:     "{\"choices\":[{\"message\":{\"content\":\"a\"}}]}\n\n{\"choices\":[{\"message\":{\"content\":\"b\"}}]}\n",
			expected: "ab",
		},
		{
			name:     "pretty printed across lines",
			body:     "{\n  \"choices\": [\n    {\"message\": {\"content\": \"multi\"}}\n  ]\n}\n",
			expected: "multi",
		},
		{
			name:     "server sent events",
			body:     ": keepalive\ndata: {\"choices\":[{\"delta\":{\"content\":\"He\"}}]}\n\ndata: {\"choices\":[{\"delta\":{\"content\":\"y\"}}]}\n\ndata: [DONE]\n",
			expected: "Hey",
		},
		{
			name:     "error stops reading",
			body:     "{\"choices\":[{\"message\":{\"content\":\"partial\"}}]}\n{\"error\":{\"message\":\"Rate limit reached\"}}\n{\"choices\":[{\"message\":{\"content\":\"ignored\"}}]}\n",
			expected: "Rate limit reached",
			apiError: true,
		},
		{
			name:     "string error",
			body:     `{"error":"model overloaded"}`,
			expected: "model overloaded",
			apiError: true,
		},
		{
			name:     "null error is not an error",
			body:     `{"error":null,"choices":[{"message":{"content":"fine"}}]}`,
			expected: "fine",
		},
		{
			name:     "server sent event ids and retry fields",
			body:     "retry: 3000\nid: 1\ndata: {\"choices\":[{\"delta\":{\"content\":\"He\"}}]}\n\nid: 2\ndata: {\"choices\":[{\"delta\":{\"content\":\"y\"}}]}\n\ndata: [DONE]\n",
			expected: "Hey",
		},
		{
			name:     "recovers after a non-JSON line",
			body:     "ok\n{\"choices\":[{\"message\":{\"content\":\"X\"}}]}\n",
			expected: "X",
		},
		{
			name:     "recovers after a truncated document",
			body:     "{\"choices\":[{\"message\":{\"content\":\"lo\n{\"choices\":[{\"message\":{\"content\":\"st\"}}]}\n",
			expected: "st",
		},
		{
			name:     "false error is not an error",
			body:     `{"error":false,"choices":[{"message":{"content":"fine"}}]}`,
			expected: "fine",
		},
		{
			name:     "empty string error is not an error",
			body:     `{"error":"","choices":[{"message":{"content":"fine"}}]}`,
			expected: "fine",
		},
		{
			name:     "error without message shows the error object",
			body:     `{"error":{"code":"invalid_api_key"}}`,
			expected: `{"code":"invalid_api_key"}`,
			apiError: true,
		},
		{
			name:     "no choices",
			body:     `{"id":"cmpl-1"}`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ReadStream(strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Text)
			assert.Equal(t, tt.apiError, result.APIError)
		})
	}
}

func TestReadStream_SplitAcrossReads(t *testing.T) {
	body := `{"choices":[{"message":{"content":"split across reads"}}]}` + "\n"
	reader := iotest.OneByteReader(strings.NewReader(body))

	result, err := ReadStream(reader)
	require.NoError(t, err)
	assert.Equal(t, "split across reads", result.Text)
}

func TestReadStream_Incomplete(t *testing.T) {
	_, err := ReadStream(strings.NewReader(`{"choices":[{"message":{"content":"cut`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete JSON document")
}

func TestReadStream_ReadError(t *testing.T) {
	reader := io.MultiReader(strings.NewReader("{\"choices\":"), iotest.ErrReader(io.ErrUnexpectedEOF))

	_, err := ReadStream(reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading stream")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	assert.Equal(t, "ab...", truncate("abcdef", 2))

	// "é" is two bytes; cutting inside it backs up to the rune start.
	got := truncate("aé", 2)
	assert.Equal(t, "a...", got)
	assert.True(t, utf8.ValidString(got))
}
