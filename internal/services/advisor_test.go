package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"career-advisor/internal/metrics"
	"career-advisor/internal/models"
)

func completionBody(content string) string {
	body := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"role": "assistant", "content": content},
			},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func newTestAdvisor(t *testing.T, url string) *AdvisorService {
	return NewAdvisorService(url, "gemma", 0, zaptest.NewLogger(t))
}

func TestBuildUserPrompt(t *testing.T) {
	tests := []struct {
		career string
		years  int
		want   string
	}{
		{"Software Developer", 5, "Provide career advice for becoming a Software Developer in 5 years."},
		{"Chef", 1, "Provide career advice for becoming a Chef in 1 years."},
		{"  data scientist ", 10, "Provide career advice for becoming a   data scientist  in 10 years."},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildUserPrompt(tc.career, tc.years))
		})
	}
}

func TestAdvisorService_GetAdvice_Success(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req models.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemma", req.Model)
		if !assert.Len(t, req.Messages, 2) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, models.ChatMessage{Role: "system", Content: SystemPrompt}, req.Messages[0])
		assert.Equal(t, models.ChatMessage{
			Role:    "user",
			Content: "Provide career advice for becoming a Software Developer in 5 years.",
		}, req.Messages[1])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("## Step 1\nLearn to code.")))
	}))
	defer server.Close()

	advisor := newTestAdvisor(t, server.URL+"/v1/chat/completions")
	advice, err := advisor.GetAdvice(context.Background(), "Software Developer", 5)

	require.NoError(t, err)
	assert.Equal(t, "## Step 1\nLearn to code.", advice)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAdvisorService_GetAdvice_HTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"Internal Server Error", http.StatusInternalServerError},
		{"Bad Request", http.StatusBadRequest},
		{"Service Unavailable", http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(completionBody("ignored")))
			}))
			defer server.Close()

			_, err := newTestAdvisor(t, server.URL).GetAdvice(context.Background(), "Nurse", 3)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrHTTP))
			var statusErr *HTTPStatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tc.statusCode, statusErr.StatusCode)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry expected")
		})
	}
}

func TestAdvisorService_GetAdvice_HTTPErrorLargeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		chunk := bytes.Repeat([]byte("x"), 32<<10)
		deadline := time.After(5 * time.Second)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-deadline:
				return
			default:
			}
			if _, err := w.Write(chunk); err != nil {
				return
			}
			w.(http.Flusher).Flush()
		}
	}))
	defer server.Close()

	start := time.Now()
	_, err := newTestAdvisor(t, server.URL).GetAdvice(context.Background(), "Nurse", 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHTTP))
	assert.Less(t, time.Since(start), 2*time.Second, "error body must not be drained to the end")
}

func TestAdvisorService_GetAdvice_ParseError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"empty object", `{}`},
		{"empty choices", `{"choices":[]}`},
		{"missing message", `{"choices":[{}]}`},
		{"missing content", `{"choices":[{"message":{"role":"assistant"}}]}`},
		{"null content", `{"choices":[{"message":{"content":null}}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newTestAdvisor(t, server.URL).GetAdvice(context.Background(), "Pilot", 4)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse), "got %v", err)
			assert.Equal(t, metrics.OutcomeParseError, Outcome(err))
		})
	}
}

func TestAdvisorService_GetAdvice_EmptyContentIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("")))
	}))
	defer server.Close()

	advice, err := newTestAdvisor(t, server.URL).GetAdvice(context.Background(), "Pilot", 4)
	require.NoError(t, err)
	assert.Equal(t, "", advice)
}

func TestAdvisorService_GetAdvice_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestAdvisor(t, url).GetAdvice(context.Background(), "Librarian", 2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, metrics.OutcomeNetworkError, Outcome(err))
}

func TestAdvisorService_GetAdvice_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestAdvisor(t, server.URL).GetAdvice(ctx, "Architect", 7)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestAdvisorService_ClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	advisor := NewAdvisorService(server.URL, "gemma", 50*time.Millisecond, zaptest.NewLogger(t))
	_, err := advisor.GetAdvice(context.Background(), "Architect", 7)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, metrics.OutcomeSuccess, Outcome(nil))
	assert.Equal(t, metrics.OutcomeHTTPError, Outcome(&HTTPStatusError{StatusCode: 502, Status: "502 Bad Gateway"}))
	assert.Equal(t, metrics.OutcomeParseError, Outcome(ErrParse))
	assert.Equal(t, metrics.OutcomeNetworkError, Outcome(errors.New("dial tcp: refused")))
}
