package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"career-advisor/internal/logger"
	"career-advisor/internal/metrics"
	"career-advisor/internal/models"
)

const (
	SystemPrompt     = "You are a helpful career advisor. Provide advice in Markdown format."
	userPromptFormat = "Provide career advice for becoming a %s in %d years."

	maxErrorBodyBytes = 64 << 10
)

var (
	// ErrNetwork means the request never reached the endpoint or no response came back.
	ErrNetwork = errors.New("advice endpoint unreachable")
	// ErrHTTP means the endpoint answered with a non-2xx status.
	ErrHTTP = errors.New("advice endpoint returned an error status")
	// ErrParse means the body was not JSON or lacked choices[0].message.content.
	ErrParse = errors.New("advice response malformed")
)

// HTTPStatusError carries the status code of a non-2xx reply. It matches
// ErrHTTP under errors.Is.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrHTTP.Error(), e.Status)
}

func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrHTTP
}

// Advisor performs the advisory call.
type Advisor interface {
	GetAdvice(ctx context.Context, career string, years int) (string, error)
}

type AdvisorService struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *zap.Logger
}

// NewAdvisorService returns a client for the chat-completion endpoint. A zero
// timeout keeps net/http's default of no client-side deadline.
func NewAdvisorService(endpoint, model string, timeout time.Duration, log *zap.Logger) *AdvisorService {
	return &AdvisorService{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.OrNop(log).With(zap.String("component", "advisor")),
	}
}

// BuildUserPrompt interpolates career and years verbatim.
func BuildUserPrompt(career string, years int) string {
	return fmt.Sprintf(userPromptFormat, career, years)
}

// BuildRequest assembles the chat-completion payload for one submission.
func (s *AdvisorService) BuildRequest(career string, years int) models.ChatCompletionRequest {
	return models.ChatCompletionRequest{
		Messages: []models.ChatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildUserPrompt(career, years)},
		},
		Model: s.model,
	}
}

// GetAdvice sends one request and returns choices[0].message.content.
// There is no retry; failures wrap ErrNetwork, ErrHTTP or ErrParse.
func (s *AdvisorService) GetAdvice(ctx context.Context, career string, years int) (string, error) {
	start := time.Now()
	metrics.AdviceInFlight.Inc()
	defer metrics.AdviceInFlight.Dec()

	advice, err := s.getAdvice(ctx, career, years)

	outcome := Outcome(err)
	metrics.AdviceRequests.WithLabelValues(outcome).Inc()
	metrics.AdviceDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Error("advisory call failed",
			zap.String("outcome", outcome),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}

	s.logger.Debug("advisory call completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("advice_bytes", len(advice)),
	)
	return advice, nil
}

func (s *AdvisorService) getAdvice(ctx context.Context, career string, years int) (string, error) {
	body, err := json.Marshal(s.BuildRequest(career, years))
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	return ExtractContent(raw)
}

// ExtractContent decodes a chat-completion body and returns
// choices[0].message.content.
func ExtractContent(raw []byte) (string, error) {
	var out models.ChatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrParse)
	}
	msg := out.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", fmt.Errorf("%w: choices[0].message.content missing", ErrParse)
	}
	return *msg.Content, nil
}

// Outcome maps an advisory call result to its metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrHTTP):
		return metrics.OutcomeHTTPError
	case errors.Is(err, ErrParse):
		return metrics.OutcomeParseError
	default:
		return metrics.OutcomeNetworkError
	}
}
