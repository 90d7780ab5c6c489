// Package classifier provides zero-shot intent classifiers backed by hosted models.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
	"github.com/tastybyte/orderbot/internal/infrastructure/metrics"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-1.5-flash"

const maxAttempts = 3

var (
	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("classifier returned an empty response")
	// ErrUnknownLabel is returned when the model answered outside the label set
	ErrUnknownLabel = errors.New("classifier returned an unknown label")
)

const systemPrompt = `You classify short messages sent to a restaurant ordering assistant.
Pick exactly one label from the candidate list that best describes what the customer wants.
Reply only with JSON of the form {"label": "<one candidate>", "confidence": <number between 0 and 1>}.`

// generator is the subset of *genai.GenerativeModel the classifier needs
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier picks one label from a candidate set with a Gemini model
type GeminiClassifier struct {
	client  *genai.Client
	model   generator
	limiter *rate.Limiter
	backoff time.Duration
	logger  logging.Logger
}

type labelResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// NewGemini creates a classifier talking to the Gemini API. ratePerSec bounds
// the outgoing request rate; zero or less disables limiting.
func NewGemini(ctx context.Context, apiKey, model string, ratePerSec float64, logger logging.Logger) (*GeminiClassifier, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	m := client.GenerativeModel(model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	c := newClassifier(m, newLimiter(ratePerSec), logger)
	c.client = client
	return c, nil
}

func newClassifier(model generator, limiter *rate.Limiter, logger logging.Logger) *GeminiClassifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GeminiClassifier{
		model:   model,
		limiter: limiter,
		backoff: 300 * time.Millisecond,
		logger:  logger.With(map[string]interface{}{"component": "gemini_classifier"}),
	}
}

func newLimiter(ratePerSec float64) *rate.Limiter {
	if ratePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(ratePerSec), burst)
}

// Close releases the underlying client
func (c *GeminiClassifier) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Classify returns the label the model picked for text and its confidence
func (c *GeminiClassifier) Classify(ctx context.Context, text string, labels []string) (string, float64, error) {
	if len(labels) == 0 {
		return "", 0, errors.New("no candidate labels")
	}
	prompt := fmt.Sprintf("Candidate labels: %s\nMessage: %q", strings.Join(labels, ", "), text)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.ClassifierCalls.WithLabelValues("rate_limited").Inc()
			return "", 0, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			c.logger.WithError(err).Warn("gemini request failed", map[string]interface{}{"attempt": attempt})
			lastErr = err
			if !c.sleep(ctx, attempt) {
				break
			}
			continue
		}

		label, score, err := decode(firstText(resp), labels)
		if err != nil {
			metrics.ClassifierCalls.WithLabelValues("invalid").Inc()
			return "", 0, err
		}

		metrics.ClassifierCalls.WithLabelValues("ok").Inc()
		c.logger.Debug("gemini classified message", map[string]interface{}{
			"label": label,
			"score": score,
		})
		return label, score, nil
	}

	metrics.ClassifierCalls.WithLabelValues("error").Inc()
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return "", 0, lastErr
}

// sleep waits before the next attempt and reports false if ctx ended first
func (c *GeminiClassifier) sleep(ctx context.Context, attempt int) bool {
	if attempt == maxAttempts {
		return false
	}
	t := time.NewTimer(time.Duration(attempt) * c.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func decode(txt string, labels []string) (string, float64, error) {
	txt = stripCodeFences(txt)
	if txt == "" {
		return "", 0, ErrEmptyResponse
	}

	var out labelResponse
	if err := json.Unmarshal([]byte(txt), &out); err != nil {
		return "", 0, fmt.Errorf("decode classifier response: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(out.Label))
	for _, l := range labels {
		if strings.EqualFold(l, label) {
			return l, clamp(out.Confidence), nil
		}
	}
	return "", 0, fmt.Errorf("%w: %q", ErrUnknownLabel, out.Label)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func ptrFloat32(v float32) *float32 { return &v }
