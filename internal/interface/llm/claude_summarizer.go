package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
	"skypulse-engine/pkg/logger"
	"skypulse-engine/templates"
)

// ClaudeSummarizer implements the Summarizer interface using the Anthropic
// Claude API. Each call carries its own timeout; failures surface as
// ExternalServiceError so the worker can retry and eventually fall back.
type ClaudeSummarizer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    logger.Logger
}

// NewClaudeSummarizer creates a new Claude-backed summarizer
func NewClaudeSummarizer(apiKey, model string, timeout time.Duration, logger logger.Logger) *ClaudeSummarizer {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &ClaudeSummarizer{
		client:    client,
		model:     model,
		maxTokens: 1024,
		timeout:   timeout,
		logger:    logger,
	}
}

// Summarize asks the model why a scored deal fits the subscription
func (s *ClaudeSummarizer) Summarize(ctx context.Context, req *entity.SummaryRequest) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	message, err := s.client.Messages.New(timeoutCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: templates.SummarySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(templates.SummaryPrompt(req))),
		},
	})
	if err != nil {
		return "", &entity.ExternalServiceError{Service: "claude", Err: err}
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", &entity.ExternalServiceError{Service: "claude", Err: fmt.Errorf("empty completion")}
	}

	s.logger.Debug("Summary generated",
		"dealId", req.Deal.ID,
		"subscriptionId", req.Subscription.ID,
		"duration", time.Since(startTime).String())

	return summary, nil
}

var _ repository.Summarizer = (*ClaudeSummarizer)(nil)
