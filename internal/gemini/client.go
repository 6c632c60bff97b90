// Package gemini drafts suggested answers to user questions with Google's
// Gemini API. Drafts are shown to the administrator only and never sent to
// users directly.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/VDAgency/RiskBotCrypto/internal/config"
)

// Client defines the AI operations used by the bot.
type Client interface {
	// SuggestAnswer drafts a reply to a user's question. category is the
	// asker's risk profile and may be empty when the quiz was not finished.
	SuggestAnswer(ctx context.Context, question, category string) (string, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	maxRetries    int
	retryDelay    time.Duration
}

// NewClient creates a Gemini client from configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	instruction := cfg.SystemInstruction
	if instruction == "" {
		instruction = AnswerDraftSystemInstruction
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature:       &temperature,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: baseCfg,
		modelName:     cfg.ModelName,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// retriable reports whether the API error is a transient server failure.
func retriable(err error) (int, bool) {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
		return apiErr.Code, true
	}
	return 0, false
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		code, ok := retriable(err)
		if !ok {
			c.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "error", err)
			return nil, fmt.Errorf("gemini API call failed: %w", err)
		}
		if attempt == c.maxRetries {
			break
		}

		c.log.InfoContext(ctx, "Retrying Gemini API call", "attempt", attempt+1, "delay", c.retryDelay, "code", code)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}

	c.log.ErrorContext(ctx, "Gemini API call failed after max retries", "max_retries", c.maxRetries, "error", lastErr)
	return nil, fmt.Errorf("gemini API call failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *sdkClient) SuggestAnswer(ctx context.Context, question, category string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question cannot be empty")
	}
	c.log.DebugContext(ctx, "Drafting answer", "question_len", len(question), "category", category)

	contents := []*genai.Content{genai.NewContentFromText(FormatQuestionPrompt(question, category), genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, contents)
	if err != nil {
		return "", err
	}
	return c.extractText(ctx, resp)
}

func (c *sdkClient) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reason)
		return "", fmt.Errorf("answer draft blocked by safety filter: %s", reason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("answer draft returned no content, finish reason: %s", finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("answer draft returned empty text")
	}
	return text, nil
}
