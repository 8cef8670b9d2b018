// Package advisor turns the computed financial position into a
// natural-language analysis using the OpenAI chat API.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/musso17/facturascr/internal/services"
	"github.com/musso17/facturascr/internal/storage"
)

// ChatCompleter is the slice of the OpenAI client the advisor needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Advisor answers financial questions grounded in the stored records.
type Advisor struct {
	client ChatCompleter
	model  string
}

// New creates an advisor backed by the OpenAI API.
func New(apiKey, model string) (*Advisor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4oMini
	}
	return &Advisor{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// NewWithClient creates an advisor with an injected client.
func NewWithClient(client ChatCompleter, model string) *Advisor {
	return &Advisor{client: client, model: model}
}

// Analyze sends the financial position to the model and returns its answer.
func (a *Advisor) Analyze(ctx context.Context, report services.ProjectionReport, taxes []storage.TaxSummary, question string) (string, error) {
	prompt := BuildPrompt(report, taxes, question)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
		MaxTokens:   1500,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	answer := resp.Choices[0].Message.Content
	slog.InfoContext(ctx, "Analysis completed",
		"model", a.model,
		"prompt_chars", len(prompt),
		"answer_chars", len(answer))

	return answer, nil
}
