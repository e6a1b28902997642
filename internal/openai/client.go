// Package openai adapts the OpenAI Chat Completions API to the assistant's
// Generator port, in synchronous (JSON object) and streaming (text delta)
// modes.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/freshline/concierge/internal/assistant"
)

type Client struct {
	client  oai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient builds a client for the given model. baseURL is optional and
// exists for tests and gateway deployments. timeout is the per-call ceiling
// applied to both modes.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, logger *slog.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		client:  oai.NewClient(opts...),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

func buildMessages(system string, history []assistant.Message, userMessage string) []oai.ChatCompletionMessageParamUnion {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, oai.SystemMessage(system))
	for _, m := range history {
		switch m.Role {
		case "assistant":
			messages = append(messages, oai.AssistantMessage(m.Content))
		default:
			messages = append(messages, oai.UserMessage(m.Content))
		}
	}
	return append(messages, oai.UserMessage(userMessage))
}

// Complete performs one synchronous chat completion and returns the raw
// message content. The JSON-object response format matches the assistant's
// synchronous prompt contract.
func (c *Client) Complete(ctx context.Context, system string, history []assistant.Message, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := oai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(system, history, userMessage),
		Temperature: oai.Float(0.7),
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &oai.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream performs one streaming chat completion. The delta channel closes at
// end of stream; the error channel then yields exactly one value, nil on
// success. Cancelling ctx aborts the upstream call.
func (c *Client) Stream(ctx context.Context, system string, history []assistant.Message, userMessage string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(out)

		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		params := oai.ChatCompletionNewParams{
			Model:       c.model,
			Messages:    buildMessages(system, history, userMessage),
			Temperature: oai.Float(0.7),
		}

		stream := c.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case out <- delta:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, io.EOF) {
			errCh <- fmt.Errorf("chat stream: %w", err)
		}
	}()

	return out, errCh
}
