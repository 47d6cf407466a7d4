package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cropwise/advisor/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Generator and VisionGenerator against an
// OpenAI-compatible chat completions API
type OpenAIClient struct {
	client      *openai.Client
	model       string
	visionModel string
	temperature float32
}

// OpenAIConfig holds OpenAI client configuration
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	VisionModel string
	Temperature float32
}

// NewOpenAIClient creates a new OpenAI-backed generation client
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = model
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		visionModel: visionModel,
		temperature: cfg.Temperature,
	}
}

// Generate performs a single-shot completion
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildParams(req))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream performs a streaming completion. The returned channel is
// closed after the final fragment; an upstream failure is delivered as a
// terminal error fragment.
func (c *OpenAIClient) GenerateStream(ctx context.Context, req Request) (<-chan Fragment, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	ch := make(chan Fragment)
	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				ch <- Fragment{Err: fmt.Errorf("%w: %v", domain.ErrGeneration, err)}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
				select {
				case ch <- Fragment{Text: delta}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// GenerateVision performs a single-shot completion over an image
func (c *OpenAIClient) GenerateVision(ctx context.Context, req VisionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.visionModel
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: req.Prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: req.ImageURL,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) buildParams(req Request) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}
}
