package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI talks to the chat completions API. OpenRouter and other
// compatible gateways use it with a different BaseURL.
type OpenAI struct {
	client *openai.Client
	label  string
	model  string
}

// NewOpenAI builds the provider. label prefixes Name, e.g. "openrouter".
func NewOpenAI(label string, cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", label)
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(c), label: label, model: cfg.Model}, nil
}

func (p *OpenAI) Name() string { return p.label + "/" + p.model }

func (p *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	var msgs []openai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            msgs,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			return nil, fromStatus(apiErr.HTTPStatusCode, err)
		case errors.As(err, &reqErr):
			return nil, fromStatus(reqErr.HTTPStatusCode, err)
		}
		return nil, Unavailable(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindInvalid, Err: errors.New("reply has no choices")}
	}

	choice := resp.Choices[0]
	return finish(req, reply{
		text:      choice.Message.Content,
		model:     resp.Model,
		usage:     Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
		truncated: choice.FinishReason == openai.FinishReasonLength,
	})
}
