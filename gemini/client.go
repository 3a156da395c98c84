package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/parleychat/parley"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ parley.Provider = (*Client)(nil)

// Client implements [parley.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Complete sends a non-streaming request and returns the full text of the
// response.
func (c *Client) Complete(ctx context.Context, req parley.Request) (string, error) {
	contents, config := ConvertRequest(req)
	resp, err := c.client.Models.GenerateContent(ctx, c.resolveModel(req), contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return responseText(resp), nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [parley.Stream] of text fragments.
func (c *Client) Stream(ctx context.Context, req parley.Request) (parley.Stream, error) {
	contents, config := ConvertRequest(req)
	iterFn := c.client.Models.GenerateContentStream(ctx, c.resolveModel(req), contents, config)
	return newStream(ctx, iterFn), nil
}

func (c *Client) resolveModel(req parley.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

// ConvertRequest converts the conversation context to genai Contents.
// System-role messages become the system instruction; user and assistant
// turns map to the "user" and "model" roles.
func ConvertRequest(req parley.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: defaultMaxTokens,
	}

	var system []string
	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case parley.RoleSystem:
			system = append(system, msg.Content)
		case parley.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}

	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}

	return contents, config
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
