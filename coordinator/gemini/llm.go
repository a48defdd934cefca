// Package gemini generates text with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModelID = "gemini-1.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client implements dishadvisor.TextGenerator.
type Client struct {
	client *genai.Client
	// model builds a generator carrying the system instruction for one call.
	model func(system string) contentGenerator
}

type ClientOpts struct {
	APIKey      string
	ModelID     string
	Temperature float32
}

// NewClient creates a new Gemini API client. Close releases it.
func NewClient(ctx context.Context, opts ClientOpts) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: client,
		model: func(system string) contentGenerator {
			m := client.GenerativeModel(opts.ModelID)
			m.SetTemperature(opts.Temperature)
			m.ResponseMIMEType = "application/json"
			if strings.TrimSpace(system) != "" {
				m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
			}
			return m
		},
	}, nil
}

// Generate sends the user prompt under the given system instruction and returns the text parts joined.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "backend", "gemini", "system_len", len(system), "user_len", len(user))

	resp, err := c.model(system).GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return textFromResponse(resp)
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("generated content is not text")
	}
	return b.String(), nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
