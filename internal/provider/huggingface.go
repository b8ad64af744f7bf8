package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kreasi-ai/backend/internal/imagestore"
)

// DefaultBaseURL is the Hugging Face serverless inference endpoint.
const DefaultBaseURL = "https://api-inference.huggingface.co"

// Client talks to the Hugging Face inference REST API. There is no official
// Go SDK; the requests mirror the API's documented shapes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Hugging Face API client. A nil httpClient falls back to
// http.DefaultClient; an empty baseURL falls back to DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends a single-turn chat completion request to the given
// model and returns the assistant's reply.
func (c *Client) ChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:     model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 500,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s/v1/chat/completions", c.baseURL, model)
	data, err := c.post(ctx, url, "application/json", body)
	if err != nil {
		return "", err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion for model %q returned no choices", model)
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateImage asks the given model to render the prompt and returns the raw
// image bytes.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, model)
	return c.post(ctx, url, "application/json", body)
}

// post issues an authorized POST and returns the response body. Non-2xx
// responses become errors carrying the status and the body excerpt. No client
// timeout is set here; cancellation comes from ctx and the transport layer.
func (c *Client) post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := data
		if len(excerpt) > 512 {
			excerpt = excerpt[:512]
		}
		return nil, fmt.Errorf("inference API responded with %d: %s", resp.StatusCode, excerpt)
	}

	return data, nil
}

// TextProvider generates text through a chat-completion model.
type TextProvider struct {
	client *Client
	model  string
}

// NewTextProvider creates a text provider bound to one model.
func NewTextProvider(client *Client, model string) *TextProvider {
	return &TextProvider{client: client, model: model}
}

// Generate returns the model's reply to the prompt.
func (p *TextProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.client.ChatCompletion(ctx, p.model, prompt)
}

// ImageProvider generates an image and stores it, returning its URI as the
// payload.
type ImageProvider struct {
	client *Client
	model  string
	store  imagestore.Store
}

// NewImageProvider creates an image provider bound to one model and store.
func NewImageProvider(client *Client, model string, store imagestore.Store) *ImageProvider {
	return &ImageProvider{client: client, model: model, store: store}
}

// Generate renders the prompt and returns the stored image's URI.
func (p *ImageProvider) Generate(ctx context.Context, prompt string) (string, error) {
	data, err := p.client.GenerateImage(ctx, p.model, prompt)
	if err != nil {
		return "", err
	}
	return p.store.Save(ctx, data, "image/png")
}
