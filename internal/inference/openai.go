package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIConfig configures a client for OpenAI-compatible chat endpoints.
type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Now        func() time.Time
}

// OpenAIClient sends prompts as chat completions.
type OpenAIClient struct {
	client  openai.Client
	timeout time.Duration
	now     func() time.Time
}

// NewOpenAIClient constructs a chat completion client. Retries are disabled
// so every call maps to exactly one recorded outcome.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		timeout: cfg.Timeout,
		now:     cfg.Now,
	}, nil
}

// Invoke sends the developer prompt as the system message and the sentence as
// the user message.
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) Response {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{OfString: openai.String(req.DeveloperPrompt)},
			}},
			{OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(req.UserPrompt)},
			}},
		},
		Temperature: openai.Float(req.Temperature),
	}

	start := c.now()
	completion, err := c.client.Chat.Completions.New(callCtx, params)
	elapsed := c.now().Sub(start)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return httpError(apiErr.StatusCode, elapsed)
		}
		return classifyError(ctx, callCtx, err, c.timeout)
	}
	if len(completion.Choices) == 0 {
		return transportError(fmt.Errorf("completion has no choices"))
	}
	return success(strings.TrimSpace(completion.Choices[0].Message.Content), http.StatusOK, elapsed)
}
