package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultProxyURL is the local proxy endpoint used when none is configured.
const DefaultProxyURL = "http://127.0.0.1:8010/invoke"

// HTTPDoer abstracts HTTP clients used by the proxy client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProxyConfig configures the proxy client.
type ProxyConfig struct {
	URL        string
	InstanceID string
	PlatformID string
	Token      string
	Timeout    time.Duration
	Client     HTTPDoer
	Now        func() time.Time
}

// ProxyClient calls models through the invoke proxy.
type ProxyClient struct {
	cfg ProxyConfig
}

type proxyRequest struct {
	InstanceID      string  `json:"instance_id"`
	DeveloperPrompt string  `json:"developer_prompt"`
	UserPrompt      string  `json:"user_prompt"`
	ModelName       string  `json:"model_name"`
	Temperature     float64 `json:"temperature"`
}

type proxyResponse struct {
	Response *string `json:"response"`
}

// NewProxyClient constructs a proxy client with defaults applied.
func NewProxyClient(cfg ProxyConfig) (*ProxyClient, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("auth token is required")
	}
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = DefaultProxyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ProxyClient{cfg: cfg}, nil
}

// Invoke posts one prompt to the proxy and classifies the outcome.
func (c *ProxyClient) Invoke(ctx context.Context, req Request) Response {
	payload, err := json.Marshal(proxyRequest{
		InstanceID:      c.cfg.InstanceID,
		DeveloperPrompt: req.DeveloperPrompt,
		UserPrompt:      req.UserPrompt,
		ModelName:       req.Model,
		Temperature:     req.Temperature,
	})
	if err != nil {
		return transportError(fmt.Errorf("marshal request: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return transportError(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Function-Name", req.FunctionName)
	httpReq.Header.Set("X-Platform-ID", c.cfg.PlatformID)
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	start := c.cfg.Now()
	resp, err := c.cfg.Client.Do(httpReq)
	if err != nil {
		return classifyError(ctx, callCtx, err, c.cfg.Timeout)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyError(ctx, callCtx, err, c.cfg.Timeout)
	}
	elapsed := c.cfg.Now().Sub(start)
	if resp.StatusCode != http.StatusOK {
		return httpError(resp.StatusCode, elapsed)
	}

	var decoded proxyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return transportError(fmt.Errorf("decode response: %w", err))
	}
	if decoded.Response == nil {
		return transportError(fmt.Errorf("response field missing"))
	}
	return success(strings.TrimSpace(*decoded.Response), resp.StatusCode, elapsed)
}
