package inference

import (
	"fmt"
	"time"
)

// Endpoint kinds.
const (
	KindProxy  = "proxy"
	KindOpenAI = "openai"
)

// Endpoint describes where and how calls are sent.
type Endpoint struct {
	Kind       string
	URL        string
	InstanceID string
	PlatformID string
	Token      string
	Timeout    time.Duration
}

// NewClient builds the client for an endpoint kind.
func NewClient(endpoint Endpoint) (Client, error) {
	switch endpoint.Kind {
	case "", KindProxy:
		return NewProxyClient(ProxyConfig{
			URL:        endpoint.URL,
			InstanceID: endpoint.InstanceID,
			PlatformID: endpoint.PlatformID,
			Token:      endpoint.Token,
			Timeout:    endpoint.Timeout,
		})
	case KindOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			BaseURL: endpoint.URL,
			APIKey:  endpoint.Token,
			Timeout: endpoint.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported endpoint kind %q", endpoint.Kind)
	}
}
