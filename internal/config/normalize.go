package config

import (
	"fmt"
	"strings"

	"emoeval/internal/inference"
	"emoeval/internal/spec"
)

// Defaults applied by Normalize.
const (
	DefaultInstanceID  = "111"
	DefaultPlatformID  = "456"
	DefaultTimeoutSecs = 30
	DefaultDelayMS     = 1000
	DefaultTopK        = 10
	DefaultTemperature = 0.6
	DefaultTokenEnv    = "VITE_AUTH_TOKEN"
	DefaultOpenAIEnv   = "OPENAI_API_KEY"
)

// Normalize fills defaults in place.
func Normalize(cfg *spec.Config) {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	endpoint := &cfg.Endpoint
	endpoint.Kind = strings.ToLower(strings.TrimSpace(endpoint.Kind))
	if endpoint.Kind == "" {
		endpoint.Kind = inference.KindProxy
	}
	if endpoint.Kind == inference.KindProxy {
		if endpoint.URL == "" {
			endpoint.URL = inference.DefaultProxyURL
		}
		if endpoint.InstanceID == "" {
			endpoint.InstanceID = DefaultInstanceID
		}
		if endpoint.PlatformID == "" {
			endpoint.PlatformID = DefaultPlatformID
		}
	}
	if endpoint.TimeoutSeconds == 0 {
		endpoint.TimeoutSeconds = DefaultTimeoutSecs
	}

	if cfg.Credentials.TokenEnv == "" {
		cfg.Credentials.TokenEnv = DefaultTokenEnv
		if endpoint.Kind == inference.KindOpenAI {
			cfg.Credentials.TokenEnv = DefaultOpenAIEnv
		}
	}

	if cfg.Rate.DelayMS == nil {
		delay := DefaultDelayMS
		cfg.Rate.DelayMS = &delay
	}
	if cfg.Rate.Workers == 0 {
		cfg.Rate.Workers = 1
	}
	if cfg.Report.TopK == 0 {
		cfg.Report.TopK = DefaultTopK
	}

	for i := range cfg.Tasks {
		task := &cfg.Tasks[i]
		if task.Temperature == nil {
			temperature := DefaultTemperature
			task.Temperature = &temperature
		}
		for j := range task.Calls {
			call := &task.Calls[j]
			if strings.TrimSpace(call.ID) == "" {
				if call.FunctionName != "" {
					call.ID = call.FunctionName
				} else {
					call.ID = fmt.Sprintf("call%d", j+1)
				}
			}
		}
		if task.AccuracyField == "" && taskDeclares(*task, "emotion") {
			task.AccuracyField = "emotion"
		}
	}
}

func taskDeclares(task spec.TaskConfig, field string) bool {
	for _, call := range task.Calls {
		for _, name := range call.Fields {
			if name == field {
				return true
			}
		}
	}
	return false
}
