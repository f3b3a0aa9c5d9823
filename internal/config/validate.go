package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"emoeval/internal/inference"
	"emoeval/internal/parse"
	"emoeval/internal/spec"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks a normalized config and the files it references.
func Validate(cfg *spec.Config, root string) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}
	if root == "" {
		root = "."
	}

	if cfg.Version == 0 {
		add("version", "is required")
	} else if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if strings.TrimSpace(cfg.Dataset) == "" {
		add("dataset", "is required")
	} else if info, err := os.Stat(ResolvePath(root, cfg.Dataset)); err != nil {
		add("dataset", fmt.Sprintf("file not found at %q", cfg.Dataset))
	} else if info.IsDir() {
		add("dataset", fmt.Sprintf("path %q is a directory", cfg.Dataset))
	}

	validateEndpoint(cfg.Endpoint, add)

	if cfg.Rate.DelayMS != nil && *cfg.Rate.DelayMS < 0 {
		add("rate.delay_ms", "must be >= 0")
	}
	if cfg.Rate.Workers < 1 {
		add("rate.workers", "must be >= 1")
	}
	if cfg.Rate.MaxPerSecond < 0 {
		add("rate.max_per_second", "must be >= 0")
	}
	if cfg.Report.TopK < 1 {
		add("report.top_k", "must be >= 1")
	}

	fieldNames := map[string]struct{}{}
	for i, field := range cfg.Fields {
		prefix := fmt.Sprintf("fields[%d]", i)
		name := strings.TrimSpace(field.Name)
		if name == "" {
			add(prefix+".name", "is required")
			continue
		}
		if _, dup := fieldNames[name]; dup {
			add("fields.name", fmt.Sprintf("duplicate name %q", name))
		}
		fieldNames[name] = struct{}{}
		if field.Precision < 0 {
			add(prefix+".precision", "must be >= 0")
		}
		if field.BinWidth < 0 {
			add(prefix+".bin_width", "must be >= 0")
		}
	}

	catalog := NewFieldCatalog(*cfg)
	for _, field := range cfg.Fields {
		if def, ok := catalog.Lookup(strings.TrimSpace(field.Name)); ok {
			if _, err := parse.New([]parse.FieldSpec{def}); err != nil {
				add("fields."+def.Name, err.Error())
			}
		}
	}

	if len(cfg.Tasks) == 0 {
		add("tasks", "at least one task is required")
	}
	taskIDs := map[string]struct{}{}
	for i, task := range cfg.Tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		id := strings.TrimSpace(task.ID)
		if id == "" {
			add(prefix+".id", "is required")
		} else if _, exists := taskIDs[id]; exists {
			add("tasks.id", fmt.Sprintf("duplicate id %q", id))
		} else {
			taskIDs[id] = struct{}{}
		}
		if strings.TrimSpace(task.Model) == "" {
			add(prefix+".model", "is required")
		}
		if task.Temperature != nil && (*task.Temperature < 0 || *task.Temperature > 2) {
			add(prefix+".temperature", "must be between 0 and 2")
		}
		validateCalls(cfg.Endpoint.Kind, root, prefix, task, catalog, add)
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validateEndpoint(endpoint spec.EndpointConfig, add func(field, message string)) {
	switch endpoint.Kind {
	case inference.KindProxy, inference.KindOpenAI:
	default:
		add("endpoint.kind", fmt.Sprintf("unsupported kind %q", endpoint.Kind))
	}
	if endpoint.URL != "" {
		parsed, err := url.Parse(endpoint.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			add("endpoint.url", fmt.Sprintf("invalid url %q", endpoint.URL))
		}
	}
	if endpoint.TimeoutSeconds <= 0 {
		add("endpoint.timeout_seconds", "must be > 0")
	}
}

func validateCalls(kind, root, prefix string, task spec.TaskConfig, catalog FieldCatalog, add func(field, message string)) {
	if len(task.Calls) == 0 {
		add(prefix+".calls", "at least one call is required")
		return
	}
	callIDs := map[string]struct{}{}
	declared := map[string]parse.FieldSpec{}
	for j, call := range task.Calls {
		callPrefix := fmt.Sprintf("%s.calls[%d]", prefix, j)
		if _, dup := callIDs[call.ID]; dup {
			add(prefix+".calls.id", fmt.Sprintf("duplicate id %q", call.ID))
		}
		callIDs[call.ID] = struct{}{}
		if kind == inference.KindProxy && strings.TrimSpace(call.FunctionName) == "" {
			add(callPrefix+".function_name", "is required for the proxy endpoint")
		}
		if _, _, err := LoadPrompt(root, call); err != nil {
			add(callPrefix+".prompt", err.Error())
		}
		if len(call.Fields) == 0 {
			add(callPrefix+".fields", "at least one field is required")
			continue
		}
		fields, err := catalog.Expand(call.Fields)
		if err != nil {
			add(callPrefix+".fields", err.Error())
			continue
		}
		if _, err := parse.New(fields); err != nil {
			add(callPrefix+".fields", err.Error())
			continue
		}
		for _, field := range fields {
			if _, dup := declared[field.Name]; dup {
				add(callPrefix+".fields", fmt.Sprintf("field %q is already extracted by another call", field.Name))
			}
			declared[field.Name] = field
		}
	}

	if task.AccuracyField == "" {
		return
	}
	field, ok := declared[task.AccuracyField]
	switch {
	case !ok:
		add(prefix+".accuracy_field", fmt.Sprintf("field %q is not extracted by any call", task.AccuracyField))
	case field.Kind.Numeric():
		add(prefix+".accuracy_field", fmt.Sprintf("field %q is numeric", task.AccuracyField))
	}
}
