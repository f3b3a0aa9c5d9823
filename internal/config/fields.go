package config

import (
	"fmt"
	"strings"

	"emoeval/internal/parse"
	"emoeval/internal/spec"
)

// FieldCatalog holds every field a call may reference: built-in presets
// overlaid with the config's custom definitions.
type FieldCatalog struct {
	fields map[string]parse.FieldSpec
}

// NewFieldCatalog builds the catalog for cfg.
func NewFieldCatalog(cfg spec.Config) FieldCatalog {
	catalog := FieldCatalog{fields: map[string]parse.FieldSpec{}}
	for _, name := range parse.PresetNames() {
		if preset, ok := parse.Preset(name); ok {
			catalog.fields[name] = preset
		}
	}
	for _, custom := range cfg.Fields {
		name := strings.TrimSpace(custom.Name)
		if name == "" {
			continue
		}
		base, ok := catalog.fields[name]
		if !ok {
			base = parse.FieldSpec{Name: name}
		}
		catalog.fields[name] = overlayField(base, custom)
	}
	return catalog
}

func overlayField(base parse.FieldSpec, custom spec.FieldConfig) parse.FieldSpec {
	if custom.Kind != "" {
		base.Kind = parse.Kind(strings.ToLower(strings.TrimSpace(custom.Kind)))
	}
	if len(custom.Labels) > 0 {
		base.Labels = append([]string(nil), custom.Labels...)
	}
	if len(custom.Vocabulary) > 0 {
		base.Vocabulary = append([]string(nil), custom.Vocabulary...)
	}
	if len(custom.Levels) > 0 {
		levels := make([]parse.Level, 0, len(custom.Levels))
		for _, level := range custom.Levels {
			levels = append(levels, parse.Level{Name: level.Name, Aliases: append([]string(nil), level.Aliases...)})
		}
		base.Levels = levels
	}
	if custom.Precision > 0 {
		base.Precision = custom.Precision
	}
	if custom.BinWidth > 0 {
		base.BinWidth = custom.BinWidth
	}
	return base
}

// Lookup returns a field by name.
func (c FieldCatalog) Lookup(name string) (parse.FieldSpec, bool) {
	field, ok := c.fields[name]
	return field, ok
}

// Expand resolves field and group names into ordered field declarations.
func (c FieldCatalog) Expand(names []string) ([]parse.FieldSpec, error) {
	var out []parse.FieldSpec
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if field, ok := c.fields[name]; ok {
			out = append(out, field)
			continue
		}
		members, ok := parse.PresetGroup(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q", name)
		}
		for _, member := range members {
			field, ok := c.fields[member]
			if !ok {
				return nil, fmt.Errorf("unknown field %q in group %q", member, name)
			}
			out = append(out, field)
		}
	}
	return out, nil
}

// TaskFields returns the fields of every call of a task, in call order.
func (c FieldCatalog) TaskFields(task spec.TaskConfig) ([]parse.FieldSpec, error) {
	var out []parse.FieldSpec
	for _, call := range task.Calls {
		fields, err := c.Expand(call.Fields)
		if err != nil {
			return nil, fmt.Errorf("call %q: %w", call.ID, err)
		}
		out = append(out, fields...)
	}
	return out, nil
}
