package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arnavsurve/browser-agent/pkg/types"
	"gopkg.in/yaml.v3"
)

// LoadScriptFromFile reads a script from disk. Files ending in .yml or .yaml
// are decoded as YAML, everything else as JSON.
func LoadScriptFromFile(path string) (types.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script file %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return ParseScriptYAML(data)
	default:
		return ParseScript(data)
	}
}

// ParseScript decodes a JSON array of {"name", "args"} objects. Structural
// problems are returned as ValidationErrors.
func ParseScript(data []byte) (types.Script, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, ValidationErrors{{Reason: fmt.Sprintf("malformed JSON: %v", err)}}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ValidationErrors{{Reason: "malformed JSON: unexpected data after the top-level array"}}
	}
	return scriptFromDocument(doc)
}

// ParseScriptYAML is ParseScript for the YAML encoding of the same document.
func ParseScriptYAML(data []byte) (types.Script, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ValidationErrors{{Reason: fmt.Sprintf("malformed YAML: %v", err)}}
	}
	return scriptFromDocument(doc)
}

func scriptFromDocument(doc any) (types.Script, error) {
	items, ok := doc.([]any)
	if !ok {
		return nil, ValidationErrors{{Reason: fmt.Sprintf("script must be an array of actions, got %s", kindOf(doc))}}
	}

	script := make(types.Script, 0, len(items))
	var errs ValidationErrors
	for i, item := range items {
		index := i + 1
		obj, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, &ValidationError{Index: index, Reason: fmt.Sprintf("action must be an object, got %s", kindOf(item))})
			continue
		}

		spec := types.ActionSpec{}
		name, ok := obj["name"].(string)
		switch {
		case obj["name"] == nil:
			errs = append(errs, &ValidationError{Index: index, Field: "name", Reason: "is required"})
		case !ok:
			errs = append(errs, &ValidationError{Index: index, Field: "name", Reason: fmt.Sprintf("must be a string, got %s", kindOf(obj["name"]))})
		default:
			spec.Name = name
		}

		if raw, present := obj["args"]; present && raw != nil {
			args, ok := raw.(map[string]any)
			if !ok {
				errs = append(errs, &ValidationError{Index: index, Name: spec.Name, Field: "args", Reason: fmt.Sprintf("must be an object, got %s", kindOf(raw))})
			}
			spec.Args = args
		}
		if spec.Args == nil {
			spec.Args = map[string]any{}
		}

		var extra []string
		for key := range obj {
			if key != "name" && key != "args" {
				extra = append(extra, key)
			}
		}
		sort.Strings(extra)
		for _, key := range extra {
			errs = append(errs, &ValidationError{Index: index, Name: spec.Name, Field: key, Reason: "unknown field"})
		}

		script = append(script, spec)
	}

	if err := errs.errOrNil(); err != nil {
		return nil, err
	}
	return script, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
