package core

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/arnavsurve/browser-agent/pkg/types"
	"gopkg.in/yaml.v3"
)

// VarContext holds resolved variables from a varfile.
type VarContext map[string]string

// varRegex matches {{ varName }} and {{ env.NAME }} placeholders.
var varRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9\._-]+)\s*\}\}`)

var envValueRegex = regexp.MustCompile(`^\s*\{\{\s*env\.([A-Za-z0-9_]+)\s*}}\s*$`)

const envPrefix = "env."

// ResolveVarfile loads a YAML varfile and resolves values of the form
// {{ env.NAME }} from the environment. Missing environment variables resolve
// to the empty string and are logged.
func ResolveVarfile(path string, logger types.Logger) (VarContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading varfile %q: %w", path, err)
	}

	var rawVars map[string]string
	if err := yaml.Unmarshal(data, &rawVars); err != nil {
		return nil, fmt.Errorf("parsing varfile YAML from %q: %w", path, err)
	}

	resolvedCtx := make(VarContext, len(rawVars))
	for key, val := range rawVars {
		match := envValueRegex.FindStringSubmatch(val)
		if match == nil {
			resolvedCtx[key] = val
			continue
		}
		envVal, exists := os.LookupEnv(match[1])
		if !exists && logger != nil {
			logger.Warn().Str("env", match[1]).Str("key", key).Msg("Environment variable not set for varfile key")
		}
		resolvedCtx[key] = envVal
	}
	return resolvedCtx, nil
}

// ResolveStringWithContext substitutes every placeholder in input. Unknown
// names are an error.
func ResolveStringWithContext(input string, globals VarContext) (string, error) {
	var firstErr error
	output := varRegex.ReplaceAllStringFunc(input, func(match string) string {
		if firstErr != nil {
			return match
		}

		key := varRegex.FindStringSubmatch(match)[1]
		val, found := FindValueInContext(key, globals)
		if !found {
			firstErr = fmt.Errorf("undefined variable: %s", key)
			return match
		}
		return val
	})

	if firstErr != nil {
		return "", firstErr
	}
	return output, nil
}

// FindValueInContext looks key up in the environment when prefixed with env.,
// otherwise in globals.
func FindValueInContext(key string, globals VarContext) (string, bool) {
	if name, ok := strings.CutPrefix(key, envPrefix); ok {
		return os.LookupEnv(name)
	}
	val, ok := globals[key]
	return val, ok
}

// ResolveValue recursively resolves strings inside maps and slices.
func ResolveValue(value any, resolver func(string) (string, error)) (any, error) {
	switch v := value.(type) {
	case string:
		return resolver(v)
	case map[string]any:
		resolvedMap := make(map[string]any, len(v))
		for key, val := range v {
			resolvedVal, err := ResolveValue(val, resolver)
			if err != nil {
				return nil, fmt.Errorf("resolving map key %q: %w", key, err)
			}
			resolvedMap[key] = resolvedVal
		}
		return resolvedMap, nil
	case []any:
		resolvedSlice := make([]any, len(v))
		for i, item := range v {
			resolvedItem, err := ResolveValue(item, resolver)
			if err != nil {
				return nil, fmt.Errorf("resolving slice item at index %d: %w", i, err)
			}
			resolvedSlice[i] = resolvedItem
		}
		return resolvedSlice, nil
	default:
		return v, nil
	}
}

// InjectVarsIntoScript returns a copy of script with every string argument
// resolved. Undefined variables are reported as ValidationErrors against the
// step and argument that reference them.
func InjectVarsIntoScript(script types.Script, globals VarContext) (types.Script, error) {
	resolved := script.Clone()
	resolver := func(input string) (string, error) {
		return ResolveStringWithContext(input, globals)
	}

	var errs ValidationErrors
	for i := range resolved {
		step := &resolved[i]
		keys := make([]string, 0, len(step.Args))
		for key := range step.Args {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			val, err := ResolveValue(step.Args[key], resolver)
			if err != nil {
				errs = append(errs, &ValidationError{Index: i + 1, Name: step.Name, Field: key, Reason: err.Error()})
				continue
			}
			step.Args[key] = val
		}
	}

	if err := errs.errOrNil(); err != nil {
		return nil, err
	}
	return resolved, nil
}
