package types

// ActionSpec is a single declarative instruction: the name of a registered
// action and its arguments.
type ActionSpec struct {
	Name string         `json:"name" yaml:"name"`
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// Script is an ordered list of actions. Declaration order is execution order.
type Script []ActionSpec

// Clone returns a deep copy of the script so callers can resolve variables
// without touching the parsed original.
func (s Script) Clone() Script {
	if s == nil {
		return nil
	}
	out := make(Script, len(s))
	for i, spec := range s {
		out[i] = ActionSpec{Name: spec.Name, Args: cloneMap(spec.Args)}
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneMap(tv)
	case []any:
		s := make([]any, len(tv))
		for i, item := range tv {
			s[i] = cloneValue(item)
		}
		return s
	default:
		return v
	}
}
