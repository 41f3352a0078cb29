// Package yamlbackend implements backend.Backend over
// github.com/goccy/go-yaml for config-shaped documents.
//
// Scalar space: bool, int64, float64, string, time.Time for timestamp
// scalars, []byte for !!binary scalars; nil for Null.
package yamlbackend

import (
	"os"

	"github.com/goccy/go-yaml"
)

const Extension = "yaml"

type Backend struct{}

func New() *Backend { return &Backend{} }

func (*Backend) Name() string { return Extension }

func (*Backend) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, nil
	}
	return normalize(v), nil
}

func (*Backend) Save(path string, tree any) error {
	data, err := yaml.MarshalWithOptions(tree, yaml.Indent(2))
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// normalize maps goccy/go-yaml's map[any]any decoding into the
// map[string]any shape the node package expects.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			if ks, ok := k.(string); ok {
				out[ks] = normalize(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case uint64:
		return int64(x)
	case int:
		return int64(x)
	default:
		return v
	}
}
