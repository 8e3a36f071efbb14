package config

import (
	"bytes"
	"fmt"
	"io"

	goyaml "github.com/go-yaml/yaml"
	"github.com/goccy/go-yaml"
	"github.com/xaionaro-go/datacounter"
)

var _ io.WriterTo = (*Config)(nil)
var _ yaml.BytesMarshaler = (*Config)(nil)

func (cfg Config) WriteTo(
	w io.Writer,
) (int64, error) {
	b, err := cfg.MarshalYAML()
	if err != nil {
		return 0, err
	}
	counter := datacounter.NewWriterCounter(w)
	if _, err := io.Copy(counter, bytes.NewReader(b)); err != nil {
		return int64(counter.Count()), fmt.Errorf("unable to write: %w", err)
	}
	return int64(counter.Count()), nil
}

func (cfg Config) MarshalYAML() ([]byte, error) {
	b, err := yaml.Marshal((config)(cfg))
	if err != nil {
		return nil, fmt.Errorf("unable to serialize data %#+v: %w", cfg, err)
	}

	// goccy maps the structures, go-yaml gives the stable indentation
	m := yaml.MapSlice{}
	if err := yaml.UnmarshalWithOptions(b, &m, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("unable to unserialize data %#+v: %w", cfg, err)
	}
	b, err = goyaml.Marshal(toGoYAML(m))
	if err != nil {
		return nil, fmt.Errorf("unable to re-serialize data %#+v: %w", cfg, err)
	}
	return b, nil
}

// toGoYAML keeps the key order of the document.
func toGoYAML(v any) any {
	switch v := v.(type) {
	case yaml.MapSlice:
		result := make(goyaml.MapSlice, 0, len(v))
		for _, item := range v {
			result = append(result, goyaml.MapItem{Key: item.Key, Value: toGoYAML(item.Value)})
		}
		return result
	case []any:
		result := make([]any, 0, len(v))
		for _, item := range v {
			result = append(result, toGoYAML(item))
		}
		return result
	default:
		return v
	}
}
