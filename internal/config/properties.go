package config

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

const propertiesType = "properties"

// propertiesCodec reads and writes key=value properties files for viper.
// Dotted keys become nested maps so system.cluster and a [system] table
// resolve the same way.
type propertiesCodec struct{}

func (propertiesCodec) Decode(b []byte, v map[string]any) error {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(b)
	if err != nil {
		return fmt.Errorf("decode properties: %w", err)
	}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		path := strings.Split(key, ".")
		m := v
		for _, k := range path[:len(path)-1] {
			next, ok := m[k].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[k] = next
			}
			m = next
		}
		m[strings.ToLower(path[len(path)-1])] = value
	}
	return nil
}

func (propertiesCodec) Encode(v map[string]any) ([]byte, error) {
	flat := make(map[string]string)
	flatten("", v, flat)
	p := properties.NewProperties()
	p.DisableExpansion = true
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		if _, _, err := p.Set(key, flat[key]); err != nil {
			return nil, fmt.Errorf("encode properties: %w", err)
		}
	}
	var buf bytes.Buffer
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	return buf.Bytes(), nil
}

func flatten(prefix string, v map[string]any, out map[string]string) {
	for k, val := range v {
		if prefix != "" {
			k = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			flatten(k, nested, out)
			continue
		}
		out[k] = fmt.Sprint(val)
	}
}

func codecs() viper.CodecRegistry {
	reg := viper.NewCodecRegistry()
	// Registering a fresh format name cannot fail.
	_ = reg.RegisterCodec(propertiesType, propertiesCodec{})
	return reg
}
