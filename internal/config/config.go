// Package config reads process settings from an mdm.conf properties file and
// XSDMETA_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	// FileName is the settings file looked up when no path is given.
	FileName = "mdm.conf"
	// EnvPrefix prefixes environment overrides: system.cluster is read from
	// XSDMETA_SYSTEM_CLUSTER.
	EnvPrefix = "XSDMETA"

	KeyCluster             = "system.cluster"
	KeyStrict              = "metadata.validation.strict"
	KeyVerbose             = "metadata.log.verbose"
	KeyDisabledAnnotations = "metadata.annotations.disabled"
	KeyMaxDepth            = "metadata.xml.max_depth"
	KeyMaxAttrs            = "metadata.xml.max_attrs"
)

// Settings is the typed view of the known keys.
type Settings struct {
	DisabledProcessors []string
	MaxDepth           int
	MaxAttrs           int
	Cluster            bool
	Strict             bool
	Verbose            bool
}

// Provider answers setting lookups. Values come from environment variables
// first, then the settings file, then defaults.
type Provider struct {
	v    *viper.Viper
	file string
}

// Load reads the settings file at path, FileName when empty. A missing file
// is an error unless ignoreIfNotFound is set.
func Load(path string, ignoreIfNotFound bool) (*Provider, error) {
	if path == "" {
		path = FileName
	}
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType(propertiesType)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if ignoreIfNotFound && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return &Provider{v: v}, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return &Provider{v: v, file: path}, nil
}

// Defaults returns a provider backed by defaults and the environment only.
func Defaults() *Provider {
	return &Provider{v: newViper()}
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.WithCodecRegistry(codecs()))
	v.SetDefault(KeyCluster, false)
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyDisabledAnnotations, "")
	v.SetDefault(KeyMaxDepth, 0)
	v.SetDefault(KeyMaxAttrs, 0)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// File returns the settings file that was read, empty when none was.
func (p *Provider) File() string { return p.file }

// String returns the raw value of key.
func (p *Provider) String(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

// Bool returns key as a boolean.
func (p *Provider) Bool(key string) (bool, error) {
	b, err := cast.ToBoolE(p.value(key))
	if err != nil {
		return false, fmt.Errorf("setting %s: %w", key, err)
	}
	return b, nil
}

// Int returns key as an integer.
func (p *Provider) Int(key string) (int, error) {
	n, err := cast.ToIntE(p.value(key))
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", key, err)
	}
	return n, nil
}

// List returns the comma separated values of key, blanks dropped.
func (p *Provider) List(key string) []string {
	var out []string
	for item := range strings.SplitSeq(p.String(key), ",") {
		if item = strings.TrimSpace(item); item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

// Set overrides key, for instance from a command line flag.
func (p *Provider) Set(key string, value any) {
	p.v.Set(key, value)
}

// value returns the raw value of key, nil for blank strings.
func (p *Provider) value(key string) any {
	raw := p.v.Get(key)
	if s, ok := raw.(string); ok {
		if s = strings.TrimSpace(s); s == "" {
			return nil
		}
		return s
	}
	return raw
}

// Settings decodes every known key.
func (p *Provider) Settings() (Settings, error) {
	var s Settings
	var err error
	if s.Cluster, err = p.Bool(KeyCluster); err != nil {
		return Settings{}, err
	}
	if s.Strict, err = p.Bool(KeyStrict); err != nil {
		return Settings{}, err
	}
	if s.Verbose, err = p.Bool(KeyVerbose); err != nil {
		return Settings{}, err
	}
	if s.MaxDepth, err = p.Int(KeyMaxDepth); err != nil {
		return Settings{}, err
	}
	if s.MaxAttrs, err = p.Int(KeyMaxAttrs); err != nil {
		return Settings{}, err
	}
	if s.MaxDepth < 0 || s.MaxAttrs < 0 {
		return Settings{}, fmt.Errorf("xml limits must be >= 0 (max_depth %d, max_attrs %d)", s.MaxDepth, s.MaxAttrs)
	}
	s.DisabledProcessors = p.List(KeyDisabledAnnotations)
	return s, nil
}
