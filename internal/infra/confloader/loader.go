package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix used when none is set.
const DefaultEnvPrefix = "PIXMESH_"

// EnvNestingSeparator separates sections in environment variable names.
// A single underscore stays part of the key name:
// PIXMESH_CANVAS__COOLDOWN_SECONDS sets canvas.cooldown_seconds.
const EnvNestingSeparator = "__"

// Layer names reported by Loader.Sources.
const (
	SourceFile      = "file"
	SourceEnv       = "env"
	SourceOverrides = "overrides"
)

// Loader merges configuration layers into a koanf tree and decodes the
// result into a struct.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	path      string
	overrides map[string]any
	sources   []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile adds a YAML file layer. An empty path adds nothing.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.path = path }
}

// WithOverrides adds a final layer, typically the explicitly set
// command-line flags. Keys are dotted paths or nested maps.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) { l.overrides = values }
}

// NewLoader creates a Loader. Nothing is read until Load.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load applies the file, environment and override layers in that order
// and decodes the merged tree into target. Fields with no key in any
// layer keep the value they had, so target should hold the defaults.
func (l *Loader) Load(target any) error {
	layers := []struct {
		name string
		skip bool
		load func() error
	}{
		{SourceFile, l.path == "", func() error { return l.LoadFile(l.path) }},
		{SourceEnv, false, l.LoadEnv},
		{SourceOverrides, len(l.overrides) == 0, func() error { return l.LoadMap(l.overrides) }},
	}

	for _, layer := range layers {
		if layer.skip {
			continue
		}
		if err := layer.load(); err != nil {
			return fmt.Errorf("config %s: %w", layer.name, err)
		}
		l.sources = append(l.sources, layer.name)
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LoadFile merges a YAML file into the tree.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges variables carrying the loader's prefix. Sections are
// joined by EnvNestingSeparator, so PIXMESH_SERVER__HTTP__ADDR sets
// server.http.addr.
func (l *Loader) LoadEnv() error {
	key := func(name string) string {
		name = strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
		return strings.ReplaceAll(name, EnvNestingSeparator, ".")
	}
	return l.k.Load(env.Provider(l.envPrefix, ".", key), nil)
}

// LoadMap merges an in-memory map into the tree.
func (l *Loader) LoadMap(values map[string]any) error {
	return l.k.Load(mapProvider(values), nil)
}

// Sources lists the layers applied by Load, lowest priority first.
func (l *Loader) Sources() []string {
	return append([]string(nil), l.sources...)
}

// String returns the merged value at a dotted key as a string.
func (l *Loader) String(key string) string {
	return l.k.String(key)
}

// Int returns the merged value at a dotted key as an int.
func (l *Loader) Int(key string) int {
	return l.k.Int(key)
}

// Keys lists every dotted key in the merged tree.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}
