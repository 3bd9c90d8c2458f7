package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultSection is the table holding values shared by every plugin.
const DefaultSection = "DEFAULT"

// ErrKeyNotFound is matched (via errors.Is) by every *KeyNotFoundError.
var ErrKeyNotFound = errors.New("config key not found")

// KeyNotFoundError reports a key missing from both a plugin section and the
// DEFAULT section. It signals a plugin bug, not a user mistake.
type KeyNotFoundError struct {
	Section string
	Key     string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s is not a valid option (section %q)", e.Key, e.Section)
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// Config is the loaded configuration file: one DEFAULT map plus one override
// map per named section. It is never mutated after construction.
type Config struct {
	defaults map[string]string
	sections map[string]map[string]string
	core     Core
}

// Load reads path as TOML, or as YAML when the extension is .yaml/.yml, and
// applies CSBOT_* environment overrides to the core keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing yaml config %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing toml config %s: %w", path, err)
		}
	}

	return FromMap(raw)
}

// FromMap builds a Config from a decoded document. Tables become sections,
// nested tables become dotted section names, and top-level scalars belong to
// DEFAULT.
func FromMap(raw map[string]any) (*Config, error) {
	defaults := make(map[string]string)
	sections := make(map[string]map[string]string)

	for key, value := range raw {
		table, isTable := value.(map[string]any)
		switch {
		case key == DefaultSection:
			if !isTable {
				return nil, fmt.Errorf("%s must be a table, got %T", DefaultSection, value)
			}
			for k, v := range table {
				if _, nested := v.(map[string]any); nested {
					return nil, fmt.Errorf("%s.%s: nested tables are not allowed in %s", DefaultSection, k, DefaultSection)
				}
				defaults[k] = stringify(v)
			}
		case isTable:
			flattenSection(sections, key, table)
		default:
			defaults[key] = stringify(value)
		}
	}

	return New(defaults, sections)
}

// New builds a Config from already-stringified maps, filling in built-in
// defaults and environment overrides for the core keys.
func New(defaults map[string]string, sections map[string]map[string]string) (*Config, error) {
	merged := builtinDefaults()
	maps.Copy(merged, defaults)

	core, err := parseCore(merged)
	if err != nil {
		return nil, err
	}
	if err := core.applyEnv(); err != nil {
		return nil, err
	}
	core.store(merged)

	c := &Config{
		defaults: merged,
		sections: make(map[string]map[string]string, len(sections)),
		core:     core,
	}
	for name, values := range sections {
		c.sections[name] = maps.Clone(values)
	}
	return c, nil
}

func flattenSection(sections map[string]map[string]string, name string, table map[string]any) {
	// A table holding only sub-tables (TOML's [a.b] header) is not a section itself.
	if len(table) == 0 {
		if _, ok := sections[name]; !ok {
			sections[name] = make(map[string]string)
		}
		return
	}
	for k, v := range table {
		if nested, ok := v.(map[string]any); ok {
			flattenSection(sections, name+"."+k, nested)
			continue
		}
		values, ok := sections[name]
		if !ok {
			values = make(map[string]string)
			sections[name] = values
		}
		values[k] = stringify(v)
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(val)
	}
}

// Get resolves key for section: the section's own value first, then DEFAULT.
// There is no further fallback.
func (c *Config) Get(section, key string) (string, error) {
	if values, ok := c.sections[section]; ok {
		if v, ok := values[key]; ok {
			return v, nil
		}
	}
	if v, ok := c.defaults[key]; ok {
		return v, nil
	}
	return "", &KeyNotFoundError{Section: section, Key: key}
}

// Sections returns the names of all non-default sections, sorted.
func (c *Config) Sections() []string {
	return slices.Sorted(maps.Keys(c.sections))
}

// Core returns the typed view of the DEFAULT keys the bot itself uses.
func (c *Config) Core() Core {
	core := c.core
	core.Channels = slices.Clone(c.core.Channels)
	core.Plugins = slices.Clone(c.core.Plugins)
	return core
}

// Section returns a lookup view scoped to one plugin.
func (c *Config) Section(name string) Section {
	return Section{name: name, cfg: c}
}

// Section is a read-only, plugin-scoped view of a Config.
type Section struct {
	name string
	cfg  *Config
}

func (s Section) Name() string {
	return s.name
}

func (s Section) Get(key string) (string, error) {
	return s.cfg.Get(s.name, key)
}

// GetOr returns fallback only when key is absent from both levels.
func (s Section) GetOr(key, fallback string) string {
	v, err := s.Get(key)
	if err != nil {
		return fallback
	}
	return v
}
