// Package yaml loads filtering settings from YAML configuration files.
package yaml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/fwojciec/elemsel"
	yamlv3 "gopkg.in/yaml.v3"
)

// LoadSettings reads the settings stored in the YAML file at path.
// Returns ENOTFOUND if the file does not exist.
func LoadSettings(path string) (elemsel.Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return elemsel.Settings{}, elemsel.Errorf(elemsel.ENOTFOUND, "config file %q not found", path)
	} else if err != nil {
		return elemsel.Settings{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML configuration into Settings.
//
// Keys may be written dotted (parser.html.selector.blacklist: ...) or
// nested (parser: {html: {selector: {blacklist: ...}}}). A sequence value
// is joined into a comma-separated list. Unknown keys are ignored.
// Malformed YAML returns EINVALID.
func ParseSettings(data []byte) (elemsel.Settings, error) {
	var raw map[string]any
	if err := yamlv3.Unmarshal(data, &raw); err != nil {
		return elemsel.Settings{}, elemsel.Errorf(elemsel.EINVALID, "invalid config: %v", err)
	}

	flat := make(map[string]string)
	if err := flatten("", raw, flat); err != nil {
		return elemsel.Settings{}, err
	}
	return elemsel.SettingsFromMap(flat), nil
}

// flatten joins nested keys with dots and stores scalar values in out.
func flatten(prefix string, m map[string]any, out map[string]string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch v := m[k].(type) {
		case map[string]any:
			if err := flatten(key, v, out); err != nil {
				return err
			}
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				s, err := scalar(key, item)
				if err != nil {
					return err
				}
				items = append(items, s)
			}
			out[key] = strings.Join(items, ", ")
		default:
			s, err := scalar(key, v)
			if err != nil {
				return err
			}
			out[key] = s
		}
	}
	return nil
}

func scalar(key string, v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, int, float64:
		return fmt.Sprint(v), nil
	default:
		return "", elemsel.Errorf(elemsel.EINVALID, "config key %q: unsupported value of type %T", key, v)
	}
}
