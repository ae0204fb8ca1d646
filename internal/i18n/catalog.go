// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package i18n

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var builtin embed.FS

// Catalog maps dotted keys ("errors.DEFAULT") to message templates.
type Catalog map[string]string

// ParseCatalog decodes a YAML catalog. Nested mappings are flattened into
// dotted keys; scalar leaves become templates.
func ParseCatalog(data []byte) (Catalog, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	cat := make(Catalog)
	flatten("", raw, cat)
	return cat, nil
}

func flatten(prefix string, node map[string]interface{}, out Catalog) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Keys returns the catalog keys in sorted order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// merge copies entries of other over c.
func (c Catalog) merge(other Catalog) {
	for k, v := range other {
		c[k] = v
	}
}

// loadBuiltin returns the embedded catalogs keyed by locale.
func loadBuiltin() (map[string]Catalog, error) {
	entries, err := builtin.ReadDir("catalogs")
	if err != nil {
		return nil, err
	}
	out := make(map[string]Catalog, len(entries))
	for _, e := range entries {
		data, err := builtin.ReadFile("catalogs/" + e.Name())
		if err != nil {
			return nil, err
		}
		cat, err := ParseCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out[localeFromFile(e.Name())] = cat
	}
	return out, nil
}

// loadDir reads every <locale>.yaml or <locale>.yml file in dir.
func loadDir(dir string) (map[string]Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}
	out := make(map[string]Catalog)
	for _, e := range entries {
		if e.IsDir() || !IsCatalogFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		cat, err := ParseCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out[localeFromFile(e.Name())] = cat
	}
	return out, nil
}

// IsCatalogFile reports whether name looks like a catalog file.
func IsCatalogFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func localeFromFile(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}
