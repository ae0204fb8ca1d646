// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

// TemplateContext holds the values available to path templates.
type TemplateContext struct {
	Home      string
	ConfigDir string
	Env       map[string]string
}

// Expander expands text/template actions in path settings, e.g.
// "{{ .ConfigDir }}/session.db" or "{{ env \"XDG_DATA_HOME\" }}/hangar".
type Expander struct {
	ctx     TemplateContext
	funcMap template.FuncMap
}

// NewExpander builds an expander for the given environment.
func NewExpander(getenv func(string) string) *Expander {
	ctx := TemplateContext{
		Home:      getenv("HOME"),
		ConfigDir: userConfigDir(getenv),
	}
	return &Expander{
		ctx: ctx,
		funcMap: template.FuncMap{
			"env":     getenv,
			"default": Default,
		},
	}
}

// Context returns the template context.
func (e *Expander) Context() TemplateContext {
	return e.ctx
}

// Expand expands a single value. Values without "{{" and a leading "~/"
// are handled without templates.
func (e *Expander) Expand(value string) (string, error) {
	if strings.HasPrefix(value, "~/") && e.ctx.Home != "" {
		value = filepath.Join(e.ctx.Home, value[2:])
	}
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("").Funcs(e.funcMap).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, e.ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExpandPaths expands every path setting of cfg in place.
func (e *Expander) ExpandPaths(cfg *Config) error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"session.store_path", &cfg.Session.StorePath},
		{"i18n.catalog_dir", &cfg.I18n.CatalogDir},
		{"logging.file", &cfg.Logging.File},
	}
	for _, f := range fields {
		if *f.ptr == "" || *f.ptr == MemoryStore {
			continue
		}
		expanded, err := e.Expand(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = expanded
	}
	return nil
}

// Default returns value, or defaultVal if value is empty.
func Default(defaultVal, value string) string {
	if value == "" {
		return defaultVal
	}
	return value
}
