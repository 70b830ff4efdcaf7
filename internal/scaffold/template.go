// Package scaffold materializes Android project trees from named templates.
//
// A template is an ordered list of files with placeholder markers of the
// form {{NAME}}. Rendering is deterministic: the same template and
// parameters always produce a byte-identical tree, so re-scaffolding an
// existing project is a no-op overwrite.
package scaffold

import (
	"fmt"
	"sort"
	"sync"
)

// Placeholder names recognized in template files.
const (
	PhAppName    = "APP_NAME"
	PhPackage    = "PACKAGE"
	PhPackageDir = "PACKAGE_DIR"
	PhMinSDK     = "MIN_SDK"
	PhTargetSDK  = "TARGET_SDK"
	PhCompileSDK = "COMPILE_SDK"
	PhMainSource = "MAIN_SOURCE"
)

// File is one rendered file of a template. Path is relative to the project
// root and may itself contain placeholders.
type File struct {
	Path    string `yaml:"path"`
	Content string `yaml:"content"`
}

// Template is a named set of project files.
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Files       []File `yaml:"files"`
}

// Registry maps template names to templates. The built-in templates are
// registered at construction; external templates are added via Register.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry returns a registry seeded with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]*Template)}
	r.Register(androidBasic())
	return r
}

// Register adds or replaces a template by name.
func (r *Registry) Register(t *Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t
}

// Lookup returns the named template.
func (r *Registry) Lookup(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	if !ok {
		return nil, &TemplateError{Template: name, Err: fmt.Errorf("unknown template (have %v)", r.namesLocked())}
	}
	return t, nil
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
