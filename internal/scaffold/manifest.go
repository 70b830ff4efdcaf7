package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const manifestFileName = "template.yaml"

// manifest is the on-disk shape of an external template. Files either carry
// inline content or reference a source file relative to the template
// directory.
type manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Files       []struct {
		Path    string `yaml:"path"`
		Content string `yaml:"content"`
		Src     string `yaml:"src"`
	} `yaml:"files"`
}

// LoadTemplateDir reads an external template from dir and registers it.
// The directory must contain a template.yaml manifest.
func (r *Registry) LoadTemplateDir(dir string) (*Template, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return nil, &TemplateError{Template: dir, Err: fmt.Errorf("read manifest: %w", err)}
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &TemplateError{Template: dir, Err: fmt.Errorf("parse manifest: %w", err)}
	}
	if m.Name == "" {
		return nil, &TemplateError{Template: dir, Err: fmt.Errorf("manifest has no name")}
	}
	if len(m.Files) == 0 {
		return nil, &TemplateError{Template: m.Name, Err: fmt.Errorf("manifest lists no files")}
	}

	t := &Template{Name: m.Name, Description: m.Description}
	for _, f := range m.Files {
		if f.Path == "" {
			return nil, &TemplateError{Template: m.Name, Err: fmt.Errorf("file entry missing path")}
		}
		content := f.Content
		if f.Src != "" {
			raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Src)))
			if err != nil {
				return nil, &TemplateError{Template: m.Name, Path: f.Path, Err: fmt.Errorf("read source: %w", err)}
			}
			content = string(raw)
		}
		t.Files = append(t.Files, File{Path: f.Path, Content: content})
	}

	r.Register(t)
	return t, nil
}

// LoadTemplatesFrom scans root for subdirectories containing manifests and
// registers each one. A missing root is not an error.
func (r *Registry) LoadTemplatesFrom(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scan templates: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, manifestFileName)); err != nil {
			continue
		}
		if _, err := r.LoadTemplateDir(dir); err != nil {
			return err
		}
	}
	return nil
}
