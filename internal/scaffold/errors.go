package scaffold

import "fmt"

// TemplateError reports a defective or incomplete template: unknown name,
// malformed manifest, or unresolved placeholders after rendering.
type TemplateError struct {
	Template string
	Path     string
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("template %q: %s: %v", e.Template, e.Path, e.Err)
	}
	return fmt.Sprintf("template %q: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// FileSystemError reports a failed write while materializing the project
// tree.
type FileSystemError struct {
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("scaffold %s: %v", e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}
