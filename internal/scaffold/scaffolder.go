package scaffold

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/appforge/appforge/internal/event"
	"github.com/appforge/appforge/internal/parser"
)

// Params are the substitution values for one scaffold run.
type Params struct {
	AppName    string
	MinSDK     int
	TargetSDK  int
	CompileSDK int

	// MainSource is the generated activity source. When non-empty it
	// replaces the template's main activity body; the template content for
	// that file is discarded and a conflict event is emitted.
	MainSource string
}

// Scaffolder renders templates into project directories.
type Scaffolder struct {
	registry *Registry
	sink     event.Sink
}

// NewScaffolder creates a Scaffolder over a registry.
func NewScaffolder(registry *Registry, sink event.Sink) *Scaffolder {
	if sink == nil {
		sink = event.Discard
	}
	return &Scaffolder{registry: registry, sink: sink}
}

var placeholderPattern = regexp.MustCompile(`\{\{[A-Z_]+\}\}`)

// Generate renders the named template into projectDir and returns the list
// of written paths. Rendering is idempotent: an existing tree is overwritten
// with identical content.
func (s *Scaffolder) Generate(projectDir, templateName string, p Params) ([]string, error) {
	t, err := s.registry.Lookup(templateName)
	if err != nil {
		return nil, err
	}

	appName := parser.SanitizeProjectName(p.AppName)
	pkg := "com.generated." + parser.PackageSegment(appName)
	mainSource := strings.TrimSpace(p.MainSource)
	if mainSource == "" {
		mainSource = defaultMainSource(pkg)
	} else {
		mainSource = forcePackageHeader(mainSource, pkg)
	}

	subst := strings.NewReplacer(
		"{{"+PhAppName+"}}", appName,
		"{{"+PhPackage+"}}", pkg,
		"{{"+PhPackageDir+"}}", strings.ReplaceAll(pkg, ".", "/"),
		"{{"+PhMinSDK+"}}", strconv.Itoa(p.MinSDK),
		"{{"+PhTargetSDK+"}}", strconv.Itoa(p.TargetSDK),
		"{{"+PhCompileSDK+"}}", strconv.Itoa(p.CompileSDK),
	)

	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, &FileSystemError{Path: projectDir, Err: err}
	}

	var written []string
	for _, f := range t.Files {
		relPath := subst.Replace(f.Path)
		content := subst.Replace(f.Content)

		if strings.Contains(content, "{{"+PhMainSource+"}}") {
			if trimmed := strings.TrimSpace(strings.ReplaceAll(content, "{{"+PhMainSource+"}}", "")); trimmed != "" && p.MainSource != "" {
				s.sink.Emit(event.Progress(fmt.Sprintf(
					"template content for %s replaced by generated source", relPath)))
			}
			content = strings.ReplaceAll(content, "{{"+PhMainSource+"}}", mainSource)
		}

		if leftover := placeholderPattern.FindString(relPath + content); leftover != "" {
			return nil, &TemplateError{Template: t.Name, Path: relPath,
				Err: fmt.Errorf("unresolved placeholder %s", leftover)}
		}
		if !filepath.IsLocal(filepath.FromSlash(relPath)) {
			return nil, &TemplateError{Template: t.Name, Path: relPath,
				Err: fmt.Errorf("path escapes project directory")}
		}

		abs := filepath.Join(projectDir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, &FileSystemError{Path: abs, Err: err}
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			return nil, &FileSystemError{Path: abs, Err: err}
		}
		written = append(written, abs)
	}

	s.sink.Emit(event.Progress(fmt.Sprintf("scaffolded %d files from %s", len(written), t.Name)))
	return written, nil
}

// forcePackageHeader rewrites or prepends the package declaration so the
// generated source lands in the directory the manifest expects.
func forcePackageHeader(source, pkg string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "package ") {
			lines[i] = "package " + pkg
			return strings.Join(lines, "\n")
		}
		break
	}
	return "package " + pkg + "\n\n" + source
}

// PackageFor reports the applicationId a given app name scaffolds to.
func PackageFor(appName string) string {
	return "com.generated." + parser.PackageSegment(parser.SanitizeProjectName(appName))
}

// MainSourcePath reports where the main activity source lands relative to
// the project root, for callers that need to locate it after scaffolding.
func MainSourcePath(appName string) string {
	pkg := PackageFor(appName)
	return path.Join("app/src/main/java", strings.ReplaceAll(pkg, ".", "/"), "MainActivity.kt")
}
