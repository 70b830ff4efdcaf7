package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/appforge/internal/config"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.NewDefaultConfig()

	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, "android-basic", cfg.Template)
	assert.Equal(t, "kotlin", cfg.Language)
	assert.Equal(t, 24, cfg.MinSDK)
	assert.Equal(t, 34, cfg.TargetSDK)
	assert.Equal(t, 2, cfg.MaxDebugIterations)
	assert.Equal(t, 3, cfg.MaxInferenceRetries)
	assert.Equal(t, 1800, cfg.BuildTimeoutSeconds)
	assert.True(t, cfg.DefectHeuristic)
	assert.False(t, cfg.Verbose)
}

func TestLoadFileParsesWhitelistedKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "appforge.conf", `
# comment line
MODEL = llama3.2
MAX_DEBUG_ITERATIONS=4
TEMPERATURE=0.7

NOT_A_REAL_KEY=ignored
line without equals
`)

	m, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", m["MODEL"])
	assert.Equal(t, "4", m["MAX_DEBUG_ITERATIONS"])
	assert.Equal(t, "0.7", m["TEMPERATURE"])
	assert.NotContains(t, m, "NOT_A_REAL_KEY")
	assert.Len(t, m, 3)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	assert.Error(t, err)
}

func TestApplyMapToConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	config.ApplyMapToConfig(cfg, map[string]string{
		"MODEL":                 "codellama",
		"MIN_SDK":               "26",
		"GRADLE_SYNC":           "false",
		"DEFECT_HEURISTIC":      "no",
		"VERBOSE":               "yes",
		"BUILD_TIMEOUT_SECONDS": "not-a-number", // preserved default
	})

	assert.Equal(t, "codellama", cfg.Model)
	assert.Equal(t, 26, cfg.MinSDK)
	assert.False(t, cfg.GradleSync)
	assert.False(t, cfg.DefectHeuristic)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 1800, cfg.BuildTimeoutSeconds)
}

func TestLoadWithPrecedence(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global.conf", "MODEL=global-model\nMIN_SDK=21\n")
	project := writeConfig(t, dir, "project.conf", "MODEL=project-model\n")

	cfg, err := config.LoadWithPrecedence(global, project, "", map[string]string{
		"MIN_SDK": "28",
	})
	require.NoError(t, err)

	// Project overrides global; CLI overrides both.
	assert.Equal(t, "project-model", cfg.Model)
	assert.Equal(t, 28, cfg.MinSDK)
}

func TestLoadWithPrecedenceMissingGlobalIsNotError(t *testing.T) {
	cfg, err := config.LoadWithPrecedence(
		filepath.Join(t.TempDir(), "absent.conf"), "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "android-basic", cfg.Template)
}

func TestLoadWithPrecedenceMissingExplicitIsError(t *testing.T) {
	_, err := config.LoadWithPrecedence(
		"", "", filepath.Join(t.TempDir(), "absent.conf"), nil)
	assert.Error(t, err)
}
