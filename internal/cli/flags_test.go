package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/appforge/internal/config"
)

func newParsedCmd(t *testing.T, args ...string) (*cobra.Command, *config.Config) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd, cfg)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, cfg
}

func TestBindFlagsDefaults(t *testing.T) {
	_, cfg := newParsedCmd(t)

	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, "qwen2.5-coder", cfg.Model)
	assert.Equal(t, "android-basic", cfg.Template)
	assert.Equal(t, "kotlin", cfg.Language)
	assert.Equal(t, 2, cfg.MaxDebugIterations)
	assert.Equal(t, 3, cfg.MaxInferenceRetries)
	assert.Equal(t, 1800, cfg.BuildTimeoutSeconds)
	assert.True(t, cfg.GradleSync)
	assert.True(t, cfg.DefectHeuristic)
	assert.False(t, cfg.AcceptLicenses)
	assert.False(t, cfg.Verbose)
}

func TestBindFlagsOverrides(t *testing.T) {
	_, cfg := newParsedCmd(t,
		"--model", "llama3",
		"--max-debug-iterations", "5",
		"--skip-build",
		"--accept-licenses",
	)

	assert.Equal(t, "llama3", cfg.Model)
	assert.Equal(t, 5, cfg.MaxDebugIterations)
	assert.True(t, cfg.SkipBuild)
	assert.True(t, cfg.AcceptLicenses)
}

func TestValidateFlagsRejectsBadLanguage(t *testing.T) {
	cmd, cfg := newParsedCmd(t, "--language", "rust")
	err := ValidateFlags(cmd, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--language")
}

func TestValidateFlagsRejectsBadSDKOrder(t *testing.T) {
	cmd, cfg := newParsedCmd(t, "--min-sdk", "35", "--target-sdk", "34")
	err := ValidateFlags(cmd, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sdk levels")
}

func TestValidateFlagsRejectsMissingConfigFile(t *testing.T) {
	cmd, cfg := newParsedCmd(t, "--config", filepath.Join(t.TempDir(), "nope.conf"))
	err := ValidateFlags(cmd, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config")
}

func TestValidateFlagsAcceptsExistingConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appforge.conf")
	require.NoError(t, os.WriteFile(path, []byte("MODEL=llama3\n"), 0o644))

	cmd, cfg := newParsedCmd(t, "--config", path)
	assert.NoError(t, ValidateFlags(cmd, cfg))
}

func TestBuildCLIOverridesOnlyChangedFlags(t *testing.T) {
	cmd, cfg := newParsedCmd(t, "--model", "llama3", "--max-tokens", "4096")

	overrides := BuildCLIOverrides(cmd, cfg)
	assert.Equal(t, map[string]string{
		"MODEL":      "llama3",
		"MAX_TOKENS": "4096",
	}, overrides)
}

func TestBuildCLIOverridesEmptyWhenNothingSet(t *testing.T) {
	cmd, cfg := newParsedCmd(t)
	assert.Empty(t, BuildCLIOverrides(cmd, cfg))
}
