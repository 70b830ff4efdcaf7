package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// whitelistSet is a precomputed lookup table for fast membership checks.
var whitelistSet map[string]bool

func init() {
	whitelistSet = make(map[string]bool, len(WhitelistedVars))
	for _, v := range WhitelistedVars {
		whitelistSet[v] = true
	}
}

// LoadFile parses a KEY=VALUE config file at the given path.
//
// Rules:
//   - Empty lines and lines starting with # are skipped.
//   - Lines without an = sign are skipped.
//   - Leading and trailing whitespace is trimmed from key and value.
//   - Keys not present in WhitelistedVars are silently ignored.
func LoadFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])

		if !whitelistSet[key] {
			continue
		}
		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return result, nil
}

// LoadWithPrecedence assembles a Config by merging sources in order of
// increasing priority:
//
//  1. Built-in defaults
//  2. Global config file (globalPath)
//  3. Project config file (projectPath)
//  4. Explicit config file (explicitPath)
//  5. CLI overrides (cliOverrides map)
//
// Empty paths are skipped. A missing global or project file is not an error;
// an explicit file must exist.
func LoadWithPrecedence(globalPath, projectPath, explicitPath string, cliOverrides map[string]string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, layer := range []struct {
		path     string
		required bool
		label    string
	}{
		{globalPath, false, "global config"},
		{projectPath, false, "project config"},
		{explicitPath, true, "explicit config"},
	} {
		if layer.path == "" {
			continue
		}
		m, err := LoadFile(layer.path)
		if err != nil {
			if !layer.required && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", layer.label, err)
		}
		ApplyMapToConfig(cfg, m)
	}

	if len(cliOverrides) > 0 {
		ApplyMapToConfig(cfg, cliOverrides)
	}
	return cfg, nil
}

// ApplyMapToConfig sets fields on cfg from the key-value pairs in m.
// Keys use the WhitelistedVars naming convention. Unknown keys are silently
// ignored, as are numeric values that fail to parse (the previous value is
// preserved).
func ApplyMapToConfig(cfg *Config, m map[string]string) {
	for key, value := range m {
		switch key {
		case "OLLAMA_URL":
			cfg.OllamaURL = value
		case "MODEL":
			cfg.Model = value
		case "TEMPERATURE":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.Temperature = v
			}
		case "MAX_TOKENS":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxTokens = v
			}
		case "TEMPLATE":
			cfg.Template = value
		case "LANGUAGE":
			cfg.Language = value
		case "MIN_SDK":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MinSDK = v
			}
		case "TARGET_SDK":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.TargetSDK = v
			}
		case "COMPILE_SDK":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.CompileSDK = v
			}
		case "MAX_DEBUG_ITERATIONS":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxDebugIterations = v
			}
		case "MAX_INFERENCE_RETRIES":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxInferenceRetries = v
			}
		case "BUILD_TIMEOUT_SECONDS":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.BuildTimeoutSeconds = v
			}
		case "MAX_BUILD_WORKERS":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxBuildWorkers = v
			}
		case "GRADLE_SYNC":
			cfg.GradleSync = parseBool(value)
		case "DEFECT_HEURISTIC":
			cfg.DefectHeuristic = parseBool(value)
		case "OUTPUT_DIR":
			cfg.OutputDir = value
		case "TOOLS_DIR":
			cfg.ToolsDir = value
		case "NOTIFY_WEBHOOK":
			cfg.NotifyWebhook = value
		case "NOTIFY_CHANNEL":
			cfg.NotifyChannel = value
		case "NOTIFY_CHAT_ID":
			cfg.NotifyChatID = value
		case "VERBOSE":
			cfg.Verbose = parseBool(value)
		}
	}
}

// parseBool interprets common boolean representations.
// "true", "1", "yes" (case-insensitive) return true; everything else false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
