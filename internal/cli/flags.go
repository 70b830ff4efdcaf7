// Package cli provides flag binding and validation for the appforge CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/appforge/appforge/internal/config"
)

// BindFlags registers all CLI flags on the given cobra command.
// The flags directly modify fields in the provided config pointer.
// Call ValidateFlags after parsing to check flag combinations.
func BindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	// Inference backend
	flags.StringVar(&cfg.OllamaURL, "ollama-url", cfg.OllamaURL, "Ollama server base URL")
	flags.StringVar(&cfg.Model, "model", cfg.Model, "Model to use for all pipeline stages")
	flags.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature")
	flags.IntVar(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, "Max tokens per completion")

	// Scaffolding
	flags.StringVar(&cfg.Template, "template", cfg.Template, "Project template name")
	flags.StringVar(&cfg.Language, "language", cfg.Language, "Source language: kotlin or java")
	flags.StringVar(&cfg.ProjectName, "project-name", "", "Override the planner's project name")
	flags.IntVar(&cfg.MinSDK, "min-sdk", cfg.MinSDK, "Android minSdk")
	flags.IntVar(&cfg.TargetSDK, "target-sdk", cfg.TargetSDK, "Android targetSdk")
	flags.IntVar(&cfg.CompileSDK, "compile-sdk", cfg.CompileSDK, "Android compileSdk")

	// Pipeline bounds
	flags.IntVar(&cfg.MaxDebugIterations, "max-debug-iterations", cfg.MaxDebugIterations, "Max review/debug loop iterations")
	flags.IntVar(&cfg.MaxInferenceRetries, "max-inference-retries", cfg.MaxInferenceRetries, "Max retries per inference call")

	// Build
	flags.IntVar(&cfg.BuildTimeoutSeconds, "build-timeout", cfg.BuildTimeoutSeconds, "Seconds before a gradle invocation is killed")
	flags.IntVar(&cfg.MaxBuildWorkers, "max-build-workers", cfg.MaxBuildWorkers, "Concurrent build limit (0 = number of CPUs)")
	flags.BoolVar(&cfg.GradleSync, "gradle-sync", cfg.GradleSync, "Resolve dependencies before assembling")
	flags.BoolVar(&cfg.SkipBuild, "skip-build", false, "Generate and scaffold only, no gradle build")
	flags.BoolVar(&cfg.SkipProvision, "skip-provision", false, "Assume the toolchain is already provisioned")

	// Toolchain
	flags.BoolVar(&cfg.AcceptLicenses, "accept-licenses", false, "Accept Android SDK licenses during provisioning")
	flags.BoolVar(&cfg.PreferSystemTools, "prefer-system-tools", false, "Reuse suitable JDK/Gradle installs from PATH")

	// Review policy
	flags.BoolVar(&cfg.DefectHeuristic, "defect-heuristic", cfg.DefectHeuristic, "Scan reviews lacking a DEFECTS marker for defect keywords")

	// Directories
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Root directory for generated projects")
	flags.StringVar(&cfg.ToolsDir, "tools-dir", cfg.ToolsDir, "Root directory for the managed toolchain")
	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file")

	// Notifications
	flags.StringVar(&cfg.NotifyWebhook, "notify-webhook", cfg.NotifyWebhook, "Webhook URL for completion notifications")
	flags.StringVar(&cfg.NotifyChannel, "notify-channel", cfg.NotifyChannel, "Notification channel")
	flags.StringVar(&cfg.NotifyChatID, "notify-chat-id", cfg.NotifyChatID, "Recipient chat ID")

	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging")
}

// ValidateFlags checks for invalid flag combinations after parsing.
// Must be called after cmd.Execute() or cmd.ParseFlags().
func ValidateFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return fmt.Errorf("--config: %w", err)
		}
	}

	if cfg.Language != "kotlin" && cfg.Language != "java" {
		return fmt.Errorf("--language must be 'kotlin' or 'java', got: %s", cfg.Language)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("--temperature must be in [0, 2], got: %g", cfg.Temperature)
	}
	if cfg.MaxDebugIterations < 0 {
		return fmt.Errorf("--max-debug-iterations must be >= 0, got: %d", cfg.MaxDebugIterations)
	}
	if cfg.MinSDK > cfg.TargetSDK || cfg.TargetSDK > cfg.CompileSDK {
		return fmt.Errorf("sdk levels must satisfy min <= target <= compile, got %d/%d/%d",
			cfg.MinSDK, cfg.TargetSDK, cfg.CompileSDK)
	}
	return nil
}

// BuildCLIOverrides maps flags the user explicitly set to config variable
// names, so CLI values win over every config file layer.
func BuildCLIOverrides(cmd *cobra.Command, cfg *config.Config) map[string]string {
	overrides := make(map[string]string)
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			overrides[key] = value
		}
	}

	set("ollama-url", "OLLAMA_URL", cfg.OllamaURL)
	set("model", "MODEL", cfg.Model)
	set("temperature", "TEMPERATURE", fmt.Sprintf("%g", cfg.Temperature))
	set("max-tokens", "MAX_TOKENS", fmt.Sprintf("%d", cfg.MaxTokens))
	set("template", "TEMPLATE", cfg.Template)
	set("language", "LANGUAGE", cfg.Language)
	set("min-sdk", "MIN_SDK", fmt.Sprintf("%d", cfg.MinSDK))
	set("target-sdk", "TARGET_SDK", fmt.Sprintf("%d", cfg.TargetSDK))
	set("compile-sdk", "COMPILE_SDK", fmt.Sprintf("%d", cfg.CompileSDK))
	set("max-debug-iterations", "MAX_DEBUG_ITERATIONS", fmt.Sprintf("%d", cfg.MaxDebugIterations))
	set("max-inference-retries", "MAX_INFERENCE_RETRIES", fmt.Sprintf("%d", cfg.MaxInferenceRetries))
	set("build-timeout", "BUILD_TIMEOUT_SECONDS", fmt.Sprintf("%d", cfg.BuildTimeoutSeconds))
	set("max-build-workers", "MAX_BUILD_WORKERS", fmt.Sprintf("%d", cfg.MaxBuildWorkers))
	set("gradle-sync", "GRADLE_SYNC", fmt.Sprintf("%t", cfg.GradleSync))
	set("defect-heuristic", "DEFECT_HEURISTIC", fmt.Sprintf("%t", cfg.DefectHeuristic))
	set("output-dir", "OUTPUT_DIR", cfg.OutputDir)
	set("tools-dir", "TOOLS_DIR", cfg.ToolsDir)
	set("notify-webhook", "NOTIFY_WEBHOOK", cfg.NotifyWebhook)
	set("notify-channel", "NOTIFY_CHANNEL", cfg.NotifyChannel)
	set("notify-chat-id", "NOTIFY_CHAT_ID", cfg.NotifyChatID)
	set("verbose", "VERBOSE", fmt.Sprintf("%t", cfg.Verbose))

	return overrides
}
