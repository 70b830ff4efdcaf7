// Package config defines the appforge configuration model and default values.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < global config file < project config file <
// explicit config file < CLI flag overrides.
package config

// WhitelistedVars lists every configuration variable name that may appear in
// config files. Variables not in this list are silently ignored during
// loading.
var WhitelistedVars = [21]string{
	"OLLAMA_URL",
	"MODEL",
	"TEMPERATURE",
	"MAX_TOKENS",
	"TEMPLATE",
	"LANGUAGE",
	"MIN_SDK",
	"TARGET_SDK",
	"COMPILE_SDK",
	"MAX_DEBUG_ITERATIONS",
	"MAX_INFERENCE_RETRIES",
	"BUILD_TIMEOUT_SECONDS",
	"MAX_BUILD_WORKERS",
	"GRADLE_SYNC",
	"DEFECT_HEURISTIC",
	"OUTPUT_DIR",
	"TOOLS_DIR",
	"NOTIFY_WEBHOOK",
	"NOTIFY_CHANNEL",
	"NOTIFY_CHAT_ID",
	"VERBOSE",
}

// Config holds every configuration field for the appforge CLI.
type Config struct {
	// Inference backend.
	OllamaURL   string
	Model       string
	Temperature float64
	MaxTokens   int

	// Scaffolding.
	Template   string
	Language   string
	MinSDK     int
	TargetSDK  int
	CompileSDK int

	// Pipeline bounds.
	MaxDebugIterations  int
	MaxInferenceRetries int

	// Build.
	BuildTimeoutSeconds int
	MaxBuildWorkers     int // 0 means GOMAXPROCS
	GradleSync          bool

	// Review policy.
	DefectHeuristic bool

	// Directories.
	OutputDir string
	ToolsDir  string

	// Notification settings.
	NotifyWebhook string
	NotifyChannel string
	NotifyChatID  string

	// Runtime flags.
	Verbose bool

	// CLI-only flags (never loaded from config files).
	ConfigFile        string
	ProjectName       string
	SkipBuild         bool
	SkipProvision     bool
	AcceptLicenses    bool
	PreferSystemTools bool
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	return &Config{
		OllamaURL:           "http://localhost:11434",
		Model:               "qwen2.5-coder",
		Temperature:         0.1,
		MaxTokens:           2048,
		Template:            "android-basic",
		Language:            "kotlin",
		MinSDK:              24,
		TargetSDK:           34,
		CompileSDK:          34,
		MaxDebugIterations:  2,
		MaxInferenceRetries: 3,
		BuildTimeoutSeconds: 1800,
		GradleSync:          true,
		DefectHeuristic:     true,
		OutputDir:           "generated",
		ToolsDir:            "tools",
		NotifyChannel:       "telegram",
	}
}
