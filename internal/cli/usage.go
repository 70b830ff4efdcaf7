package cli

import (
	"github.com/spf13/cobra"
)

const helpTemplate = `appforge - Natural-language Android app generation pipeline

USAGE
  appforge [flags] "<app description>"

FLAGS
  Inference Backend:
    --ollama-url <url>                Ollama server base URL (default: http://localhost:11434)
    --model <name>                    Model for all pipeline stages (default: qwen2.5-coder)
    --temperature <float>             Sampling temperature (default: 0.1)
    --max-tokens <int>                Max tokens per completion (default: 2048)

  Scaffolding:
    --template <name>                 Project template (default: android-basic)
    --language <kotlin|java>          Generated source language (default: kotlin)
    --project-name <name>             Override the planner's project name
    --min-sdk <int>                   Android minSdk (default: 24)
    --target-sdk <int>                Android targetSdk (default: 34)
    --compile-sdk <int>               Android compileSdk (default: 34)

  Pipeline Bounds:
    --max-debug-iterations <int>      Max review/debug loop iterations (default: 2)
    --max-inference-retries <int>     Max retries per inference call (default: 3)

  Build:
    --build-timeout <int>             Seconds before a gradle invocation is killed (default: 1800)
    --max-build-workers <int>         Concurrent build limit, 0 = number of CPUs (default: 0)
    --gradle-sync                     Resolve dependencies before assembling (default: true)
    --skip-build                      Generate and scaffold only, no gradle build
    --skip-provision                  Assume the toolchain is already provisioned

  Toolchain:
    --accept-licenses                 Accept Android SDK licenses during provisioning
    --prefer-system-tools             Reuse suitable JDK/Gradle installs from PATH
    --tools-dir <path>                Root for the managed toolchain (default: tools)

  Review Policy:
    --defect-heuristic                Scan marker-less reviews for defect keywords (default: true)

  Directories & Config:
    --output-dir <path>               Root for generated projects (default: generated)
    --config <path>                   Path to additional config file

  Notifications:
    --notify-webhook <url>            Webhook URL for completion notifications
    --notify-channel <channel>        Notification channel (default: telegram)
    --notify-chat-id <id>             Recipient chat ID

  Help & Version:
    -v, --verbose                     Enable debug logging
    -h, --help                        Show this help text
    --version                         Show version, commit, build date

EXIT CODES
  0   Success              Artifact built, path printed to stdout
  1   Error                Invalid arguments, file not found, misconfiguration
  2   GenerationFailed     Pipeline ended in error
  3   ScaffoldFailed       Template rendering or project tree write failed
  4   ToolchainFailed      Provisioning or license gate failed
  5   BuildFailed          Gradle failed, timed out, or produced no artifact
  130 Interrupted          SIGINT or SIGTERM received

EXAMPLES
  # Generate and build an app from a description
  appforge --accept-licenses "a simple todo list with reminders"

  # Generate only, inspect the project before building
  appforge --skip-build "a unit converter"

  # Reuse a system JDK and Gradle
  appforge --accept-licenses --prefer-system-tools "a tip calculator"
`

// SetCustomHelp configures the cobra command to use our custom help template.
func SetCustomHelp(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
}
