package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/appforge/appforge/internal/banner"
	"github.com/appforge/appforge/internal/build"
	"github.com/appforge/appforge/internal/cli"
	"github.com/appforge/appforge/internal/config"
	"github.com/appforge/appforge/internal/event"
	"github.com/appforge/appforge/internal/exitcode"
	"github.com/appforge/appforge/internal/inference"
	"github.com/appforge/appforge/internal/logging"
	"github.com/appforge/appforge/internal/notification"
	"github.com/appforge/appforge/internal/pipeline"
	"github.com/appforge/appforge/internal/scaffold"
	sighandler "github.com/appforge/appforge/internal/signal"
	"github.com/appforge/appforge/internal/state"
	"github.com/appforge/appforge/internal/toolchain"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cfg := config.NewDefaultConfig()

	rootCmd := &cobra.Command{
		Use:     "appforge [flags] \"<app description>\"",
		Short:   "Natural-language Android app generation pipeline",
		Long:    "appforge turns a plain-text app description into a built Android APK through a staged generation pipeline, a project scaffolder, and a managed Gradle toolchain.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ValidateFlags(cmd, cfg); err != nil {
				return err
			}
			os.Exit(run(cmd, cfg, strings.Join(args, " ")))
			return nil // unreachable
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.BindFlags(rootCmd, cfg)
	cli.SetCustomHelp(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.Error)
	}
}

// run drives one generation task end to end and returns the process exit
// code.
func run(cmd *cobra.Command, cfg *config.Config, request string) int {
	// Load config with full precedence chain. CLI flags are already bound
	// to cfg; file layers slot in underneath explicitly set flags.
	globalConfigPath := globalConfig()
	projectConfigPath := "appforge.conf"
	cliOverrides := cli.BuildCLIOverrides(cmd, cfg)

	finalCfg, err := config.LoadWithPrecedence(globalConfigPath, projectConfigPath, cfg.ConfigFile, cliOverrides)
	if err != nil {
		logging.Error(fmt.Sprintf("load config: %v", err))
		return exitcode.Error
	}

	// Merge CLI-only flags (not in config files).
	finalCfg.ConfigFile = cfg.ConfigFile
	finalCfg.ProjectName = cfg.ProjectName
	finalCfg.SkipBuild = cfg.SkipBuild
	finalCfg.SkipProvision = cfg.SkipProvision
	finalCfg.AcceptLicenses = cfg.AcceptLicenses
	finalCfg.PreferSystemTools = cfg.PreferSystemTools
	cfg = finalCfg

	logging.SetVerbose(cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Written from the signal handler goroutine, read after runTask returns.
	var interrupted atomic.Bool
	sighandler.SetupSignalHandler(ctx, cancel, func() {
		interrupted.Store(true)
		logging.Warn("Interrupted, finishing current step and saving state...")
	})

	sink := event.SinkFunc(func(e event.Event) {
		switch e.Kind {
		case event.KindProgress:
			logging.Info(e.Message)
		case event.KindOutputFile:
			logging.Success("wrote " + e.Path)
		case event.KindDone:
			logging.Success(e.Summary)
		case event.KindError:
			logging.Error(e.Message)
		}
	})

	start := time.Now()
	code := runTask(ctx, cfg, request, sink)
	if interrupted.Load() && code != exitcode.Success && code != exitcode.Interrupted {
		code = exitcode.Interrupted
		notify(cfg, notification.EventInterrupted, request, "unknown", code)
	}
	if code != exitcode.Success {
		banner.PrintFailureBanner(exitcode.Name(code), code)
	} else {
		logging.Debug(fmt.Sprintf("total time %s", logging.FormatDuration(int(time.Since(start).Seconds()))))
	}
	return code
}

func runTask(ctx context.Context, cfg *config.Config, request string, sink event.Sink) int {
	start := time.Now()

	// Inference client with transient-failure retry.
	ollama, err := inference.NewOllamaClient(inference.OllamaConfig{
		BaseURL:     cfg.OllamaURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		logging.Error(fmt.Sprintf("inference client: %v", err))
		return exitcode.Error
	}
	client := &inference.RetryClient{
		Inner: ollama,
		RetryCfg: inference.RetryConfig{
			MaxRetries: cfg.MaxInferenceRetries,
			OnRetry: func(attempt int, delay time.Duration) {
				logging.Warn(fmt.Sprintf("inference attempt %d failed, retrying in %s", attempt+1, delay))
			},
		},
	}

	orch, err := pipeline.New(pipeline.Config{
		Client:             client,
		Sink:               sink,
		WorkDir:            cfg.OutputDir,
		Language:           cfg.Language,
		MaxDebugIterations: cfg.MaxDebugIterations,
		DefectHeuristic:    cfg.DefectHeuristic,
		MaxContextChars:    cfg.MaxTokens * 6,
	})
	if err != nil {
		logging.Error(err.Error())
		return exitcode.Error
	}

	banner.PrintStartupBanner(request, cfg.Model, cfg.Template)

	logging.Stage("Generating application")
	res, err := orch.Run(ctx, request)
	if err != nil {
		if res != nil && res.Status == state.StatusCancelled {
			notify(cfg, notification.EventInterrupted, projectOrRequest(res, request), taskID(res), exitcode.Interrupted)
			return exitcode.Interrupted
		}
		notify(cfg, notification.EventGenFailed, projectOrRequest(res, request), taskID(res), exitcode.GenerationFailed)
		return exitcode.GenerationFailed
	}
	if cfg.ProjectName != "" {
		res.ProjectName = cfg.ProjectName
	}
	if res.Degraded {
		notify(cfg, notification.EventDegraded, res.ProjectName, res.TaskID, exitcode.Success)
	}

	// Scaffold the project around the generated source.
	logging.Stage("Scaffolding project")
	registry := scaffold.NewRegistry()
	if err := registry.LoadTemplatesFrom(filepath.Join(cfg.ToolsDir, "templates")); err != nil {
		logging.Warn(fmt.Sprintf("load external templates: %v", err))
	}
	scaffolder := scaffold.NewScaffolder(registry, sink)
	projectDir := filepath.Join(cfg.OutputDir, res.ProjectName)
	if _, err := scaffolder.Generate(projectDir, cfg.Template, scaffold.Params{
		AppName:    res.ProjectName,
		MinSDK:     cfg.MinSDK,
		TargetSDK:  cfg.TargetSDK,
		CompileSDK: cfg.CompileSDK,
		MainSource: res.Code,
	}); err != nil {
		logging.Error(err.Error())
		return exitcode.ScaffoldFailed
	}

	if cfg.SkipBuild {
		logging.Success("project scaffolded at " + projectDir)
		fmt.Println(projectDir)
		return exitcode.Success
	}

	// Provision the toolchain.
	var tcState *toolchain.State
	if cfg.SkipProvision {
		st, err := toolchain.LoadState(cfg.ToolsDir)
		if err != nil {
			logging.Error(err.Error())
			return exitcode.ToolchainFailed
		}
		tcState = st
	} else {
		logging.Stage("Provisioning toolchain")
		prov, err := toolchain.NewProvisioner(toolchain.Config{Root: cfg.ToolsDir, Sink: sink})
		if err != nil {
			logging.Error(err.Error())
			return exitcode.ToolchainFailed
		}
		tcState, err = prov.EnsureReady(ctx, toolchain.Options{
			AcceptLicenses: cfg.AcceptLicenses,
			PreferSystem:   cfg.PreferSystemTools,
		})
		if err != nil {
			var gateErr *toolchain.LicenseGateError
			if errors.As(err, &gateErr) {
				logging.Error(gateErr.Error())
				logging.Info("pass --accept-licenses to authorize license acceptance")
			} else {
				logging.Error(err.Error())
			}
			return exitcode.ToolchainFailed
		}
	}

	// Build.
	logging.Stage("Building APK")
	runner := build.NewRunner(build.Config{
		GradleBin: toolchain.GradleBin(tcState),
		Env:       toolchain.BuildEnv(tcState, filepath.Join(cfg.ToolsDir, "sdk")),
		Sink:      sink,
		Timeout:   time.Duration(cfg.BuildTimeoutSeconds) * time.Second,
		SyncFirst: cfg.GradleSync,
	})
	pool := build.NewPool(cfg.MaxBuildWorkers)

	var buildRes *build.Result
	err = pool.Do(ctx, func() error {
		var buildErr error
		buildRes, buildErr = runner.Run(ctx, projectDir)
		return buildErr
	})
	if err != nil {
		var berr *build.Error
		if errors.As(err, &berr) {
			logging.Error(fmt.Sprintf("%s (full log: %s)", berr.Reason, berr.LogFile))
			for _, line := range berr.Tail {
				logging.Debug(line)
			}
		} else {
			logging.Error(err.Error())
		}
		notify(cfg, notification.EventBuildFailed, res.ProjectName, res.TaskID, exitcode.BuildFailed)
		return exitcode.BuildFailed
	}

	banner.PrintCompletionBanner(buildRes.ArtifactPath, int(time.Since(start).Seconds()))
	notify(cfg, notification.EventCompleted, res.ProjectName, res.TaskID, exitcode.Success)

	// The artifact path is the only thing on stdout.
	fmt.Println(buildRes.ArtifactPath)
	return exitcode.Success
}

func notify(cfg *config.Config, evt, project, task string, code int) {
	notification.SendNotification(cfg.NotifyWebhook, cfg.NotifyChannel, cfg.NotifyChatID,
		notification.FormatEvent(evt, project, task, code))
}

func projectOrRequest(res *pipeline.Result, request string) string {
	if res != nil && res.ProjectName != "" {
		return res.ProjectName
	}
	return request
}

func taskID(res *pipeline.Result) string {
	if res != nil {
		return res.TaskID
	}
	return "unknown"
}

// globalConfig is ~/.config/appforge/appforge.conf when resolvable.
func globalConfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "appforge", "appforge.conf")
}
