package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/appforge/appforge/internal/event"
	"github.com/appforge/appforge/internal/logging"
)

// Component versions and distribution URLs.
const (
	jdkVersion          = "17.0.10"
	jdkURL              = "https://github.com/adoptium/temurin17-binaries/releases/download/jdk-17.0.10%2B7/OpenJDK17U-jdk_x64_linux_hotspot_17.0.10_7.tar.gz"
	jdkSHA256           = "a8fd07e1e97352e97e330beb20f1c6b351ba064ca7878e974c7d68b8a5c1b378"
	cmdlineToolsVersion = "11.0.0"
	cmdlineToolsURL     = "https://dl.google.com/android/repository/commandlinetools-linux-11076708_latest.zip"
	cmdlineToolsSHA256  = "2d2d50857e4eb553af5a6dc3ad507a17adf43d115264b1afc116f95c92e5e258"
	gradleVersion       = "8.5.0"
	gradleURL           = "https://services.gradle.org/distributions/gradle-8.5-bin.zip"
	gradleSHA256        = "9d926787066a081739e8200858338b4a69e837c3a821a33aca9db09dd4a41026"
	platformVersion     = "34.0.0"
	buildToolsVersion   = "34.0.0"
)

var sdkPackages = []string{"platform-tools", "platforms;android-34", "build-tools;34.0.0"}

// licenseReplies feeds the interactive license prompt loop.
var licenseReplies = strings.Repeat("y\n", 50)

// DownloadSpec describes one downloadable component.
type DownloadSpec struct {
	Name      string
	Version   string
	URL       string
	SHA256    string
	StripRoot bool

	// SystemTool names a binary to probe on PATH before downloading. A
	// system install at or above Version is recorded with source "system".
	SystemTool string
}

// DefaultSpecs returns the standard component set.
func DefaultSpecs() []DownloadSpec {
	return []DownloadSpec{
		{Name: ComponentJDK, Version: jdkVersion, URL: jdkURL, SHA256: jdkSHA256, StripRoot: true, SystemTool: "java"},
		{Name: ComponentCmdlineTools, Version: cmdlineToolsVersion, URL: cmdlineToolsURL, SHA256: cmdlineToolsSHA256, StripRoot: true},
		{Name: ComponentGradle, Version: gradleVersion, URL: gradleURL, SHA256: gradleSHA256, StripRoot: true, SystemTool: "gradle"},
	}
}

// CommandRunner executes an external command and returns its combined
// output. Tests substitute a fake; production uses execRunner.
type CommandRunner interface {
	Run(ctx context.Context, dir string, env []string, stdin, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, env []string, stdin, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Options controls one EnsureReady call.
type Options struct {
	// AcceptLicenses authorizes answering the SDK license prompts. Without
	// it, an unaccepted license state fails with LicenseGateError.
	AcceptLicenses bool

	// PreferSystem reuses suitable JDK and Gradle installs found on PATH
	// instead of downloading.
	PreferSystem bool
}

// Config configures a Provisioner.
type Config struct {
	Root    string
	Fetcher Fetcher
	Exec    CommandRunner
	Sink    event.Sink
	Specs   []DownloadSpec
}

// Provisioner installs and tracks toolchain components under a managed
// root. All methods serialize on an internal mutex: concurrent EnsureReady
// calls never interleave installs.
type Provisioner struct {
	mu       sync.Mutex
	root     string
	fetcher  Fetcher
	exec     CommandRunner
	sink     event.Sink
	specs    []DownloadSpec
	lookPath func(string) (string, error)
}

// NewProvisioner creates a Provisioner. Root is required.
func NewProvisioner(cfg Config) (*Provisioner, error) {
	if cfg.Root == "" {
		return nil, errors.New("toolchain: root directory is required")
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = NewHTTPFetcher()
	}
	if cfg.Exec == nil {
		cfg.Exec = execRunner{}
	}
	if cfg.Sink == nil {
		cfg.Sink = event.Discard
	}
	if cfg.Specs == nil {
		cfg.Specs = DefaultSpecs()
	}
	return &Provisioner{
		root:     cfg.Root,
		fetcher:  cfg.Fetcher,
		exec:     cfg.Exec,
		sink:     cfg.Sink,
		specs:    cfg.Specs,
		lookPath: exec.LookPath,
	}, nil
}

// SDKRoot is the Android SDK home managed by this provisioner.
func (p *Provisioner) SDKRoot() string {
	return filepath.Join(p.root, "sdk")
}

// EnsureReady brings every component to at least its required version and
// passes the license gate. It is idempotent: a satisfied state performs no
// downloads and no license prompts.
func (p *Provisioner) EnsureReady(ctx context.Context, opts Options) (*State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := LoadState(p.root)
	if err != nil {
		return nil, err
	}

	for _, spec := range p.specs {
		if err := p.ensureComponent(ctx, st, spec, opts); err != nil {
			return nil, err
		}
		if err := st.Save(p.root); err != nil {
			return nil, err
		}
	}

	if err := p.ensureLicenses(ctx, st, opts); err != nil {
		return nil, err
	}
	if err := p.ensureSDKPackages(ctx, st); err != nil {
		return nil, err
	}
	if err := st.Save(p.root); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Provisioner) ensureComponent(ctx context.Context, st *State, spec DownloadSpec, opts Options) error {
	if st.Satisfies(spec.Name, spec.Version) {
		p.sink.Emit(event.Progress(fmt.Sprintf("%s %s already installed", spec.Name, st.Components[spec.Name].Version)))
		return nil
	}

	if opts.PreferSystem && spec.SystemTool != "" {
		if rec, ok := p.probeSystem(ctx, spec); ok {
			if err := st.Record(rec); err != nil {
				return &InstallError{Component: spec.Name, Err: err}
			}
			p.sink.Emit(event.Progress(fmt.Sprintf("%s %s reused from system", spec.Name, rec.Version)))
			return nil
		}
	}

	rec, err := p.install(ctx, spec)
	if err != nil {
		return &InstallError{Component: spec.Name, Err: err}
	}
	if err := st.Record(rec); err != nil {
		return &InstallError{Component: spec.Name, Err: err}
	}
	p.sink.Emit(event.Progress(fmt.Sprintf("%s %s installed", spec.Name, spec.Version)))
	return nil
}

var versionPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// probeSystem looks for a usable system install of the tool.
func (p *Provisioner) probeSystem(ctx context.Context, spec DownloadSpec) (Record, bool) {
	bin, err := p.lookPath(spec.SystemTool)
	if err != nil {
		return Record{}, false
	}
	out, err := p.exec.Run(ctx, "", nil, "", bin, "--version")
	if err != nil {
		// java has no --version on older releases.
		out, err = p.exec.Run(ctx, "", nil, "", bin, "-version")
		if err != nil {
			return Record{}, false
		}
	}
	m := versionPattern.FindString(out)
	if m == "" {
		return Record{}, false
	}
	have, err := semver.NewVersion(m)
	if err != nil {
		return Record{}, false
	}
	want, err := semver.NewVersion(spec.Version)
	if err != nil || have.Major() < want.Major() {
		return Record{}, false
	}
	return Record{Name: spec.Name, Version: have.String(), Path: bin, Source: SourceSystem}, true
}

// install downloads, verifies, and unpacks one component. A failed or
// cancelled install removes the partial component directory before
// returning.
func (p *Provisioner) install(ctx context.Context, spec DownloadSpec) (Record, error) {
	archivePath := filepath.Join(p.root, "downloads", filepath.Base(spec.URL))
	if err := p.fetchVerified(ctx, spec, archivePath); err != nil {
		return Record{}, err
	}

	destDir := filepath.Join(p.root, spec.Name+"-"+spec.Version)
	if err := extract(archivePath, destDir, spec.StripRoot); err != nil {
		if rmErr := os.RemoveAll(destDir); rmErr != nil {
			logging.Warn(fmt.Sprintf("remove partial install %s: %v", destDir, rmErr))
		}
		return Record{}, fmt.Errorf("unpack: %w", err)
	}
	return Record{
		Name:    spec.Name,
		Version: spec.Version,
		Path:    destDir,
		Source:  SourceManaged,
		SHA256:  spec.SHA256,
	}, nil
}

// fetchVerified downloads the archive unless a verified copy already
// exists. A digest mismatch discards the file and refetches once.
func (p *Provisioner) fetchVerified(ctx context.Context, spec DownloadSpec, dest string) error {
	for attempt := 0; attempt < 2; attempt++ {
		if _, err := os.Stat(dest); err != nil {
			if err := p.fetcher.Fetch(ctx, spec.URL, dest); err != nil {
				return err
			}
		}
		if spec.SHA256 == "" {
			return nil
		}
		got, err := HashFile(dest)
		if err != nil {
			return err
		}
		if got == spec.SHA256 {
			return nil
		}
		logging.Warn(fmt.Sprintf("%s: digest mismatch, refetching", filepath.Base(dest)))
		if err := os.Remove(dest); err != nil {
			return err
		}
	}
	return fmt.Errorf("digest mismatch for %s after refetch", spec.URL)
}

// ensureLicenses passes the SDK license gate, prompting only when the
// caller authorized acceptance.
func (p *Provisioner) ensureLicenses(ctx context.Context, st *State, opts Options) error {
	if st.LicensesAccepted {
		return nil
	}
	if !opts.AcceptLicenses {
		return &LicenseGateError{Reason: "rerun with license acceptance enabled"}
	}
	out, err := p.exec.Run(ctx, "", p.toolEnv(st), licenseReplies,
		p.sdkmanagerBin(st), "--licenses", "--sdk_root="+p.SDKRoot())
	if err != nil {
		return fmt.Errorf("accept sdk licenses: %w (%s)", err, tailOf(out, 400))
	}
	st.LicensesAccepted = true
	st.AcceptedAt = nowUTC()
	p.sink.Emit(event.Progress("sdk licenses accepted"))
	return nil
}

// ensureSDKPackages installs the platform packages through sdkmanager.
// Runs only behind the license gate.
func (p *Provisioner) ensureSDKPackages(ctx context.Context, st *State) error {
	if st.Satisfies(ComponentPlatform, platformVersion) && st.Satisfies(ComponentBuildTools, buildToolsVersion) {
		return nil
	}
	args := append([]string{"--sdk_root=" + p.SDKRoot()}, sdkPackages...)
	out, err := p.exec.Run(ctx, "", p.toolEnv(st), "", p.sdkmanagerBin(st), args...)
	if err != nil {
		return &InstallError{Component: ComponentPlatform,
			Err: fmt.Errorf("sdkmanager: %w (%s)", err, tailOf(out, 400))}
	}
	if err := st.Record(Record{Name: ComponentPlatform, Version: platformVersion, Path: p.SDKRoot(), Source: SourceManaged}); err != nil {
		return err
	}
	if err := st.Record(Record{Name: ComponentBuildTools, Version: buildToolsVersion, Path: p.SDKRoot(), Source: SourceManaged}); err != nil {
		return err
	}
	p.sink.Emit(event.Progress("android sdk packages installed"))
	return nil
}

func (p *Provisioner) sdkmanagerBin(st *State) string {
	if rec, ok := st.Components[ComponentCmdlineTools]; ok {
		return filepath.Join(rec.Path, "bin", "sdkmanager")
	}
	return "sdkmanager"
}

// toolEnv builds the environment for sdkmanager invocations from the
// recorded components only.
func (p *Provisioner) toolEnv(st *State) []string {
	return BuildEnv(st, p.SDKRoot())
}

// BuildEnv composes the process environment for toolchain commands solely
// from recorded components. Nothing from the ambient environment leaks in
// except HOME and TMPDIR, which Gradle requires.
func BuildEnv(st *State, sdkRoot string) []string {
	var pathDirs []string
	env := []string{"ANDROID_HOME=" + sdkRoot, "ANDROID_SDK_ROOT=" + sdkRoot}

	if rec, ok := st.Components[ComponentJDK]; ok {
		javaHome := rec.Path
		if rec.Source == SourceSystem {
			// Path points at the binary; JAVA_HOME is two levels up.
			javaHome = filepath.Dir(filepath.Dir(rec.Path))
			pathDirs = append(pathDirs, filepath.Dir(rec.Path))
		} else {
			pathDirs = append(pathDirs, filepath.Join(javaHome, "bin"))
		}
		env = append(env, "JAVA_HOME="+javaHome)
	}
	if rec, ok := st.Components[ComponentGradle]; ok {
		if rec.Source == SourceSystem {
			pathDirs = append(pathDirs, filepath.Dir(rec.Path))
		} else {
			pathDirs = append(pathDirs, filepath.Join(rec.Path, "bin"))
		}
	}
	pathDirs = append(pathDirs, filepath.Join(sdkRoot, "platform-tools"))

	env = append(env, "PATH="+strings.Join(pathDirs, string(os.PathListSeparator)))
	if home := os.Getenv("HOME"); home != "" {
		env = append(env, "HOME="+home)
	}
	if tmp := os.Getenv("TMPDIR"); tmp != "" {
		env = append(env, "TMPDIR="+tmp)
	}
	return env
}

// GradleBin returns the gradle executable for the recorded install.
func GradleBin(st *State) string {
	rec, ok := st.Components[ComponentGradle]
	if !ok {
		return "gradle"
	}
	if rec.Source == SourceSystem {
		return rec.Path
	}
	return filepath.Join(rec.Path, "bin", "gradle")
}

func tailOf(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
