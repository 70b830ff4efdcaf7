package toolchain

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/appforge/internal/event"
)

// zipFixture builds a zip with a single top-level directory, the layout the
// real distributions use.
func zipFixture(t *testing.T, root string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(root + "/" + name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// memFetcher serves canned bytes per URL and counts fetches.
type memFetcher struct {
	mu      sync.Mutex
	data    map[string][]byte
	fetches int
}

func (f *memFetcher) Fetch(ctx context.Context, url, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	data, ok := f.data[url]
	if !ok {
		return errors.New("unknown url: " + url)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// fakeExec records invocations and returns scripted output.
type fakeExec struct {
	mu     sync.Mutex
	calls  []fakeCall
	output string
	err    error
}

type fakeCall struct {
	Name  string
	Args  []string
	Stdin string
	Env   []string
}

func (f *fakeExec) Run(ctx context.Context, dir string, env []string, stdin, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{Name: name, Args: args, Stdin: stdin, Env: env})
	return f.output, f.err
}

func (f *fakeExec) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testProvisioner(t *testing.T, fetcher Fetcher, exec CommandRunner, specs []DownloadSpec) *Provisioner {
	t.Helper()
	p, err := NewProvisioner(Config{
		Root:    t.TempDir(),
		Fetcher: fetcher,
		Exec:    exec,
		Sink:    event.Discard,
		Specs:   specs,
	})
	require.NoError(t, err)
	return p
}

func singleSpec(t *testing.T, fetcher *memFetcher) DownloadSpec {
	t.Helper()
	data := zipFixture(t, "tool-1.2.3", map[string]string{"bin/tool": "#!/bin/sh\n"})
	url := "https://example.com/tool.zip"
	fetcher.data = map[string][]byte{url: data}
	return DownloadSpec{Name: "tool", Version: "1.2.3", URL: url, SHA256: digest(data), StripRoot: true}
}

func TestEnsureReadyInstallsAndRecords(t *testing.T) {
	fetcher := &memFetcher{}
	spec := singleSpec(t, fetcher)
	exec := &fakeExec{}
	p := testProvisioner(t, fetcher, exec, []DownloadSpec{spec})

	st, err := p.EnsureReady(context.Background(), Options{AcceptLicenses: true})
	require.NoError(t, err)

	rec, ok := st.Components["tool"]
	require.True(t, ok)
	assert.Equal(t, "1.2.3", rec.Version)
	assert.Equal(t, SourceManaged, rec.Source)
	assert.Equal(t, spec.SHA256, rec.SHA256)
	assert.FileExists(t, filepath.Join(rec.Path, "bin", "tool"))
	assert.True(t, st.LicensesAccepted)

	// State survives a reload.
	reloaded, err := LoadState(p.root)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", reloaded.Components["tool"].Version)
	assert.True(t, reloaded.LicensesAccepted)
}

func TestEnsureReadyIsIdempotent(t *testing.T) {
	fetcher := &memFetcher{}
	spec := singleSpec(t, fetcher)
	exec := &fakeExec{}
	p := testProvisioner(t, fetcher, exec, []DownloadSpec{spec})

	_, err := p.EnsureReady(context.Background(), Options{AcceptLicenses: true})
	require.NoError(t, err)
	fetchesAfterFirst := fetcher.fetches
	execAfterFirst := exec.callCount()

	_, err = p.EnsureReady(context.Background(), Options{AcceptLicenses: true})
	require.NoError(t, err)

	assert.Equal(t, fetchesAfterFirst, fetcher.fetches, "second run must not download")
	assert.Equal(t, execAfterFirst, exec.callCount(), "second run must not prompt or install")
}

func TestLicenseGateBlocksWithoutAcceptance(t *testing.T) {
	fetcher := &memFetcher{}
	spec := singleSpec(t, fetcher)
	exec := &fakeExec{}
	p := testProvisioner(t, fetcher, exec, []DownloadSpec{spec})

	_, err := p.EnsureReady(context.Background(), Options{AcceptLicenses: false})
	require.Error(t, err)
	var gateErr *LicenseGateError
	assert.ErrorAs(t, err, &gateErr)
	assert.Zero(t, exec.callCount(), "no sdkmanager run behind a closed gate")
}

func TestLicenseAcceptanceFeedsPrompts(t *testing.T) {
	fetcher := &memFetcher{}
	spec := singleSpec(t, fetcher)
	exec := &fakeExec{}
	p := testProvisioner(t, fetcher, exec, []DownloadSpec{spec})

	_, err := p.EnsureReady(context.Background(), Options{AcceptLicenses: true})
	require.NoError(t, err)

	require.NotEmpty(t, exec.calls)
	licenses := exec.calls[0]
	assert.Contains(t, licenses.Args, "--licenses")
	assert.True(t, strings.HasPrefix(licenses.Stdin, "y\ny\n"))
}

func TestDigestMismatchFailsAfterRefetch(t *testing.T) {
	fetcher := &memFetcher{}
	spec := singleSpec(t, fetcher)
	spec.SHA256 = strings.Repeat("0", 64)
	p := testProvisioner(t, fetcher, &fakeExec{}, []DownloadSpec{spec})

	_, err := p.EnsureReady(context.Background(), Options{AcceptLicenses: true})
	require.Error(t, err)
	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "tool", installErr.Component)
	assert.Equal(t, 2, fetcher.fetches, "one refetch after the first mismatch")
}

func TestRecordRefusesDowngrade(t *testing.T) {
	st := newState()
	require.NoError(t, st.Record(Record{Name: "tool", Version: "2.0.0", Source: SourceManaged}))
	err := st.Record(Record{Name: "tool", Version: "1.9.0", Source: SourceManaged})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "downgrade")
	assert.Equal(t, "2.0.0", st.Components["tool"].Version)
}

func TestSatisfies(t *testing.T) {
	st := newState()
	require.NoError(t, st.Record(Record{Name: "tool", Version: "2.1.0"}))

	assert.True(t, st.Satisfies("tool", "2.0.0"))
	assert.True(t, st.Satisfies("tool", "2.1.0"))
	assert.False(t, st.Satisfies("tool", "2.2.0"))
	assert.False(t, st.Satisfies("other", "1.0.0"))
}

func TestPreferSystemReusesInstall(t *testing.T) {
	fetcher := &memFetcher{data: map[string][]byte{}}
	exec := &fakeExec{output: `openjdk version "17.0.2" 2022-01-18`}
	spec := DownloadSpec{Name: ComponentJDK, Version: "17.0.10",
		URL: "https://example.com/jdk.tar.gz", SystemTool: "java"}
	p := testProvisioner(t, fetcher, exec, []DownloadSpec{spec})
	p.lookPath = func(name string) (string, error) {
		return "/usr/lib/jvm/bin/java", nil
	}

	st, err := p.EnsureReady(context.Background(), Options{AcceptLicenses: true, PreferSystem: true})
	require.NoError(t, err)

	rec := st.Components[ComponentJDK]
	assert.Equal(t, SourceSystem, rec.Source)
	assert.Equal(t, "17.0.2", rec.Version)
	assert.Zero(t, fetcher.fetches)
}

func TestBuildEnvIsToolchainOnly(t *testing.T) {
	st := newState()
	require.NoError(t, st.Record(Record{Name: ComponentJDK, Version: "17.0.10", Path: "/tc/jdk-17.0.10", Source: SourceManaged}))
	require.NoError(t, st.Record(Record{Name: ComponentGradle, Version: "8.5.0", Path: "/tc/gradle-8.5.0", Source: SourceManaged}))

	env := BuildEnv(st, "/tc/sdk")
	joined := strings.Join(env, "\n")
	assert.Contains(t, joined, "JAVA_HOME=/tc/jdk-17.0.10")
	assert.Contains(t, joined, "ANDROID_HOME=/tc/sdk")
	assert.Contains(t, joined, filepath.Join("/tc/jdk-17.0.10", "bin"))
	assert.Contains(t, joined, filepath.Join("/tc/gradle-8.5.0", "bin"))

	for _, kv := range env {
		key := strings.SplitN(kv, "=", 2)[0]
		switch key {
		case "JAVA_HOME", "ANDROID_HOME", "ANDROID_SDK_ROOT", "PATH", "HOME", "TMPDIR":
		default:
			t.Fatalf("unexpected env var leaked into build env: %s", key)
		}
	}
}

func TestGradleBin(t *testing.T) {
	st := newState()
	assert.Equal(t, "gradle", GradleBin(st))

	require.NoError(t, st.Record(Record{Name: ComponentGradle, Version: "8.5.0", Path: "/tc/gradle-8.5.0", Source: SourceManaged}))
	assert.Equal(t, filepath.Join("/tc/gradle-8.5.0", "bin", "gradle"), GradleBin(st))

	st2 := newState()
	require.NoError(t, st2.Record(Record{Name: ComponentGradle, Version: "8.5.0", Path: "/usr/bin/gradle", Source: SourceSystem}))
	assert.Equal(t, "/usr/bin/gradle", GradleBin(st2))
}
