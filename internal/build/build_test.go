package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/appforge/internal/event"
)

// fakeGradle writes an executable shell script standing in for gradle.
func fakeGradle(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "gradle")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func testEnv() []string {
	return []string{"PATH=/usr/bin:/bin"}
}

func TestRunSuccessResolvesArtifact(t *testing.T) {
	projectDir := t.TempDir()
	bin := fakeGradle(t, `
echo "> Task :app:assembleDebug"
mkdir -p "$PWD/app/build/outputs/apk/debug"
printf apk > "$PWD/app/build/outputs/apk/debug/app-debug.apk"
`)
	r := NewRunner(Config{GradleBin: bin, Env: testEnv(), Sink: event.Discard})

	res, err := r.Run(context.Background(), projectDir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.ArtifactPath, "app-debug.apk"))
	assert.True(t, filepath.IsAbs(res.ArtifactPath))
	assert.FileExists(t, res.ArtifactPath)

	logData, err := os.ReadFile(res.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "assembleDebug")
}

func TestRunExitZeroWithoutArtifact(t *testing.T) {
	bin := fakeGradle(t, `echo "BUILD SUCCESSFUL"`)
	r := NewRunner(Config{GradleBin: bin, Env: testEnv()})

	_, err := r.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ReasonArtifactMissing, berr.Reason)
}

func TestRunFailureCapturesTail(t *testing.T) {
	bin := fakeGradle(t, `
echo "compiling"
echo "e: MainActivity.kt:3 unresolved reference" >&2
exit 1
`)
	r := NewRunner(Config{GradleBin: bin, Env: testEnv()})

	_, err := r.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ReasonFailed, berr.Reason)
	assert.Contains(t, strings.Join(berr.Tail, "\n"), "unresolved reference")

	logData, readErr := os.ReadFile(berr.LogFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(logData), "unresolved reference")
}

func TestRunTimeoutKillsBuild(t *testing.T) {
	bin := fakeGradle(t, `sleep 10`)
	r := NewRunner(Config{GradleBin: bin, Env: testEnv(), Timeout: 200 * time.Millisecond})

	start := time.Now()
	_, err := r.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ReasonTimeout, berr.Reason)
}

func TestRunSyncFirstInvokesDependencies(t *testing.T) {
	projectDir := t.TempDir()
	bin := fakeGradle(t, `
echo "args: $@"
mkdir -p "$PWD/app/build/outputs/apk/debug"
printf apk > "$PWD/app/build/outputs/apk/debug/app-debug.apk"
`)
	r := NewRunner(Config{GradleBin: bin, Env: testEnv(), SyncFirst: true})

	res, err := r.Run(context.Background(), projectDir)
	require.NoError(t, err)

	logData, readErr := os.ReadFile(res.LogFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(logData), "dependencies")
	assert.Contains(t, string(logData), "assembleDebug")
}

func TestResolveArtifactPrefersNewest(t *testing.T) {
	projectDir := t.TempDir()
	dir := filepath.Join(projectDir, filepath.FromSlash(artifactRelDir))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	older := filepath.Join(dir, "app-old.apk")
	newer := filepath.Join(dir, "app-new.apk")
	require.NoError(t, os.WriteFile(older, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("b"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	got, err := ResolveArtifact(projectDir)
	require.NoError(t, err)
	assert.Equal(t, newer, got)
}

func TestResolveArtifactAbsoluteFromRelativeDir(t *testing.T) {
	t.Chdir(t.TempDir())
	rel := filepath.Join("generated", "MyApp")
	dir := filepath.Join(rel, filepath.FromSlash(artifactRelDir))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-debug.apk"), []byte("apk"), 0o644))

	got, err := ResolveArtifact(rel)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "resolved path %q", got)
	assert.True(t, strings.HasSuffix(got, "app-debug.apk"))
	assert.FileExists(t, got)
}

func TestTailBufferBounded(t *testing.T) {
	tb := newTailBuffer(3)
	for i := 0; i < 10; i++ {
		tb.Add(fmt.Sprintf("line %d", i))
	}
	assert.Equal(t, []string{"line 7", "line 8", "line 9"}, tb.Lines())
}

func TestLineWriterSplitsAndFlushes(t *testing.T) {
	var lines []string
	lw := newLineWriter(func(s string) { lines = append(lines, s) })

	_, err := lw.Write([]byte("one\ntw"))
	require.NoError(t, err)
	_, err = lw.Write([]byte("o\nthree"))
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(2)
	var active, peak int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), func() error {
				n := atomic.AddInt32(&active, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak, int32(2))
}

func TestPoolRespectsCancellation(t *testing.T) {
	p := NewPool(1)
	release := make(chan struct{})
	go p.Do(context.Background(), func() error {
		<-release
		return nil
	})
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Do(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}
