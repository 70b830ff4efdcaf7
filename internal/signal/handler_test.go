package signal

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSIGINTCallsCallbackAndCancels(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var mu sync.Mutex
	callbackCalled := false
	SetupSignalHandler(ctx, cancel, func() {
		mu.Lock()
		callbackCalled = true
		mu.Unlock()
	})

	// Give the handler time to install the signal channel.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled after SIGINT")
	}

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		called := callbackCalled
		mu.Unlock()
		if called {
			return
		}
		select {
		case <-deadline:
			t.Fatal("onInterrupt was not called after SIGINT")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestContextCancellationDoesNotCallCallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	callbackCalled := false
	SetupSignalHandler(ctx, cancel, func() {
		mu.Lock()
		callbackCalled = true
		mu.Unlock()
	})

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, callbackCalled, "cooperative cancellation must not report an interrupt")
}

func TestNilCallbackDoesNotPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	SetupSignalHandler(ctx, cancel, nil)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled after SIGINT")
	}
}
