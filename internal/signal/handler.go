// Package signal provides signal handling for graceful shutdown of the
// appforge CLI.
//
// SetupSignalHandler registers handlers for SIGINT and SIGTERM so an
// in-flight generation or build can be cancelled cooperatively instead of
// killed mid-write.
package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler registers SIGINT and SIGTERM handlers.
// When a signal is received, it calls the onInterrupt callback (if non-nil),
// then cancels the context.
//
// This function starts a goroutine that listens for signals. The goroutine
// terminates when either a signal is received or the context is canceled.
func SetupSignalHandler(ctx context.Context, cancel context.CancelFunc, onInterrupt func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			if onInterrupt != nil {
				onInterrupt()
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}()
}
