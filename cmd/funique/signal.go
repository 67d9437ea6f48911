package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandler sets up signal handling for graceful shutdown
// Returns a channel that will be closed when a shutdown signal is received
func setupSignalHandler() <-chan struct{} {
	shutdown := make(chan struct{})

	sigChan := make(chan os.Signal, 1)

	// SIGINT (Ctrl+C) and SIGTERM (termination)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived signal: %v, stopping...\n", sig)

		// Close the shutdown channel to notify scanning and hashing
		close(shutdown)

		// A second signal kills the process the usual way
		signal.Stop(sigChan)
	}()

	return shutdown
}
