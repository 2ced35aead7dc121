package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that will live until Ctrl+C is pressed
// or SIGTERM is received.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	return ctx
}

// Fatal logs message with err and exits with status 1.
func Fatal(message string, err error) {
	if err != nil {
		slog.Error(message, "err", err.Error())
	} else {
		slog.Error(message)
	}
	os.Exit(1)
}
