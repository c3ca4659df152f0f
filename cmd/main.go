package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"evalgrid/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := NewApplication()

	if err := app.Initialize(); err != nil {
		logger.FatalCtx(nil, "evalgrid initialization failed: %v", err)
	}

	if err := app.Start(); err != nil {
		logger.FatalCtx(app.ctx, "evalgrid startup failed: %v", err)
	}

	// Block until SIGINT/SIGTERM, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.InfoCtx(app.ctx, "received signal %v, shutting down", sig)

	if err := app.Shutdown(shutdownTimeout); err != nil {
		logger.ErrorCtx(app.ctx, "shutdown finished with errors: %v", err)
		os.Exit(1)
	}

	logger.InfoCtx(app.ctx, "evalgrid stopped")
}
