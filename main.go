package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"lbgen/cmd"
	"lbgen/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(cmd.ExitCode(err))
	}
}
