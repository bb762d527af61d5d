package main

import (
	"context"
	"fmt"
	"os"

	"finledger/internal/cli"
	"finledger/internal/core"
	"finledger/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", log.FieldError, err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if core.IsValidation(err) {
			fmt.Fprintf(os.Stderr, "invalid input: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
