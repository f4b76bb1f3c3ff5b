package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/arnavsurve/browser-agent/cmd/cli"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli.CLI
	kctx := kong.Parse(&root,
		kong.Name("browser-agent"),
		kong.Description("Drive a browser through a declarative JSON action script."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		// Bad flags are invalid input, same as a malformed script.
		kong.Exit(func(code int) {
			if code != 0 {
				code = cli.ExitInvalid
			}
			os.Exit(code)
		}),
	)

	err := kctx.Run(&cli.Globals{LogLevel: root.LogLevel, Out: os.Stdout})
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
