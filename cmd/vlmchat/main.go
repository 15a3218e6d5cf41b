package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Ask     AskCommand     `cmd:"ask" help:"Ask an inference server about an image."`
	Local   LocalCommand   `cmd:"local" help:"Interactively ask a local VLM about the images in a directory."`
	Images  ImagesCommand  `cmd:"images" help:"List the images that the local session would offer."`
	Serve   ServeCommand   `cmd:"serve" help:"Serve an OpenAI-compatible chat completions endpoint backed by Ollama."`
	Version VersionCommand `cmd:"version" help:"Print the version of vlmchat."`
}

func main() {
	var cli CLI
	// Interrupts cancel in-flight work. Readline handles Ctrl+C itself while
	// waiting for input.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	kctx := kong.Parse(&cli, kong.Name("vlmchat"), kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	err := kctx.Run()
	stop()
	if err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
