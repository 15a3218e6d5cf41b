package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/vlmchat/auth"
	chatcompletionspost "github.com/a-h/vlmchat/handlers/chatcompletions/post"
	"github.com/a-h/vlmchat/media"
	"github.com/go-resty/resty/v2"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/llms/ollama"
)

type ServeCommand struct {
	OllamaURL         string        `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	ChatModel         string        `help:"The vision model to serve." env:"CHAT_MODEL" default:"llava"`
	ContextLength     int           `help:"The context window passed to the Ollama runner. Zero keeps the model default." env:"CONTEXT_LENGTH" default:"0"`
	ImageFetchTimeout time.Duration `help:"The timeout for fetching remote images." env:"IMAGE_FETCH_TIMEOUT" default:"30s"`
	ListenAddr        string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:8000"`
	TLSCertFile       string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile        string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	APIKeysFile       string        `help:"The file containing a JSON map of API keys to usernames. Empty accepts any key." env:"API_KEYS_FILE" default:""`
	LogLevel          string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	log.Info("creating LLM client", slog.String("url", c.OllamaURL), slog.String("model", c.ChatModel))
	opts := []ollama.Option{
		ollama.WithModel(c.ChatModel),
		ollama.WithHTTPClient(&http.Client{}),
		ollama.WithServerURL(c.OllamaURL),
	}
	if c.ContextLength > 0 {
		opts = append(opts, ollama.WithRunnerNumCtx(c.ContextLength))
	}
	llmc, err := ollama.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create LLM: %w", err)
	}

	images := media.NewResolver(resty.New().SetTimeout(c.ImageFetchTimeout))

	mux := http.NewServeMux()
	cph := chatcompletionspost.New(log, llmc, images)
	mux.Handle("POST /chat/completions", cph)
	mux.Handle("POST /v1/chat/completions", cph)

	apiKeyToUserName, err := auth.LoadFromFile(c.APIKeysFile)
	if err != nil {
		return fmt.Errorf("failed to load API keys: %w", err)
	}
	if apiKeyToUserName == nil {
		log.Warn("no API keys file configured, accepting any bearer token")
	}
	authenticatedMux := auth.New(apiKeyToUserName, mux)
	withCORSAuthenticatedMux := cors.AllowAll().Handler(authenticatedMux)

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: withCORSAuthenticatedMux,
	}
	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down", slog.Any("error", err))
		}
	}()
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		err = s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	} else {
		err = s.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
