package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/a-h/vlmchat/auth"
	"github.com/a-h/vlmchat/client"
	chatcompletionspost "github.com/a-h/vlmchat/handlers/chatcompletions/post"
	"github.com/a-h/vlmchat/media"
	"github.com/a-h/vlmchat/models"
	"github.com/go-resty/resty/v2"
	"github.com/rs/cors"
)

func newGateway(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	mux := http.NewServeMux()
	mux.Handle("POST /chat/completions", chatcompletionspost.New(log, nil, media.NewResolver(resty.New().SetTimeout(5*time.Second))))
	keys := map[string]string{
		"test-api-key-no-llm": chatcompletionspost.TestUser,
	}
	s := httptest.NewServer(cors.AllowAll().Handler(auth.New(keys, mux)))
	t.Cleanup(s.Close)
	return s
}

func TestChatCompletionsPost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := newGateway(t)

	c := client.New(s.URL, "test-api-key-no-llm")
	resp, err := c.ChatCompletionsPost(context.Background(), models.ChatCompletionRequest{
		Model: "NVILA-Lite-8B",
		Messages: []models.ChatMessage{
			{
				Role: models.ChatMessageRoleUser,
				Content: []models.ContentPart{
					models.TextPart("What's in this image?"),
					models.ImageURLPart("https://example.com/logo.jpg"),
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to post chat completion: %v", err)
	}
	actual, err := client.Answer(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actual != chatcompletionspost.TestMessage {
		t.Fatalf("expected %q, got %q", chatcompletionspost.TestMessage, actual)
	}
	if resp.Model != "NVILA-Lite-8B" {
		t.Errorf("expected the requested model to be echoed, got %q", resp.Model)
	}
}

func TestChatCompletionsPostRejectsUnknownKeys(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := newGateway(t)

	c := client.New(s.URL, "not-a-key")
	_, err := c.ChatCompletionsPost(context.Background(), models.ChatCompletionRequest{
		Messages: []models.ChatMessage{
			{Role: models.ChatMessageRoleUser, Content: []models.ContentPart{models.TextPart("hello")}},
		},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown API key")
	}
}
