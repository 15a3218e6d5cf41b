package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/respond"
	"github.com/a-h/vlmchat/auth"
	"github.com/a-h/vlmchat/models"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

type ImageResolver interface {
	Resolve(ctx context.Context, url string) (llms.BinaryContent, error)
}

func New(log *slog.Logger, llm llms.Model, images ImageResolver) Handler {
	return Handler{
		log:    log,
		llm:    llm,
		images: images,
	}
}

type Handler struct {
	log    *slog.Logger
	llm    llms.Model
	images ImageResolver
}

// TestUser gets TestMessage back without the model being called.
const TestUser = "test-user-no-llm"

const TestMessage = `Hello! I'm a test message. If you can see me, then your integration is working!`

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUser(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}

	var req models.ChatCompletionRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}

	if user == TestUser {
		respond.WithJSON(w, newResponse(req.Model, TestMessage), http.StatusOK)
		return
	}

	msgs, err := h.messages(r.Context(), req.Messages)
	if err != nil {
		h.log.Error("invalid messages", slog.Any("error", err))
		respond.WithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var opts []llms.CallOption
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*req.Temperature))
	}

	h.log.Info("generating content", slog.String("user", user), slog.String("model", req.Model), slog.Int("messages", len(msgs)))

	resp, err := h.llm.GenerateContent(r.Context(), msgs, opts...)
	if err != nil {
		h.log.Error("failed to generate content", slog.Any("error", err))
		respond.WithError(w, "failed to generate content", http.StatusInternalServerError)
		return
	}
	if len(resp.Choices) == 0 {
		h.log.Error("model returned no choices")
		respond.WithError(w, "failed to generate content", http.StatusInternalServerError)
		return
	}

	respond.WithJSON(w, newResponse(req.Model, resp.Choices[0].Content), http.StatusOK)
}

var roles = map[models.ChatMessageRole]llms.ChatMessageType{
	models.ChatMessageRoleSystem:    llms.ChatMessageTypeSystem,
	models.ChatMessageRoleUser:      llms.ChatMessageTypeHuman,
	models.ChatMessageRoleAssistant: llms.ChatMessageTypeAI,
}

func (h Handler) messages(ctx context.Context, msgs []models.ChatMessage) (mc []llms.MessageContent, err error) {
	if len(msgs) == 0 {
		return nil, errors.New("at least one message is required")
	}
	for i, m := range msgs {
		role, ok := roles[m.Role]
		if !ok {
			return nil, fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
		parts := make([]llms.ContentPart, 0, len(m.Content))
		for j, p := range m.Content {
			switch p.Type {
			case models.ContentPartTypeText:
				parts = append(parts, llms.TextContent{Text: p.Text})
			case models.ContentPartTypeImageURL:
				if p.ImageURL == nil {
					return nil, fmt.Errorf("message %d, part %d: image_url is missing", i, j)
				}
				img, err := h.images.Resolve(ctx, p.ImageURL.URL)
				if err != nil {
					return nil, fmt.Errorf("message %d, part %d: %w", i, j, err)
				}
				parts = append(parts, img)
			default:
				return nil, fmt.Errorf("message %d, part %d: unsupported content type %q", i, j, p.Type)
			}
		}
		mc = append(mc, llms.MessageContent{Role: role, Parts: parts})
	}
	return mc, nil
}

func newResponse(model, content string) models.ChatCompletionResponse {
	return models.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []models.Choice{
			{
				Index: 0,
				Message: models.ResponseMessage{
					Role:    models.ChatMessageRoleAssistant,
					Content: content,
				},
				FinishReason: "stop",
			},
		},
	}
}
