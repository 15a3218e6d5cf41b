package vlm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/a-h/vlmchat/media"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

type Backend string

const (
	BackendOllama Backend = "ollama"
	BackendOpenAI Backend = "openai"
)

const DefaultTokenizerMaxLength = 4096

type LoadOptions struct {
	ModelPath          string
	LoRAPath           string
	Backend            Backend
	ServerURL          string
	APIKey             string
	TokenizerMaxLength int
	HTTPClient         *http.Client
}

// Opener creates the backend. It is called once, on first use, so that the
// backend sees the configured context length.
type Opener func(contextLength int) (llms.Model, error)

// VisionConfig holds the vision encoder's look-close token budget.
type VisionConfig struct {
	NumLookClose          int
	NumTokenLookClose     int
	MaxSelectNumEachScale []int
	LookCloseMode         string
	SmoothSelectionProb   bool
}

// ContextLengths are the places a context length is reported. They are all
// derived from the model's single context length.
type ContextLengths struct {
	ModelMaxLength             int
	TokenizerModelMaxLength    int
	LLMModelMaxLength          int
	LLMTokenizerModelMaxLength int
	TokenizerMaxLength         int
}

type Model struct {
	Name   string
	Base   string
	Vision VisionConfig

	log           *slog.Logger
	contextLength int
	open          Opener

	once    sync.Once
	llm     llms.Model
	openErr error
}

func New(log *slog.Logger, name, base string, tokenizerMaxLength int, open Opener) *Model {
	return &Model{
		Name:          name,
		Base:          base,
		log:           log,
		contextLength: tokenizerMaxLength,
		open:          open,
	}
}

// Load prepares a model. With a LoRA path, the LoRA is the model that is
// run and the model path is recorded as its base.
func Load(log *slog.Logger, opts LoadOptions) (*Model, error) {
	name, base := opts.ModelPath, ""
	if opts.LoRAPath != "" {
		name, base = opts.LoRAPath, opts.ModelPath
	}
	if name == "" {
		return nil, errors.New("vlm: model path is required")
	}
	tokenizerMaxLength := opts.TokenizerMaxLength
	if tokenizerMaxLength <= 0 {
		tokenizerMaxLength = DefaultTokenizerMaxLength
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	var open Opener
	switch opts.Backend {
	case BackendOllama, "":
		open = func(contextLength int) (llms.Model, error) {
			ollamaOpts := []ollama.Option{
				ollama.WithModel(name),
				ollama.WithHTTPClient(httpClient),
				ollama.WithRunnerNumCtx(contextLength),
			}
			if opts.ServerURL != "" {
				ollamaOpts = append(ollamaOpts, ollama.WithServerURL(opts.ServerURL))
			}
			return ollama.New(ollamaOpts...)
		}
	case BackendOpenAI:
		open = func(contextLength int) (llms.Model, error) {
			openaiOpts := []openai.Option{
				openai.WithModel(name),
				openai.WithToken(opts.APIKey),
				openai.WithHTTPClient(httpClient),
			}
			if opts.ServerURL != "" {
				openaiOpts = append(openaiOpts, openai.WithBaseURL(opts.ServerURL))
			}
			return openai.New(openaiOpts...)
		}
	default:
		return nil, fmt.Errorf("vlm: unknown backend %q", opts.Backend)
	}

	log.Info("loading model", slog.String("model", name), slog.String("base", base), slog.String("backend", string(opts.Backend)))
	return New(log, name, base, tokenizerMaxLength, open), nil
}

// Configure applies the settings that are present and grows the context
// length to fit the look-close budget. Call it before the first Generate.
func (m *Model) Configure(s Settings) {
	if s.NumLookClose != nil {
		m.log.Info("num look close", slog.Int("value", *s.NumLookClose))
		m.Vision.NumLookClose = *s.NumLookClose
	}
	if s.NumTokenLookClose != nil {
		m.log.Info("num token look close", slog.Int("value", *s.NumTokenLookClose))
		m.Vision.NumTokenLookClose = *s.NumTokenLookClose
	}
	if s.SelectNumEachScale != nil {
		m.log.Info("select num each scale", slog.Any("value", s.SelectNumEachScale))
		m.Vision.MaxSelectNumEachScale = s.SelectNumEachScale
	}
	if s.LookCloseMode != nil {
		m.log.Info("look close mode", slog.String("value", *s.LookCloseMode))
		m.Vision.LookCloseMode = *s.LookCloseMode
	}
	if s.SmoothSelectionProb != nil {
		m.log.Info("smooth selection prob", slog.Bool("value", *s.SmoothSelectionProb))
		m.Vision.SmoothSelectionProb = *s.SmoothSelectionProb
	}
	m.contextLength = ContextLength(m.contextLength, s)
	m.log.Info("context length", slog.Int("value", m.contextLength))
}

func (m *Model) ContextLength() int {
	return m.contextLength
}

func (m *Model) ContextLengths() ContextLengths {
	return ContextLengths{
		ModelMaxLength:             m.contextLength,
		TokenizerModelMaxLength:    m.contextLength,
		LLMModelMaxLength:          m.contextLength,
		LLMTokenizerModelMaxLength: m.contextLength,
		TokenizerMaxLength:         m.contextLength,
	}
}

func (m *Model) backend() (llms.Model, error) {
	m.once.Do(func() {
		m.llm, m.openErr = m.open(m.contextLength)
		if m.openErr != nil {
			m.openErr = fmt.Errorf("vlm: failed to open backend: %w", m.openErr)
		}
	})
	return m.llm, m.openErr
}

// Generate answers a single question about the given image files. No state
// is kept between calls.
func (m *Model) Generate(ctx context.Context, mode ConversationMode, imagePaths []string, text string) (string, error) {
	llm, err := m.backend()
	if err != nil {
		return "", err
	}

	parts := make([]llms.ContentPart, 0, len(imagePaths)+1)
	for _, p := range imagePaths {
		img, err := media.ReadFile(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, img)
	}
	parts = append(parts, llms.TextContent{Text: text})

	var msgs []llms.MessageContent
	if mode.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, mode.System))
	}
	msgs = append(msgs, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})

	m.log.Debug("generating content",
		slog.String("model", m.Name),
		slog.String("mode", mode.Name),
		slog.Int("images", len(imagePaths)),
		slog.Int("contextLength", m.contextLength),
		slog.Any("vision", m.Vision))

	resp, err := llm.GenerateContent(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("vlm: failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("vlm: model returned no choices")
	}
	return resp.Choices[0].Content, nil
}
