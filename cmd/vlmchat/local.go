package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/a-h/vlmchat/catalog"
	"github.com/a-h/vlmchat/session"
	"github.com/a-h/vlmchat/vlm"
)

type LocalCommand struct {
	ModelPath          string `help:"Path or name of the VLM." short:"m" env:"MODEL_PATH" default:"NVILA-Lite-8B"`
	ImagesDir          string `help:"Directory containing images." short:"i" env:"IMAGES_DIR" default:"images"`
	ConvMode           string `help:"Conversation mode (vicuna_v1, llama_3, etc.)." short:"c" env:"CONV_MODE" default:"vicuna_v1"`
	LoRAPath           string `name:"lora-path" help:"Optional LoRA weights path." short:"l" env:"LORA_PATH" default:""`
	Backend            string `help:"The model backend." enum:"ollama,openai" env:"VLM_BACKEND" default:"ollama"`
	ServerURL          string `help:"The URL of the model backend. Empty uses the backend default." env:"VLM_SERVER_URL" default:""`
	APIKey             string `help:"The API key for the openai backend." env:"VLM_API_KEY" default:"fake-key"`
	TokenizerMaxLength int    `help:"The tokenizer's maximum context length before look-close settings are applied." env:"TOKENIZER_MAX_LENGTH" default:"4096"`

	NumLookClose        string `help:"Number of look-close regions." env:"NUM_LOOK_CLOSE" default:""`
	NumTokenLookClose   string `help:"Token budget for look-close regions." env:"NUM_TOKEN_LOOK_CLOSE" default:""`
	SelectNumEachScale  string `help:"Tokens selected at each scale, separated by +, e.g. 256+512." env:"SELECT_NUM_EACH_SCALE" default:""`
	LookCloseMode       string `help:"Look-close selection mode." env:"LOOK_CLOSE_MODE" default:""`
	SmoothSelectionProb string `help:"Smooth the selection probability (true or false)." env:"SMOOTH_SELECTION_PROB" default:""`

	LogLevel string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c LocalCommand) rawSettings() vlm.RawSettings {
	return vlm.RawSettings{
		NumLookClose:        c.NumLookClose,
		NumTokenLookClose:   c.NumTokenLookClose,
		SelectNumEachScale:  c.SelectNumEachScale,
		LookCloseMode:       c.LookCloseMode,
		SmoothSelectionProb: c.SmoothSelectionProb,
	}
}

func (c LocalCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	settings, err := vlm.ParseSettings(c.rawSettings())
	if err != nil {
		return err
	}
	mode, err := vlm.LookupConversationMode(c.ConvMode)
	if err != nil {
		return err
	}

	session.PrintBanner(os.Stdout)

	model, err := vlm.Load(log, vlm.LoadOptions{
		ModelPath:          c.ModelPath,
		LoRAPath:           c.LoRAPath,
		Backend:            vlm.Backend(c.Backend),
		ServerURL:          c.ServerURL,
		APIKey:             c.APIKey,
		TokenizerMaxLength: c.TokenizerMaxLength,
	})
	if err != nil {
		return err
	}
	log.Info("model loaded successfully")
	model.Configure(settings)
	log.Info("using conversation mode", slog.String("mode", mode.Name))

	images, err := catalog.Find(log, c.ImagesDir)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		log.Error("no images found", slog.String("dir", c.ImagesDir))
		log.Info("please add some images (.jpg, .jpeg, .png, .bmp, .gif) to the images directory")
		return session.ErrNoImages
	}
	log.Info("found images", slog.Int("count", len(images)), slog.String("dir", c.ImagesDir))

	term, err := session.NewTerminal()
	if err != nil {
		return err
	}
	defer term.Close()

	s, err := session.New(log, term, term.Stdout(), images, model, mode)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
