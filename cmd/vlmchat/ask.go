package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/a-h/vlmchat/client"
	"github.com/a-h/vlmchat/media"
	"github.com/a-h/vlmchat/models"
)

type AskCommand struct {
	ServerURL string `help:"The URL of the inference server." env:"VLM_SERVER_URL" default:"http://localhost:8000"`
	APIKey    string `help:"The API key for the inference server." env:"VLM_API_KEY" default:"fake-key"`
	Model     string `help:"The model to ask." env:"VLM_MODEL" default:"NVILA-Lite-8B"`
	Text      string `help:"The question to ask." default:"What's in this image?"`
	ImageURL  string `help:"URL of the image, or a data URI." default:"https://blog.logomyway.com/wp-content/uploads/2022/01/NVIDIA-logo.jpg"`
	ImageFile string `help:"Local image to send as a base64 data URI instead of --image-url." default:""`
	VideoURL  string `help:"Optional video URL to send as well as the image." default:""`
	Raw       bool   `help:"Print the whole response as JSON." default:"false"`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c AskCommand) Run(ctx context.Context) (err error) {
	return c.run(ctx, os.Stdout)
}

func (c AskCommand) run(ctx context.Context, stdout io.Writer) (err error) {
	log := getLogger(c.LogLevel)

	imageURL := c.ImageURL
	if c.ImageFile != "" {
		if imageURL, err = media.FileDataURI(c.ImageFile); err != nil {
			return err
		}
	}
	content := []models.ContentPart{
		models.TextPart(c.Text),
		models.ImageURLPart(imageURL),
	}
	if c.VideoURL != "" {
		content = append(content, models.VideoURLPart(c.VideoURL))
	}
	req := models.ChatCompletionRequest{
		Model: c.Model,
		Messages: []models.ChatMessage{
			{
				Role:    models.ChatMessageRoleUser,
				Content: content,
			},
		},
	}

	log.Info("sending chat completion request", slog.String("url", c.ServerURL), slog.String("model", c.Model))
	resp, err := client.New(c.ServerURL, c.APIKey).ChatCompletionsPost(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to post chat completion: %w", err)
	}

	if c.Raw {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	answer, err := client.Answer(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, answer)
	return err
}
