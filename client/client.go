package client

import (
	"context"
	"errors"
	"strings"

	"github.com/a-h/jsonapi"
	"github.com/a-h/vlmchat/models"
)

func New(baseURL, apiKey string) Client {
	return Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type Client struct {
	baseURL string
	apiKey  string
}

// ChatCompletionsPost sends a single, non-streaming chat completion request.
// Non-2xx responses are returned as jsonapi.InvalidStatusError.
func (c Client) ChatCompletionsPost(ctx context.Context, req models.ChatCompletionRequest) (resp models.ChatCompletionResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("chat", "completions").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.ChatCompletionRequest, models.ChatCompletionResponse](ctx, url, req,
		jsonapi.WithRequestHeader("Content-Type", "application/json"),
		jsonapi.WithRequestHeader("Authorization", "Bearer "+c.apiKey))
}

var ErrNoChoices = errors.New("client: response contains no choices")

// Answer returns the content of the first choice.
func Answer(resp models.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
