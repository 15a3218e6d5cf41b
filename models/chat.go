package models

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type ChatMessageRole string

const (
	ChatMessageRoleSystem    ChatMessageRole = "system"
	ChatMessageRoleUser      ChatMessageRole = "user"
	ChatMessageRoleAssistant ChatMessageRole = "assistant"
)

type ChatMessage struct {
	Role    ChatMessageRole `json:"role"`
	Content []ContentPart   `json:"content"`
}

type ContentPartType string

const (
	ContentPartTypeText     ContentPartType = "text"
	ContentPartTypeImageURL ContentPartType = "image_url"
	ContentPartTypeVideoURL ContentPartType = "video_url"
)

// ContentPart is one element of a multimodal message. Exactly one of Text,
// ImageURL or VideoURL is populated, matching Type.
type ContentPart struct {
	Type     ContentPartType `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *MediaURL       `json:"image_url,omitempty"`
	VideoURL *MediaURL       `json:"video_url,omitempty"`
}

// MediaURL is an http(s) URL or a data URI, e.g. data:image/png;base64,...
type MediaURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: ContentPartTypeText, Text: text}
}

func ImageURLPart(url string) ContentPart {
	return ContentPart{Type: ContentPartTypeImageURL, ImageURL: &MediaURL{URL: url}}
}

func VideoURLPart(url string) ContentPart {
	return ContentPart{Type: ContentPartTypeVideoURL, VideoURL: &MediaURL{URL: url}}
}

type ChatCompletionResponse struct {
	ID      string   `json:"id,omitempty"`
	Object  string   `json:"object,omitempty"`
	Created int64    `json:"created,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

type ResponseMessage struct {
	Role    ChatMessageRole `json:"role"`
	Content string          `json:"content"`
}
