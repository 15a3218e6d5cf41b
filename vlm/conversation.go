package vlm

import (
	"fmt"
	"slices"
	"strings"
)

// ConversationMode selects how a turn is framed for the model. The backend
// owns the chat template itself, so a mode only contributes a system prompt.
type ConversationMode struct {
	Name   string
	System string
}

var conversationModes = map[string]ConversationMode{
	"auto":  {Name: "auto"},
	"plain": {Name: "plain"},
	"vicuna_v1": {
		Name:   "vicuna_v1",
		System: "A chat between a curious user and an artificial intelligence assistant. The assistant gives helpful, detailed, and polite answers to the user's questions.",
	},
	"llama_3": {
		Name:   "llama_3",
		System: "You are a helpful language and vision assistant. You are able to understand the visual content that the user provides, and assist the user with a variety of tasks using natural language.",
	},
	"hermes-2": {
		Name:   "hermes-2",
		System: "Answer the questions.",
	},
}

func ConversationModeNames() []string {
	names := make([]string, 0, len(conversationModes))
	for name := range conversationModes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func LookupConversationMode(name string) (ConversationMode, error) {
	mode, ok := conversationModes[name]
	if !ok {
		return ConversationMode{}, fmt.Errorf("unknown conversation mode %q, expected one of: %s", name, strings.Join(ConversationModeNames(), ", "))
	}
	return mode, nil
}
