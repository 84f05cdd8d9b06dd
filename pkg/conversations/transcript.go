package conversations

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
)

var ErrNoMessages = errors.New("no messages")

// Role returns the chat role of the message. Parts carry it in a "role"
// field; messages without one are replies from the assistant.
func (m *Message) Role() llms.ChatMessageType {
	for _, p := range m.MessageParts {
		role, _ := p["role"].(string)
		switch strings.ToLower(role) {
		case "user", "human":
			return llms.ChatMessageTypeHuman
		case "system":
			return llms.ChatMessageTypeSystem
		case "tool":
			return llms.ChatMessageTypeTool
		case "assistant", "ai":
			return llms.ChatMessageTypeAI
		}
	}
	return llms.ChatMessageTypeAI
}

// Text joins the textual parts of the message
func (m *Message) Text() string {
	var texts []string
	for _, p := range m.MessageParts {
		if s := partText(p); s != "" {
			texts = append(texts, s)
		}
	}
	return strings.Join(texts, "\n")
}

func partText(p map[string]any) string {
	for _, k := range []string{"text", "content"} {
		if s, ok := p[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// MessageContent converts the message for use with langchaingo models.
// Image parts with a url become image parts, everything textual becomes text.
func (m *Message) MessageContent() llms.MessageContent {
	mc := llms.MessageContent{Role: m.Role()}
	for _, p := range m.MessageParts {
		if typ, _ := p["type"].(string); typ == "image" {
			if url, ok := p["url"].(string); ok && url != "" {
				mc.Parts = append(mc.Parts, llms.ImageURLContent{URL: url})
				continue
			}
		}
		if s := partText(p); s != "" {
			mc.Parts = append(mc.Parts, llms.TextContent{Text: s})
		}
	}
	return mc
}

// Transcript returns the conversation as langchaingo messages, skipping
// messages with no usable parts
func (c *Conversation) Transcript() ([]llms.MessageContent, error) {
	if len(c.Messages) == 0 {
		return nil, ErrNoMessages
	}
	out := make([]llms.MessageContent, 0, len(c.Messages))
	for i := range c.Messages {
		mc := c.Messages[i].MessageContent()
		if len(mc.Parts) == 0 {
			continue
		}
		out = append(out, mc)
	}
	return out, nil
}

// Prompt renders the request as a human message. Image attachments given by
// url are kept.
func (m *MessageRequest) Prompt() llms.MessageContent {
	mc := llms.TextParts(llms.ChatMessageTypeHuman, m.Content)
	for _, f := range m.Files {
		if f.URL != "" && strings.HasPrefix(f.Type, "image/") {
			mc.Parts = append(mc.Parts, llms.ImageURLContent{URL: f.URL})
		}
	}
	return mc
}
