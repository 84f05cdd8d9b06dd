// Package conversations talks to chat conversations hosted by the backend
package conversations

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Tool types understood by the backend
const (
	ToolWebResearch = "web_research"
	ToolNoxusQA     = "noxus_qa"
	ToolKBSelector  = "kb_selector"
	ToolKBQA        = "kb_qa"
	ToolWorkflow    = "workflow"
)

var (
	ErrFileContent      = errors.New("either base64 content or url must be provided")
	ErrSettingsOrAgent  = errors.New("exactly one of settings or agent id must be provided")
	ErrNoResponse       = errors.New("no response from the server")
	ErrEmptyMessage     = errors.New("message content is required")
	ErrWorkflowRequired = errors.New("workflow tool requires a workflow")
)

// WorkflowInfo names the workflow run by a workflow tool
type WorkflowInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tool is a capability enabled in a conversation. Type selects which of the
// optional fields apply.
type Tool struct {
	Type              string        `json:"type"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Enabled           bool          `json:"enabled"`
	ExtraInstructions string        `json:"extra_instructions,omitempty"`
	KBID              string        `json:"kb_id,omitempty"`
	Workflow          *WorkflowInfo `json:"workflow,omitempty"`
}

func WebResearchTool() Tool {
	return Tool{Type: ToolWebResearch, Name: "Web Research", Description: "Search the web for information", Enabled: true}
}

func NoxusQATool() Tool {
	return Tool{Type: ToolNoxusQA, Name: "Noxus Q&A", Description: "Answer questions about the Noxus platform", Enabled: true}
}

// KnowledgeBaseSelectorTool lets the conversation pick a knowledge base. kbID
// may be empty.
func KnowledgeBaseSelectorTool(kbID string) Tool {
	return Tool{
		Type:        ToolKBSelector,
		Name:        "Select Knowledge Base Q&A",
		Description: "Select a knowledge base to answer questions about",
		Enabled:     true,
		KBID:        kbID,
	}
}

// KnowledgeBaseQATool answers from one pre-selected knowledge base
func KnowledgeBaseQATool(kbID string) Tool {
	return Tool{
		Type:        ToolKBQA,
		Name:        "Knowledge Base Q&A",
		Description: "Answer questions about the knowledge base",
		Enabled:     true,
		KBID:        kbID,
	}
}

func WorkflowTool(wf WorkflowInfo) Tool {
	return Tool{Type: ToolWorkflow, Name: "Workflow Runner", Description: "Run a workflow", Enabled: true, Workflow: &wf}
}

// Validate checks the fields required by the tool type
func (t Tool) Validate() error {
	if t.Type == ToolWorkflow && t.Workflow == nil {
		return ErrWorkflowRequired
	}
	return nil
}

type Settings struct {
	ModelSelection    []string `json:"model_selection"`
	Temperature       float64  `json:"temperature"`
	MaxTokens         int      `json:"max_tokens,omitempty"`
	Tools             []Tool   `json:"tools"`
	ExtraInstructions string   `json:"extra_instructions,omitempty"`
}

func (s *Settings) Validate() error {
	for i, t := range s.Tools {
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "tool %d (%s)", i, t.Type)
		}
	}
	return nil
}

// File is an attachment sent with a message
type File struct {
	Status string `json:"status"`
	Name   string `json:"name"`
	B64    string `json:"b64_content,omitempty"`
	URL    string `json:"url,omitempty"`
	ID     string `json:"id"`
	Size   int    `json:"size"`
	Type   string `json:"type"`
}

// NewFile builds an attachment from base64 content or a url
func NewFile(name, b64, url string) (File, error) {
	f := File{Status: "success", Name: name, B64: b64, URL: url, ID: uuid.New().String(), Size: 1}
	return f, f.Validate()
}

func (f File) Validate() error {
	if f.B64 == "" && f.URL == "" {
		return errors.Wrapf(ErrFileContent, "file %q", f.Name)
	}
	return nil
}

// MessageRequest is a user message posted to a conversation
type MessageRequest struct {
	Content        string   `json:"content"`
	Tool           string   `json:"tool,omitempty"`
	KBID           string   `json:"kb_id,omitempty"`
	WorkflowID     string   `json:"workflow_id,omitempty"`
	Files          []File   `json:"files,omitempty"`
	ModelSelection []string `json:"model_selection,omitempty"`
}

func (m *MessageRequest) Validate() error {
	if m.Content == "" {
		return ErrEmptyMessage
	}
	for _, f := range m.Files {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Message is one entry of a conversation transcript
type Message struct {
	ID           string           `json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	MessageParts []map[string]any `json:"message_parts"`
}

type Conversation struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     string    `json:"created_at"`
	LastUpdatedAt string    `json:"last_updated_at"`
	Settings      Settings  `json:"settings"`
	ETag          string    `json:"etag,omitempty"`
	Messages      []Message `json:"messages"`
}
