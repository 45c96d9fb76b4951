// Package server hosts the credential nodes behind a WebSocket flow
// endpoint: prompts go out as flow progress messages, user signals come
// back as flow actions, and the session state bag is persisted in the
// configured store between invocations.
package server

import "github.com/sirosfoundation/go-credential-nodes/internal/node"

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → Server
	TypeFlowStart  MessageType = "flow_start"
	TypeFlowAction MessageType = "flow_action"

	// Server → Client
	TypeFlowProgress MessageType = "flow_progress"
	TypeFlowComplete MessageType = "flow_complete"
	TypeFlowError    MessageType = "flow_error"
)

// Flow action names carried by flow_action messages.
const (
	ActionPoll   = "poll"
	ActionChoice = "choice"
)

// ClientMessage is a message received from the client.
type ClientMessage struct {
	Type MessageType `json:"type"`

	// flow_start fields
	Flow  string         `json:"flow,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// flow_action fields
	Action string `json:"action,omitempty"`
	Choice int    `json:"choice,omitempty"`
}

// ServerMessage is a message sent to the client.
type ServerMessage struct {
	Type    MessageType  `json:"type"`
	FlowID  string       `json:"flowId,omitempty"`
	Prompts []PromptView `json:"prompts,omitempty"`
	Outcome string       `json:"outcome,omitempty"`
	Output  any          `json:"output,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// PromptView is the wire representation of a node prompt.
type PromptView struct {
	Type    string   `json:"type"`
	Message string   `json:"message,omitempty"`
	URL     string   `json:"url,omitempty"`
	Options []string `json:"options,omitempty"`
	WaitMs  int      `json:"waitMs,omitempty"`
}

// promptViews converts node prompts to their wire form.
func promptViews(prompts []node.Prompt) []PromptView {
	views := make([]PromptView, 0, len(prompts))
	for _, p := range prompts {
		switch p := p.(type) {
		case node.ChoicePrompt:
			views = append(views, PromptView{Type: "choice", Message: p.Message, Options: p.Options})
		case node.TextPrompt:
			views = append(views, PromptView{Type: "text", Message: p.Message})
		case node.QRPrompt:
			views = append(views, PromptView{Type: "qr", Message: p.Message, URL: p.URL})
		case node.PollPrompt:
			views = append(views, PromptView{Type: "poll", WaitMs: p.WaitMs})
		}
	}
	return views
}
