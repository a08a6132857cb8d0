package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// NarrationRequest asks the text-generation capability for free text.
type NarrationRequest struct {
	// Role is the persona the model speaks as (system instruction).
	Role string

	// Task describes what to write, with the stage inputs embedded.
	Task string

	// Model optionally overrides the configured model ("claude-...", "gemini/...").
	Model string

	// Temperature overrides the provider default when > 0.
	Temperature float32
}

// Narrator is an external text-generation capability. Output is free text
// and not deterministic; pipeline data contracts never depend on it.
type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (string, error)
}
