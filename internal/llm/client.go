// Package llm abstracts the upstream text and vision generation backend.
//
// The streaming form makes no assumption about how the upstream segments its
// output: a fragment may be a single token, a sentence, or the entire
// structured answer in one piece. The only contract is that concatenating all
// fragments, in order, equals the complete raw output of the equivalent
// single-shot call.
package llm

import "context"

// Message is one prior turn handed to the generation backend
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a fully assembled generation request
type Request struct {
	SystemPrompt string    `json:"system_prompt"`
	Messages     []Message `json:"messages"`
	Model        string    `json:"model,omitempty"`
	Temperature  float32   `json:"temperature,omitempty"`
}

// VisionRequest is a single-image identification request
type VisionRequest struct {
	SystemPrompt string `json:"system_prompt"`
	Prompt       string `json:"prompt"`
	ImageURL     string `json:"image_url"`
	Model        string `json:"model,omitempty"`
}

// Fragment is one piece of streamed generation output. A non-nil Err
// terminates the sequence.
type Fragment struct {
	Text string
	Err  error
}

// Generator is the abstraction over the generation backend
type Generator interface {
	// Generate performs a single-shot completion and returns the raw text
	Generate(ctx context.Context, req Request) (string, error)
	// GenerateStream yields the raw output as a finite, non-restartable
	// fragment sequence. The channel is closed after the final fragment.
	GenerateStream(ctx context.Context, req Request) (<-chan Fragment, error)
}

// VisionGenerator is the abstraction over the vision backend
type VisionGenerator interface {
	GenerateVision(ctx context.Context, req VisionRequest) (string, error)
}
