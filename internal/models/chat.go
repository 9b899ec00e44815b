package models

// ChatMessage is a single role-tagged message in a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// ChatCompletionRequest is the body POSTed to the chat-completion endpoint.
type ChatCompletionRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
}

// ChatCompletionResponse mirrors the subset of the endpoint reply we read.
// Every level is optional so a missing path can be reported instead of
// silently yielding an empty string.
type ChatCompletionResponse struct {
	Choices []ChatChoice `json:"choices"`
}

type ChatChoice struct {
	Message *ChatChoiceMessage `json:"message"`
}

type ChatChoiceMessage struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content"`
}
