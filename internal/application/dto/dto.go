// Package dto defines the request and response bodies of the public API.
package dto

import "encoding/json"

// PromptRequest is the body of POST /api/prompts. Pointer fields
// distinguish "absent" (defaulted) from "present but empty" (validated).
type PromptRequest struct {
	Printer   *string `json:"printer"`
	Filament  *string `json:"filament"`
	TimeLimit *string `json:"timeLimit"`
	Skill     *string `json:"skill"`
}

// PromptResponse carries up to five prompt suggestions.
type PromptResponse struct {
	Prompts []string `json:"prompts"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Printer   *string `json:"printer"`
	Filament  *string `json:"filament"`
	TimeLimit *string `json:"timeLimit"`
	Skill     *string `json:"skill"`
	Prompt    *string `json:"prompt"`
}

// GenerateResponse carries generated product ideas. Each idea is an
// opaque payload object (title, difficulty, scoring fields and so on)
// passed through from the model unchanged.
type GenerateResponse struct {
	Ideas []json.RawMessage `json:"ideas"`
}

// TestAlertRequest is the body of POST /api/test-alert. The token may
// arrive here or in the X-Alert-Test-Token header.
type TestAlertRequest struct {
	Token string `json:"token"`
}

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}
