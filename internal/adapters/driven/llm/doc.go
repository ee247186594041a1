// Package llm holds what the chat model adapters share: prompt templates,
// conversation roles and request rate limiting.
//
// Provider clients live in the openai and gemini subpackages.
package llm
