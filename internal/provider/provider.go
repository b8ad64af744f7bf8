// Package provider gives the generation orchestrator its upstream capability:
// turn a prompt into content. Providers are injected, never global, so tests
// can substitute doubles that simulate failure and latency.
package provider

import "context"

// Provider generates content for a prompt. Implementations return the final
// payload to persist: generated text, or an addressable image URI.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
