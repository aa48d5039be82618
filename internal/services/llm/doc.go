// Package llm wraps an OpenRouter-compatible chat-completion API used to
// obtain forgery-likelihood assessments for analyzed photos.
//
// The client requests JSON-only completions, tolerates the response-shape
// quirks of different providers, and retries transient failures with
// exponential backoff honoring Retry-After. Callers hand it the extracted
// evidence (device identity, file facts) and get back a bounded likelihood
// with a verdict and rationale.
package llm
