// Package providers is the boundary to language models.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), Google (Gemini via
// the genai SDK), and Ollama / LM Studio for local models. Each implements
// [Model]: a system prompt and a user prompt in, plain text out.
//
// HTTP providers share a retry helper with exponential back-off on rate
// limits and server errors; authentication failures are never retried and
// can be detected with [IsAuthError]. [NewCached] wraps any Model with the
// on-disk response cache.
package providers
