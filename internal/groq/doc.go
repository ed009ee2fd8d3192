// Package groq is a minimal client for the Groq chat-completions API, which
// speaks the OpenAI wire format.
//
// A [Client] is bound to a single API key, model, and temperature at
// construction; it never switches keys itself. HTTP 429 responses surface as
// [*RateLimitError] and 401/403 as [*AuthError] so callers can tell transient
// rate limiting apart from dead credentials. The endpoint and HTTP client are
// injectable so tests can run against local httptest servers.
package groq
