// Package keypool rotates a pool of Groq API keys to survive rate limiting.
//
// A [Manager] holds the credential pool in a stable order, a cursor marking
// the active key, and a client bound to that key. [Manager.Invoke] runs one
// prompt: success returns on the first good attempt, non-rate-limit errors
// propagate unchanged, and rate-limit errors (classified by a textual test
// over the error's Unwrap chain) advance the cursor to the next key after a
// cooldown. When the last key is rate-limited the call fails with
// [*ExhaustedError], which callers can pick out with errors.As to stop a
// batch cleanly. [Manager.Reset] rewinds the cursor to the first key between
// batches.
//
// The attempt budget is len(keys) * (MaxRetriesPerKey + 1), but rotation
// happens on the first rate-limit detection per key; the per-key allowance
// only widens the ceiling. A Manager has no internal locking and expects
// sequential use.
package keypool
