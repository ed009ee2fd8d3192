// Package server exposes the analysis pipeline over HTTP with gin.
//
// POST /analyze accepts a multipart upload of source files, filters them by
// extension and skip-folder rules, runs each through the review engine, and
// returns per-file reports and corrected code. GET /history serves recent
// runs from the store, GET /healthz liveness. A bundled static frontend is
// served from the configured directory when present.
//
// Batches are serialized with a mutex because the key pool underneath rotates
// shared state; each batch starts from the first key via Reset. Inbound
// traffic is rate-limited per client IP.
package server
