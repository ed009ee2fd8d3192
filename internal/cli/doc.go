// Package cli wires together the Cobra command tree for the codeaudit binary.
//
// It defines the root command and the serve, review, and version subcommands,
// binds flags, merges configuration, assembles the key pool and review
// engine, and returns deterministic exit codes.
package cli
