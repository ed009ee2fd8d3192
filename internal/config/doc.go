// Package config loads and merges codeaudit configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CODEAUDIT_MODEL, CODEAUDIT_ADDR, SKIP_FOLDERS, etc.)
//  3. Config file ($XDG_CONFIG_HOME/codeaudit/config.json)
//  4. Built-in defaults
//
// A .env file in the working directory is folded into the environment before
// merging, which is also how the GROQ_API_KEY* credential pool is usually
// supplied. Use [Load] to obtain a merged [Config] and [DiscoverKeys] to
// collect the credential pool from an environment snapshot.
package config
