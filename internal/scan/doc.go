// Package scan filters uploaded file paths against a skip-folder list, so
// that dependency directories, build artefacts, and tool caches inside an
// uploaded project folder are never sent to the LLM. The default list can be
// replaced wholesale via configuration (the SKIP_FOLDERS environment
// variable as a comma-separated string).
package scan
