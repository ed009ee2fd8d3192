package scan

import "strings"

// DefaultSkipFolders lists directory names excluded from analysis when a
// whole project folder is uploaded. Matching is case-insensitive against
// every directory component of a file's relative path.
var DefaultSkipFolders = []string{
	// Virtual environments
	"venv",
	".venv",
	"env",
	".env",
	"virtualenv",
	"conda-env",

	// Python internal / build artefacts
	"__pycache__",
	".eggs",
	"egg-info",
	"dist",
	"build",
	"sdist",
	"site-packages",
	"lib",
	"Lib",
	"lib64",
	"Scripts",
	"Include",
	"share",

	// Package / dependency managers
	"node_modules",

	// Version control & editors
	".git",
	".svn",
	".hg",
	".idea",
	".vscode",

	// Testing / linting caches
	".tox",
	".nox",
	".mypy_cache",
	".pytest_cache",
	".ruff_cache",
	"htmlcov",
	".coverage",

	// Misc
	"migrations",
	".terraform",
}

// Filter decides whether an uploaded file's relative path falls inside a
// skipped folder.
type Filter struct {
	names    map[string]bool
	suffixes []string // entries with "." or "-", matched as suffixes too
}

// NewFilter builds a Filter from the given folder names. A nil or empty list
// uses DefaultSkipFolders.
func NewFilter(folders []string) *Filter {
	if len(folders) == 0 {
		folders = DefaultSkipFolders
	}
	f := &Filter{names: make(map[string]bool, len(folders))}
	for _, name := range folders {
		lower := strings.ToLower(name)
		f.names[lower] = true
		if strings.ContainsAny(lower, ".-") {
			f.suffixes = append(f.suffixes, lower)
		}
	}
	return f
}

// Skip reports whether any directory component of relativePath matches a
// skipped folder. The final component is the filename and is never matched.
// Both slash styles are accepted, matching browser-supplied paths.
func (f *Filter) Skip(relativePath string) bool {
	parts := strings.Split(strings.ReplaceAll(relativePath, `\`, "/"), "/")
	for _, part := range parts[:len(parts)-1] {
		lower := strings.ToLower(part)
		if f.names[lower] {
			return true
		}
		// Catches "something.egg-info" style names.
		for _, suffix := range f.suffixes {
			if strings.HasSuffix(lower, suffix) {
				return true
			}
		}
	}
	return false
}
