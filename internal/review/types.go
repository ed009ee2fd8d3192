package review

// State carries one file's code through the analysis chain. Each agent fills
// in its own report field; the report agent merges them and the fixer
// produces the corrected code.
type State struct {
	Code string

	StyleReport         string
	TypeReport          string
	SecurityReport      string
	ComplexityReport    string
	DocumentationReport string

	FinalReport string
	FixedCode   string
}

// Result is the per-file output returned to API and CLI callers.
type Result struct {
	Filename  string `json:"filename"`
	Report    string `json:"report"`
	FixedCode string `json:"fixed_code"`
}
