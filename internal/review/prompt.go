package review

import (
	"fmt"
	"strings"
)

// StylePrompt builds the style-linting analysis prompt.
func StylePrompt(code string) string {
	return withCode(`You are a professional static code style analyzer.

Perform style linting on this Python/SQL code:
- PEP8 compliance
- Naming conventions
- Formatting
- Indentation
- Readability issues`, code)
}

// TypePrompt builds the static type analysis prompt.
func TypePrompt(code string) string {
	return withCode(`Perform static type analysis:

Check:
- Type mismatches
- Missing type hints (Python)
- SQL datatype problems
- Logical type inconsistencies`, code)
}

// SecurityPrompt builds the security analysis prompt.
func SecurityPrompt(code string) string {
	return withCode(`Perform static security analysis.

Check for:
- SQL Injection
- Hardcoded credentials
- Unsafe eval/exec
- Input validation issues
- Deserialization risks
- Injection vulnerabilities`, code)
}

// ComplexityPrompt builds the complexity analysis prompt.
func ComplexityPrompt(code string) string {
	return withCode(`Analyze code complexity.

Check:
- Cyclomatic complexity
- Deep nesting
- Long functions
- Duplicate logic
- Maintainability issues`, code)
}

// DocumentationPrompt builds the documentation review prompt.
func DocumentationPrompt(code string) string {
	return withCode(`Review documentation quality:

Check:
- Missing docstrings
- Missing comments
- Poor function explanations
- API documentation gaps`, code)
}

// ReportPrompt merges the per-category reports into one audit-report prompt.
func ReportPrompt(s *State) string {
	var b strings.Builder
	b.WriteString("Create a professional structured code audit report.\n\n")
	fmt.Fprintf(&b, "STYLE ANALYSIS:\n%s\n\n", s.StyleReport)
	fmt.Fprintf(&b, "TYPE ANALYSIS:\n%s\n\n", s.TypeReport)
	fmt.Fprintf(&b, "SECURITY ANALYSIS:\n%s\n\n", s.SecurityReport)
	fmt.Fprintf(&b, "COMPLEXITY ANALYSIS:\n%s\n\n", s.ComplexityReport)
	fmt.Fprintf(&b, "DOCUMENTATION ANALYSIS:\n%s\n\n", s.DocumentationReport)
	b.WriteString(`Generate:
1. Executive Summary
2. Detailed Findings
3. Risk Severity (Low/Medium/High)
4. Actionable Recommendations`)
	return b.String()
}

// FixerPrompt asks for a corrected version of the code given the audit report.
func FixerPrompt(code, report string) string {
	var b strings.Builder
	b.WriteString("You are a senior software engineer.\n\n")
	b.WriteString("Fix the following code based on the audit report.\n\n")
	fmt.Fprintf(&b, "ORIGINAL CODE:\n%s\n\n", code)
	fmt.Fprintf(&b, "AUDIT REPORT:\n%s\n\n", report)
	b.WriteString("Return ONLY the improved corrected code.")
	return b.String()
}

func withCode(instructions, code string) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nCode:\n")
	b.WriteString(code)
	return b.String()
}
