package review

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Invoker runs one prompt and returns the generated text. The production
// implementation is keypool.Manager, which rotates API keys under the hood.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Engine drives one file's code through the analysis chain: five category
// analyses, the merged audit report, then the fixer.
//
// Steps run sequentially because the Invoker mutates shared key-rotation
// state and expects serialized calls.
type Engine struct {
	llm Invoker
	log *logrus.Logger
}

// NewEngine creates an Engine using the given Invoker.
func NewEngine(llm Invoker, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{llm: llm, log: log}
}

// Run analyzes the given source code and returns the completed State. A
// failing step aborts the run; the step's error is wrapped with its name but
// otherwise preserved, so callers can still detect terminal conditions such
// as key exhaustion with errors.As.
func (e *Engine) Run(ctx context.Context, code string) (*State, error) {
	start := time.Now()
	s := &State{Code: code}

	steps := []struct {
		name   string
		prompt func() string
		out    *string
	}{
		{"style", func() string { return StylePrompt(code) }, &s.StyleReport},
		{"type", func() string { return TypePrompt(code) }, &s.TypeReport},
		{"security", func() string { return SecurityPrompt(code) }, &s.SecurityReport},
		{"complexity", func() string { return ComplexityPrompt(code) }, &s.ComplexityReport},
		{"documentation", func() string { return DocumentationPrompt(code) }, &s.DocumentationReport},
		{"report", func() string { return ReportPrompt(s) }, &s.FinalReport},
		{"fixer", func() string { return FixerPrompt(code, s.FinalReport) }, &s.FixedCode},
	}

	for _, step := range steps {
		text, err := e.llm.Invoke(ctx, step.prompt())
		if err != nil {
			return nil, fmt.Errorf("%s analysis: %w", step.name, err)
		}
		*step.out = text
	}

	e.log.WithField("duration", time.Since(start).Round(time.Millisecond)).
		Debug("analysis chain complete")
	return s, nil
}
