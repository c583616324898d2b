package cot

import (
	"fmt"

	"github.com/bububa/stockcritique/components/systemprompt"
)

// Generator is Chain-of-Thought system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	background      []string
	steps           []string
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{"- You are a careful financial research assistant."}
	}
	ret.outputInstructs = append(ret.outputInstructs, "- Always respond using the proper JSON schema.", "- Always use the available additional information and context to enhance the response.")
	return ret
}

func (g *Generator) Generate(extra ...systemprompt.ContextProvider) string {
	sections := []struct {
		title   string
		content []string
	}{
		{"IDENTITY and PURPOSE", g.background},
		{"INTERNAL ASSISTANT STEPS", g.steps},
		{"OUTPUT INSTRUCTIONS", g.outputInstructs},
	}
	var promptParts []string
	for _, section := range sections {
		if len(section.content) > 0 {
			promptParts = append(promptParts, fmt.Sprintf("# %s", section.title))
			promptParts = append(promptParts, section.content...)
			promptParts = append(promptParts, "")
		}
	}
	promptParts = append(promptParts, g.RenderContext(extra...)...)
	return systemprompt.Join(promptParts)
}
