package systemprompt

import (
	"fmt"
	"strings"
)

// Generator is system prompt generator framework.
// extra providers are rendered after the registered ones for a single call only.
type Generator interface {
	Generate(extra ...ContextProvider) string
}

// BaseGenerator holds context providers shared by every generated prompt.
// Providers are registered at construction time and never change afterwards.
type BaseGenerator struct {
	contextProviders []ContextProvider
}

func (g *BaseGenerator) ContextProviders() []ContextProvider {
	return g.contextProviders
}

// AddContextProviders registers new context providers, titles already registered are skipped
func (g *BaseGenerator) AddContextProviders(providers ...ContextProvider) {
	for _, provider := range providers {
		if g.contextProvider(provider.Title()) == nil {
			g.contextProviders = append(g.contextProviders, provider)
		}
	}
}

func (g *BaseGenerator) contextProvider(title string) ContextProvider {
	for _, p := range g.contextProviders {
		if p.Title() == title {
			return p
		}
	}
	return nil
}

// RenderContext renders registered and extra providers as an extra information section
func (g *BaseGenerator) RenderContext(extra ...ContextProvider) []string {
	providers := make([]ContextProvider, 0, len(g.contextProviders)+len(extra))
	providers = append(providers, g.contextProviders...)
	providers = append(providers, extra...)
	var parts []string
	for _, provider := range providers {
		info := provider.Info()
		if info == "" {
			continue
		}
		if len(parts) == 0 {
			parts = append(parts, "# EXTRA INFORMATION AND CONTEXT")
		}
		parts = append(parts, fmt.Sprintf("## %s", provider.Title()), info, "")
	}
	return parts
}

// Join joins prompt parts into the final prompt
func Join(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
