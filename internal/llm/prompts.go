package llm

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/ent0n29/flightdesk/internal/memory"
)

//go:embed prompts/prompts.yaml
var defaultPrompts []byte

// Prompt is one catalogue entry.
type Prompt struct {
	System      string  `yaml:"system"`
	Template    string  `yaml:"template"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	JSON        bool    `yaml:"json"`

	tmpl *template.Template
}

// Catalogue holds the prompts for every Kind.
type Catalogue struct {
	prompts map[Kind]*Prompt
}

// LoadCatalogue parses the prompt file at path, or the built-in catalogue when
// path is empty.
func LoadCatalogue(path string) (*Catalogue, error) {
	raw := defaultPrompts
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts %s: %w", path, err)
		}
		raw = b
	}
	return ParseCatalogue(raw)
}

// DefaultCatalogue returns the built-in prompts. It panics if they are
// malformed, which only a broken build can cause.
func DefaultCatalogue() *Catalogue {
	c, err := ParseCatalogue(defaultPrompts)
	if err != nil {
		panic(err)
	}
	return c
}

func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var doc map[Kind]*Prompt
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	for _, kind := range []Kind{KindIntent, KindExtract, KindChat} {
		p := doc[kind]
		if p == nil || strings.TrimSpace(p.Template) == "" {
			return nil, fmt.Errorf("prompts: missing %q template", kind)
		}
		tmpl, err := template.New(string(kind)).Option("missingkey=zero").Parse(p.Template)
		if err != nil {
			return nil, fmt.Errorf("prompts: %s: %w", kind, err)
		}
		p.tmpl = tmpl
	}
	return &Catalogue{prompts: doc}, nil
}

// Build renders the prompt for kind with data. input is the raw user message.
func (c *Catalogue) Build(kind Kind, data any, input string) (Request, error) {
	p := c.prompts[kind]
	if p == nil {
		return Request{}, fmt.Errorf("prompts: unknown kind %q", kind)
	}
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return Request{}, fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return Request{
		Kind:        kind,
		System:      strings.TrimSpace(p.System),
		Prompt:      strings.TrimSpace(buf.String()),
		Input:       input,
		JSON:        p.JSON,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}, nil
}

// IntentData fills the intent template.
type IntentData struct {
	Today   string
	Context string
	Slots   string
	Message string
	Email   string
}

// ExtractData fills the extract template.
type ExtractData struct {
	Fields  string
	Context string
	Message string
}

// ChatData fills the chat template.
type ChatData struct {
	Context string
	Message string
}

// Transcript formats turns as "ROLE: text" lines, oldest first. An empty
// history renders as a fixed placeholder.
func Transcript(turns []memory.Turn) string {
	if len(turns) == 0 {
		return "No previous conversation."
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToUpper(string(t.Role)))
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(t.Text))
	}
	return b.String()
}
