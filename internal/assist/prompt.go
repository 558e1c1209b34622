package assist

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"
)

const systemPromptTemplate = `You write neutral, factual entries for a software catalog used by schools. ` +
	`Answer in {% if language == "en" %}English{% else %}German{% endif %} with a JSON object of the form ` +
	`{"short": "<one sentence, at most 160 characters>", "long": "<two to four sentences>"}` +
	` and nothing else. Do not invent prices or features you are unsure about.`

const userPromptTemplate = `Describe the software product "{{ name }}"` +
	`{% if url != "" %} (website: {{ url }}){% endif %}.`

var engine = liquid.NewEngine()

// defaultPrompts is parsed at init; the templates are constants.
var defaultPrompts = mustPrompts(systemPromptTemplate, userPromptTemplate)

type prompts struct {
	system *liquid.Template
	user   *liquid.Template
}

func newPrompts(system, user string) (*prompts, error) {
	s, serr := engine.ParseString(system)
	if serr != nil {
		return nil, fmt.Errorf("assist: system prompt: %w", serr)
	}
	u, uerr := engine.ParseString(user)
	if uerr != nil {
		return nil, fmt.Errorf("assist: user prompt: %w", uerr)
	}
	return &prompts{system: s, user: u}, nil
}

func mustPrompts(system, user string) *prompts {
	p, err := newPrompts(system, user)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *prompts) render(req DraftRequest) (system, user string, err error) {
	b := liquid.Bindings{"name": req.Name, "url": req.URL, "language": req.Language}
	system, serr := p.system.RenderString(b)
	if serr != nil {
		return "", "", fmt.Errorf("assist: render system prompt: %w", serr)
	}
	user, uerr := p.user.RenderString(b)
	if uerr != nil {
		return "", "", fmt.Errorf("assist: render user prompt: %w", uerr)
	}
	return system, strings.TrimSpace(user), nil
}
