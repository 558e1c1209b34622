// Package assist drafts catalog descriptions with a Bedrock-hosted model.
// It is an editing aid for the admin screens and is never called by the
// import pipeline.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/go-playground/validator/v10"

	"github.com/ignite/software-catalog/internal/pkg/logger"
)

var (
	// ErrDisabled is returned when drafting is switched off in config.
	ErrDisabled = errors.New("assist: description drafting is disabled")
	// ErrInvalidRequest wraps validation failures of a DraftRequest.
	ErrInvalidRequest = errors.New("assist: invalid request")
)

// InvokeModelAPI is the subset of the Bedrock runtime client used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// DraftRequest names the product to describe.
type DraftRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	URL      string `json:"url" validate:"omitempty,url"`
	Language string `json:"language" validate:"omitempty,oneof=de en"`
}

// Draft is the model's suggestion. Admins edit it before saving.
type Draft struct {
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type invokeRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system,omitempty"`
	Messages         []message `json:"messages"`
	Temperature      float64   `json:"temperature,omitempty"`
}

type invokeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Drafter calls InvokeModel with the Anthropic messages body.
type Drafter struct {
	client    InvokeModelAPI
	modelID   string
	maxTokens int
	enabled   bool
	validate  *validator.Validate
	prompts   *prompts
}

// NewDrafter creates a drafter. A nil client or enabled=false yields a
// drafter that always returns ErrDisabled.
func NewDrafter(client InvokeModelAPI, modelID string, maxTokens int, enabled bool) *Drafter {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Drafter{
		client:    client,
		modelID:   modelID,
		maxTokens: maxTokens,
		enabled:   enabled && client != nil,
		validate:  validator.New(),
		prompts:   defaultPrompts,
	}
}

// SetUserPrompt replaces the user prompt with a Liquid template. The
// bindings are name, url and language.
func (d *Drafter) SetUserPrompt(src string) error {
	p, err := newPrompts(systemPromptTemplate, src)
	if err != nil {
		return err
	}
	d.prompts = p
	return nil
}

// Enabled reports whether DraftDescription will call the model.
func (d *Drafter) Enabled() bool { return d.enabled }

// DraftDescription asks the model for a short and a long description.
func (d *Drafter) DraftDescription(ctx context.Context, req DraftRequest) (*Draft, error) {
	if !d.enabled {
		return nil, ErrDisabled
	}
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if err := d.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	system, user, err := d.prompts.render(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(invokeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        d.maxTokens,
		System:           system,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: user}},
		}},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := d.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(d.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("Bedrock API error: %w", err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	logger.Debug("assist: drafted description", "name", req.Name,
		"input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)

	return parseDraft(text.String()), nil
}

// parseDraft accepts the requested JSON object, possibly wrapped in prose
// or a code fence. Anything else is split into first line and remainder.
func parseDraft(text string) *Draft {
	text = strings.TrimSpace(text)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var v struct {
			Short string `json:"short"`
			Long  string `json:"long"`
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &v); err == nil && (v.Short != "" || v.Long != "") {
			return &Draft{ShortDescription: strings.TrimSpace(v.Short), Description: strings.TrimSpace(v.Long)}
		}
	}
	short, long, _ := strings.Cut(text, "\n")
	return &Draft{ShortDescription: strings.TrimSpace(short), Description: strings.TrimSpace(long)}
}
