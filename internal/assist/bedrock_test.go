package assist

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBedrock struct {
	input *bedrockruntime.InvokeModelInput
	reply string
	err   error
}

func (f *fakeBedrock) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	body, _ := json.Marshal(map[string]any{
		"content":     []map[string]string{{"type": "text", "text": f.reply}},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 40, "output_tokens": 60},
	})
	return &bedrockruntime.InvokeModelOutput{Body: body}, nil
}

func TestDraftDescription(t *testing.T) {
	client := &fakeBedrock{reply: "Here you go:\n```json\n{\"short\": \"Dateien teilen.\", \"long\": \"Nextcloud ist eine Plattform.\"}\n```"}
	d := NewDrafter(client, "anthropic.claude-3-haiku-20240307-v1:0", 0, true)

	draft, err := d.DraftDescription(context.Background(), DraftRequest{Name: " Nextcloud ", URL: "https://nextcloud.com"})
	require.NoError(t, err)
	assert.Equal(t, "Dateien teilen.", draft.ShortDescription)
	assert.Equal(t, "Nextcloud ist eine Plattform.", draft.Description)

	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", aws.ToString(client.input.ModelId))
	var sent invokeRequest
	require.NoError(t, json.Unmarshal(client.input.Body, &sent))
	assert.Equal(t, "bedrock-2023-05-31", sent.AnthropicVersion)
	assert.Equal(t, 1024, sent.MaxTokens)
	assert.Contains(t, sent.Messages[0].Content[0].Text, `"Nextcloud"`)
	assert.Contains(t, sent.System, "German")
}

func TestDraftDescription_PlainTextFallback(t *testing.T) {
	d := NewDrafter(&fakeBedrock{reply: "Short line.\nLonger text\nacross lines."}, "m", 256, true)

	draft, err := d.DraftDescription(context.Background(), DraftRequest{Name: "Moodle", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "Short line.", draft.ShortDescription)
	assert.Equal(t, "Longer text\nacross lines.", draft.Description)
}

func TestDraftDescription_Errors(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		d := NewDrafter(&fakeBedrock{}, "m", 0, false)
		_, err := d.DraftDescription(context.Background(), DraftRequest{Name: "x"})
		assert.ErrorIs(t, err, ErrDisabled)
		assert.False(t, NewDrafter(nil, "m", 0, true).Enabled())
	})

	t.Run("invalid request", func(t *testing.T) {
		client := &fakeBedrock{}
		d := NewDrafter(client, "m", 0, true)
		_, err := d.DraftDescription(context.Background(), DraftRequest{Name: "  ", Language: "fr"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Nil(t, client.input, "model must not be called")
	})

	t.Run("bedrock failure", func(t *testing.T) {
		boom := errors.New("throttling")
		d := NewDrafter(&fakeBedrock{err: boom}, "m", 0, true)
		_, err := d.DraftDescription(context.Background(), DraftRequest{Name: "x"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestPrompts(t *testing.T) {
	system, user, err := defaultPrompts.render(DraftRequest{Name: "Moodle", Language: "en"})
	require.NoError(t, err)
	assert.Contains(t, system, "Answer in English")
	assert.Equal(t, `Describe the software product "Moodle".`, user)

	_, user, err = defaultPrompts.render(DraftRequest{Name: "Moodle", URL: "https://moodle.org"})
	require.NoError(t, err)
	assert.Equal(t, `Describe the software product "Moodle" (website: https://moodle.org).`, user)
}

func TestSetUserPrompt(t *testing.T) {
	client := &fakeBedrock{reply: `{"short":"s","long":"l"}`}
	d := NewDrafter(client, "m", 0, true)
	require.NoError(t, d.SetUserPrompt(`Beschreibe {{ name | upcase }} für Lehrkräfte.`))

	_, err := d.DraftDescription(context.Background(), DraftRequest{Name: "Moodle"})
	require.NoError(t, err)
	var sent invokeRequest
	require.NoError(t, json.Unmarshal(client.input.Body, &sent))
	assert.Equal(t, "Beschreibe MOODLE für Lehrkräfte.", sent.Messages[0].Content[0].Text)

	assert.Error(t, d.SetUserPrompt(`{% if name %}unterminated`))
}
