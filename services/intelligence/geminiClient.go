// File: service/ai/gemini_client.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"smartsched/models"
)

const extractionPrompt = `You classify one user utterance from a meeting-scheduling conversation.
Reply with ONLY a JSON object, no prose, no code fences:
{"intent":"...","timePhrases":["..."],"durationPhrase":"...","selectionPhrase":"..."}

intent is one of:
  schedule - user wants to set up a meeting
  provide  - user states or refines time/date/duration preferences
  select   - user picks one of the offered slots
  confirm  - user agrees to the single slot just offered
  cancel   - user abandons the scheduling attempt
  chat     - anything else

timePhrases: the literal time/date fragments ("tuesday afternoon", "not before 10 am").
durationPhrase: the literal duration fragment ("half an hour"), or "".
selectionPhrase: the literal pick ("the first one", "the 3pm one"), or "".

Utterance: %q`

type GeminiExtractor struct {
	model *genai.GenerativeModel
}

func NewGeminiExtractor(apiKey string) (*GeminiExtractor, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiExtractor{model: model}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, text string) (models.UtteranceSignal, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(extractionPrompt, text)))
	if err != nil {
		return models.UtteranceSignal{}, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return models.UtteranceSignal{}, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return parseSignal(sb.String())
}

// parseSignal tolerates the model wrapping its JSON in markdown fences.
func parseSignal(raw string) (models.UtteranceSignal, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			raw = raw[i : j+1]
		}
	}
	var sig models.UtteranceSignal
	if err := json.Unmarshal([]byte(raw), &sig); err != nil {
		return models.UtteranceSignal{}, fmt.Errorf("unparseable extraction output: %w", err)
	}
	switch sig.Intent {
	case models.IntentSchedule, models.IntentProvide, models.IntentSelect,
		models.IntentConfirm, models.IntentCancel, models.IntentChat:
	default:
		return models.UtteranceSignal{}, fmt.Errorf("unknown intent %q", sig.Intent)
	}
	return sig, nil
}
