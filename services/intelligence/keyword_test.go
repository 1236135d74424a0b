// File: service/ai/keyword_test.go
package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsched/models"
)

func TestKeywordExtractorIntents(t *testing.T) {
	k := NewKeywordExtractor()

	tests := []struct {
		text string
		want string
	}{
		{"I need to schedule a meeting with my advisor", models.IntentSchedule},
		{"can you book something for next week", models.IntentSchedule},
		{"tuesday afternoon would be great", models.IntentProvide},
		{"45 minutes", models.IntentProvide},
		{"not before 10 am", models.IntentProvide},
		{"the first one", models.IntentSelect},
		{"option 2 please", models.IntentSelect},
		{"the 3pm one", models.IntentSelect},
		{"2", models.IntentSelect},
		{"yes, sounds good", models.IntentConfirm},
		{"never mind, cancel it", models.IntentCancel},
		{"forget it", models.IntentCancel},
		{"how are you doing", models.IntentChat},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sig, err := k.Extract(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sig.Intent)
		})
	}
}

func TestKeywordExtractorCarriesPhrases(t *testing.T) {
	k := NewKeywordExtractor()

	sig, err := k.Extract(context.Background(), "Schedule a 30 minute meeting next Tuesday afternoon")
	require.NoError(t, err)
	assert.Equal(t, models.IntentSchedule, sig.Intent)
	assert.Equal(t, "30 minute", sig.DurationPhrase)
	require.Len(t, sig.TimePhrases, 1)
	assert.Contains(t, sig.TimePhrases[0], "next tuesday afternoon")
}

func TestServiceFallsBackOnPrimaryFailure(t *testing.T) {
	svc := NewService(failingExtractor{})
	sig, err := svc.Extract(context.Background(), "tomorrow morning")
	require.NoError(t, err)
	assert.Equal(t, models.IntentProvide, sig.Intent)
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string) (models.UtteranceSignal, error) {
	return models.UtteranceSignal{}, assert.AnError
}

func TestParseSignalToleratesFences(t *testing.T) {
	raw := "```json\n{\"intent\":\"provide\",\"timePhrases\":[\"tuesday afternoon\"]}\n```"
	sig, err := parseSignal(raw)
	require.NoError(t, err)
	assert.Equal(t, models.IntentProvide, sig.Intent)
	assert.Equal(t, []string{"tuesday afternoon"}, sig.TimePhrases)

	_, err = parseSignal("not json at all")
	require.Error(t, err)

	_, err = parseSignal(`{"intent":"everything"}`)
	require.Error(t, err)
}
