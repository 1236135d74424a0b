package dialogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsched/models"
)

func slotAt(day, hour, min int) models.SlotOption {
	start := time.Date(2025, 12, day, hour, min, 0, 0, time.UTC)
	return models.SlotOption{Start: start, End: start.Add(30 * time.Minute)}
}

func TestResolveSelection(t *testing.T) {
	offer := []models.SlotOption{
		slotAt(16, 15, 30),
		slotAt(16, 12, 0),
		slotAt(17, 9, 0),
	}

	tests := []struct {
		phrase string
		want   models.SlotOption
	}{
		{"the first one", offer[0]},
		{"second", offer[1]},
		{"let's go with the third option", offer[2]},
		{"option 2", offer[1]},
		{"2", offer[1]},
		{"the earlier one", offer[0]},
		{"the later one", offer[2]},
		{"the 12pm one", offer[1]},
		{"the 3:30 pm one", offer[0]},
		{"wednesday works best", offer[2]},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			got, err := resolveSelection(tt.phrase, offer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestResolveSelectionAmbiguous(t *testing.T) {
	offer := []models.SlotOption{
		slotAt(16, 9, 0),
		slotAt(17, 9, 0),
	}

	t.Run("clock matching two options", func(t *testing.T) {
		_, err := resolveSelection("the 9 am one", offer)
		require.Error(t, err)
		require.True(t, IsSelectionAmbiguous(err))
		assert.Equal(t, 2, err.(*SelectionAmbiguousError).Matches)
	})

	t.Run("phrase matching nothing", func(t *testing.T) {
		_, err := resolveSelection("the 2 pm one", offer)
		require.Error(t, err)
		assert.True(t, IsSelectionAmbiguous(err))
	})

	t.Run("ordinal beyond the offer", func(t *testing.T) {
		_, err := resolveSelection("the third one", offer)
		require.Error(t, err)
		assert.True(t, IsSelectionAmbiguous(err))
	})

	t.Run("empty offer", func(t *testing.T) {
		_, err := resolveSelection("the first one", nil)
		require.Error(t, err)
		assert.True(t, IsSelectionAmbiguous(err))
	})
}
