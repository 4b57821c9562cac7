package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveStageOrder(t *testing.T) {
	expected := []Stage{
		StageProcessing,
		StageSubmitted,
		StageUnderReview,
		StagePreApproved,
		StageValuation,
		StageFOLProcessing,
		StageFOLReceived,
		StageFOLSigned,
	}
	assert.Equal(t, expected, ActiveStages())
}

func TestNextIsStrictlyForward(t *testing.T) {
	active := ActiveStages()
	for i, stage := range active {
		next, err := stage.Next()
		require.NoError(t, err, "stage %s", stage)

		if i == len(active)-1 {
			assert.Equal(t, StageDisbursed, next, "last active stage must reach disbursed")
			continue
		}
		assert.Equal(t, active[i+1], next)

		// Strictly later in the order
		assert.Greater(t, next.activeIndex(), stage.activeIndex())
	}
}

func TestNextFromTerminal(t *testing.T) {
	for _, stage := range TerminalStages() {
		_, err := stage.Next()
		assert.ErrorIs(t, err, ErrStageTerminal, "stage %s", stage)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, stage := range ActiveStages() {
		assert.False(t, stage.IsTerminal(), "stage %s", stage)
	}
	for _, stage := range TerminalStages() {
		assert.True(t, stage.IsTerminal(), "stage %s", stage)
	}
}

func TestParseStage(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		stage, err := ParseStage("valuation")
		require.NoError(t, err)
		assert.Equal(t, StageValuation, stage)

		stage, err = ParseStage("withdrawn")
		require.NoError(t, err)
		assert.Equal(t, StageWithdrawn, stage)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseStage("approved")
		assert.ErrorIs(t, err, ErrUnknownStage)

		_, err = ParseStage("")
		assert.ErrorIs(t, err, ErrUnknownStage)
	})
}
