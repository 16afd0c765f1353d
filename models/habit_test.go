package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPGrantsDecodesCanonicalMap(t *testing.T) {
	var g XPGrants
	require.NoError(t, json.Unmarshal([]byte(`{"2024-03-01":"2024-03-01T09:00:00Z"}`), &g))
	assert.True(t, g["2024-03-01"].Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func TestXPGrantsDecodesLegacyShapes(t *testing.T) {
	var g XPGrants
	raw := `["2024-03-01", {"date": "2024-03-02", "grantedAt": "2024-03-02T10:00:00Z"}, "2024-03-01"]`
	require.NoError(t, json.Unmarshal([]byte(raw), &g))

	require.Len(t, g, 2)
	assert.True(t, g["2024-03-01"].IsZero())
	assert.True(t, g["2024-03-02"].Equal(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)))

	// re-encoding always produces the canonical map
	out, err := json.Marshal(g)
	require.NoError(t, err)
	var canonical map[string]time.Time
	require.NoError(t, json.Unmarshal(out, &canonical))
	assert.Len(t, canonical, 2)
}

func TestXPGrantsRejectsUnknownShape(t *testing.T) {
	var g XPGrants
	assert.Error(t, json.Unmarshal([]byte(`42`), &g))
	assert.Error(t, json.Unmarshal([]byte(`[42]`), &g))
}

func TestBattleTransitions(t *testing.T) {
	allowed := [][2]BattleStatus{
		{BattleWaiting, BattleActive},
		{BattleWaiting, BattleRejected},
		{BattlePending, BattleActive},
		{BattleActive, BattleCompleted},
	}
	for _, edge := range allowed {
		assert.True(t, edge[0].CanTransitionTo(edge[1]), "%s -> %s", edge[0], edge[1])
	}

	refused := [][2]BattleStatus{
		{BattleCompleted, BattleActive},
		{BattleRejected, BattleActive},
		{BattlePending, BattleCompleted},
		{BattleWaiting, BattleCompleted},
		{BattleActive, BattleWaiting},
	}
	for _, edge := range refused {
		h := &Habit{Type: HabitTypeBattle, BattleStatus: edge[0]}
		err := h.TransitionBattle(edge[1])
		var illegal IllegalTransitionError
		require.ErrorAs(t, err, &illegal)
		assert.Equal(t, edge[0], h.BattleStatus)
	}
}

func TestCompletedDatesStaySortedAndUnique(t *testing.T) {
	h := &Habit{}
	h.MarkCompleted("2024-03-02")
	h.MarkCompleted("2024-03-01")
	h.MarkCompleted("2024-03-02")
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, h.CompletedDates)

	h.UnmarkCompleted("2024-03-01")
	assert.Equal(t, []string{"2024-03-02"}, h.CompletedDates)
	assert.False(t, h.IsCompletedOn("2024-03-01"))
}

func TestBattleEndsAt(t *testing.T) {
	h := &Habit{BattleDuration: 7}
	_, ok := h.BattleEndsAt()
	assert.False(t, ok)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	h.BattleStartDate = &start
	end, ok := h.BattleEndsAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC), end)
}
