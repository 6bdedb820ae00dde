package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollrank/rollrank/internal/domain/model"
)

func TestMemory_InsertScoreIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec := model.ScoreRecord{EventID: 10, CompetitorID: 7, Name: "Alpha", Points: 500}
	require.NoError(t, m.InsertScore(ctx, rec))
	require.NoError(t, m.InsertScore(ctx, rec))
	require.NoError(t, m.InsertScore(ctx, model.ScoreRecord{EventID: 10, CompetitorID: 8, Name: "Beta", Points: 300}))

	scores, err := m.EventScores(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, scores, 2)

	names := map[int]string{}
	for _, s := range scores {
		names[s.CompetitorID] = s.Name
	}
	assert.Equal(t, "Alpha", names[7])
	assert.Equal(t, "Beta", names[8])
}

func TestMemory_EventScoresEmptyForUnknownEvent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	scores, err := m.EventScores(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestMemory_RecentScoresOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// Three events, two sharing (year, week) so the event id breaks the tie.
	events := []model.Event{
		{ID: 1, Name: "Early", Week: 5, Year: 2022},
		{ID: 2, Name: "Mid", Week: 30, Year: 2023},
		{ID: 3, Name: "Late A", Week: 10, Year: 2024},
		{ID: 4, Name: "Late B", Week: 10, Year: 2024},
	}
	for _, ev := range events {
		require.NoError(t, m.UpsertEvent(ctx, ev))
		require.NoError(t, m.InsertScore(ctx, model.ScoreRecord{
			EventID: ev.ID, CompetitorID: 7, Name: "Alpha", Points: int64(100 * ev.ID),
		}))
	}

	recent, err := m.RecentScores(ctx, 7, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	assert.Equal(t, 4, recent[0].EventID) // 2024 w10, higher id first
	assert.Equal(t, 3, recent[1].EventID) // 2024 w10
	assert.Equal(t, 2, recent[2].EventID) // 2023 w30
	assert.Equal(t, int64(400), recent[0].Points)
	assert.Equal(t, 10, recent[0].Week)
	assert.Equal(t, 2024, recent[0].Year)
}

func TestMemory_UpsertEventKeepsFirstObservation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.UpsertEvent(ctx, model.Event{ID: 5, Name: "Open", Week: 8, Year: 2024}))
	require.NoError(t, m.UpsertEvent(ctx, model.Event{ID: 5, Name: "Renamed", Week: 9, Year: 2024}))
	require.NoError(t, m.InsertScore(ctx, model.ScoreRecord{EventID: 5, CompetitorID: 1, Points: 100}))

	recent, err := m.RecentScores(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 8, recent[0].Week)
}

func TestMemory_SaveAggregatesCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	aggs := []model.Aggregate{{CompetitorID: 7, Name: "Alpha", Weighted: 9_000_000, Count: 2}}
	require.NoError(t, m.SaveAggregates(ctx, 26, 2024, aggs))

	aggs[0].Weighted = 0
	saved := m.SavedAggregates(26, 2024)
	require.Len(t, saved, 1)
	assert.Equal(t, int64(9_000_000), saved[0].Weighted)
	assert.Nil(t, m.SavedAggregates(27, 2024))
}
