package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-capture/entities"
)

// seedAnalyticsFixture creates three sessions with known UTC chunk times:
//
//	A: 2026-05-04 (Mon) 09:00, chunks 0..1, 5 min total
//	B: 2026-05-05 (Tue) 09:30, chunk 0, 2 min
//	C: 2026-06-10 (Wed) 21:15, chunk 0, 10 min
func seedAnalyticsFixture(t *testing.T, engine *Engine) (a, b, c uuid.UUID) {
	t.Helper()

	aStart := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	a = seedSession(t, engine, aStart)
	seedChunk(t, engine, a, 0, aStart, 3*time.Minute)
	seedChunk(t, engine, a, 1, aStart.Add(3*time.Minute), 2*time.Minute)

	bStart := time.Date(2026, 5, 5, 9, 30, 0, 0, time.UTC)
	b = seedSession(t, engine, bStart)
	seedChunk(t, engine, b, 0, bStart, 2*time.Minute)

	cStart := time.Date(2026, 6, 10, 21, 15, 0, 0, time.UTC)
	c = seedSession(t, engine, cStart)
	seedChunk(t, engine, c, 0, cStart, 10*time.Minute)

	return a, b, c
}

func TestSessionsByHour(t *testing.T) {
	engine := openTestEngine(t)
	seedAnalyticsFixture(t, engine)

	counts, err := NewAnalyticsRepository(engine).SessionsByHour(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, HourCount{Hour: 9, Sessions: 2}, counts[0])
	assert.Equal(t, HourCount{Hour: 21, Sessions: 1}, counts[1])
}

func TestSessionsByDayOfWeek(t *testing.T) {
	engine := openTestEngine(t)
	seedAnalyticsFixture(t, engine)

	counts, err := NewAnalyticsRepository(engine).SessionsByDayOfWeek(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 3)
	// sqlite %w: 1 = Monday, 2 = Tuesday, 3 = Wednesday.
	assert.Equal(t, DayOfWeekCount{Day: 1, Sessions: 1}, counts[0])
	assert.Equal(t, DayOfWeekCount{Day: 2, Sessions: 1}, counts[1])
	assert.Equal(t, DayOfWeekCount{Day: 3, Sessions: 1}, counts[2])
}

func TestLongestSession(t *testing.T) {
	engine := openTestEngine(t)
	_, _, c := seedAnalyticsFixture(t, engine)

	longest, err := NewAnalyticsRepository(engine).LongestSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, longest)
	assert.Equal(t, c, longest.SessionID)
	assert.InDelta(t, 600.0, longest.DurationSeconds, 0.01)
}

func TestLongestSessionEmpty(t *testing.T) {
	engine := openTestEngine(t)
	longest, err := NewAnalyticsRepository(engine).LongestSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, longest)
}

func TestMostActiveMonth(t *testing.T) {
	engine := openTestEngine(t)
	seedAnalyticsFixture(t, engine)

	month, err := NewAnalyticsRepository(engine).MostActiveMonth(context.Background())
	require.NoError(t, err)
	require.NotNil(t, month)
	assert.Equal(t, "2026-05", month.Month)
	assert.Equal(t, 2, month.Sessions)
}

func TestMostActiveMonthEmpty(t *testing.T) {
	engine := openTestEngine(t)
	month, err := NewAnalyticsRepository(engine).MostActiveMonth(context.Background())
	require.NoError(t, err)
	assert.Nil(t, month)
}

func TestDailySentiment(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()
	transcripts := NewTranscriptRepository(engine)

	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	sessionID := seedSession(t, engine, start)
	chunk := seedChunk(t, engine, sessionID, 0, start, 3*time.Minute)

	require.NoError(t, transcripts.InsertSegments(ctx, []*entities.TranscriptSegment{
		makeSegment(chunk.ID, 0, 2, "good day", "en", floatPtr(0.8)),
		makeSegment(chunk.ID, 2, 4, "bad news", "en", floatPtr(-0.4)),
		makeSegment(chunk.ID, 4, 6, "no sentiment", "en", nil),
	}))

	rows, err := NewAnalyticsRepository(engine).DailySentiment(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-05-04", rows[0].Day)
	assert.InDelta(t, 0.2, rows[0].AvgSentiment, 0.0001, "segments without sentiment are excluded from the average")
}

func TestLanguageDistribution(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()
	transcripts := NewTranscriptRepository(engine)

	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	sessionID := seedSession(t, engine, start)
	chunk := seedChunk(t, engine, sessionID, 0, start, 3*time.Minute)

	require.NoError(t, transcripts.InsertSegments(ctx, []*entities.TranscriptSegment{
		makeSegment(chunk.ID, 0, 2, "hello", "en", nil),
		makeSegment(chunk.ID, 2, 4, "world", "en", nil),
		makeSegment(chunk.ID, 4, 6, "hola", "es", nil),
	}))

	rows, err := NewAnalyticsRepository(engine).LanguageDistribution(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, LanguageCount{Language: "en", Segments: 2}, rows[0])
	assert.Equal(t, LanguageCount{Language: "es", Segments: 1}, rows[1])
}
