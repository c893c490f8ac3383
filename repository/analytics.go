package repository

import (
	"context"

	"github.com/google/uuid"
)

// A session's position in time is its first chunk (chunk_index = 0), so the
// per-hour/day/month counts group over those rows. All queries here are
// read-only aggregations; WAL mode lets them run alongside capture writes.
// Where a "most X" query can tie, the first group in scan order wins — that
// is the policy, not an accident of the engine.

type HourCount struct {
	Hour     int `json:"hour"`
	Sessions int `json:"sessions"`
}

type DayOfWeekCount struct {
	// Day follows sqlite's %w: 0 = Sunday .. 6 = Saturday.
	Day      int `json:"day"`
	Sessions int `json:"sessions"`
}

type SessionDuration struct {
	SessionID       uuid.UUID `json:"session_id"`
	DurationSeconds float64   `json:"duration_seconds"`
}

type MonthCount struct {
	Month    string `json:"month"`
	Sessions int    `json:"sessions"`
}

type DaySentiment struct {
	Day          string  `json:"day"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Segments int    `json:"segments"`
}

type AnalyticsRepository interface {
	SessionsByHour(ctx context.Context) ([]HourCount, error)
	SessionsByDayOfWeek(ctx context.Context) ([]DayOfWeekCount, error)
	LongestSession(ctx context.Context) (*SessionDuration, error)
	MostActiveMonth(ctx context.Context) (*MonthCount, error)
	DailySentiment(ctx context.Context) ([]DaySentiment, error)
	LanguageDistribution(ctx context.Context) ([]LanguageCount, error)
}

type analyticsRepo struct {
	engine *Engine
}

func NewAnalyticsRepository(engine *Engine) AnalyticsRepository {
	return &analyticsRepo{engine: engine}
}

func (r *analyticsRepo) SessionsByHour(ctx context.Context) ([]HourCount, error) {
	var counts []HourCount
	err := r.engine.DB().WithContext(ctx).Raw(`
		SELECT CAST(strftime('%H', start_time) AS INTEGER) AS hour, COUNT(*) AS sessions
		FROM audio_chunks
		WHERE chunk_index = 0
		GROUP BY hour
		ORDER BY hour ASC
	`).Scan(&counts).Error
	if err != nil {
		return nil, translate(err)
	}
	return counts, nil
}

func (r *analyticsRepo) SessionsByDayOfWeek(ctx context.Context) ([]DayOfWeekCount, error) {
	var counts []DayOfWeekCount
	err := r.engine.DB().WithContext(ctx).Raw(`
		SELECT CAST(strftime('%w', start_time) AS INTEGER) AS day, COUNT(*) AS sessions
		FROM audio_chunks
		WHERE chunk_index = 0
		GROUP BY day
		ORDER BY day ASC
	`).Scan(&counts).Error
	if err != nil {
		return nil, translate(err)
	}
	return counts, nil
}

// LongestSession returns nil when no chunks exist.
func (r *analyticsRepo) LongestSession(ctx context.Context) (*SessionDuration, error) {
	var rows []SessionDuration
	err := r.engine.DB().WithContext(ctx).Raw(`
		SELECT session_id, SUM((julianday(end_time) - julianday(start_time)) * 86400.0) AS duration_seconds
		FROM audio_chunks
		GROUP BY session_id
		ORDER BY duration_seconds DESC
		LIMIT 1
	`).Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// MostActiveMonth returns nil when no chunks exist.
func (r *analyticsRepo) MostActiveMonth(ctx context.Context) (*MonthCount, error) {
	var rows []MonthCount
	err := r.engine.DB().WithContext(ctx).Raw(`
		SELECT strftime('%Y-%m', start_time) AS month, COUNT(*) AS sessions
		FROM audio_chunks
		WHERE chunk_index = 0
		GROUP BY month
		ORDER BY sessions DESC
		LIMIT 1
	`).Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *analyticsRepo) DailySentiment(ctx context.Context) ([]DaySentiment, error) {
	var rows []DaySentiment
	err := r.engine.DB().WithContext(ctx).Raw(`
		SELECT date(c.start_time) AS day, AVG(t.sentiment) AS avg_sentiment
		FROM transcript_segments t
		JOIN audio_chunks c ON c.id = t.chunk_id
		WHERE t.sentiment IS NOT NULL
		GROUP BY day
		ORDER BY day ASC
	`).Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *analyticsRepo) LanguageDistribution(ctx context.Context) ([]LanguageCount, error) {
	var rows []LanguageCount
	err := r.engine.DB().WithContext(ctx).Raw(`
		SELECT language, COUNT(*) AS segments
		FROM transcript_segments
		GROUP BY language
		ORDER BY segments DESC
	`).Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}
