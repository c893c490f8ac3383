package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voice-capture/entities"
)

// sqliteTimeLayout is the text format the sqlite driver writes time.Time
// values with; aggregate expressions come back as plain text and need to be
// parsed with it.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999999-07:00"

type SessionRepository interface {
	EnsureSession(ctx context.Context, id uuid.UUID, at time.Time) error
	GetSessionByID(ctx context.Context, id uuid.UUID) (*entities.RecordingSession, error)
	ListSessions(ctx context.Context) ([]*entities.SessionSummary, error)
	// DeleteSession removes the session row; chunks and transcripts go with
	// it via schema-level cascade. It returns the file paths of the deleted
	// chunks so the caller can remove the files.
	DeleteSession(ctx context.Context, id uuid.UUID) ([]string, error)
}

type sessionRepo struct {
	engine *Engine
}

func NewSessionRepository(engine *Engine) SessionRepository {
	return &sessionRepo{engine: engine}
}

// EnsureSession inserts the session row if absent. Sessions are created
// implicitly by their first chunk, so this is an insert-if-missing, never an
// update.
func (r *sessionRepo) EnsureSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	session := &entities.RecordingSession{ID: id, CreatedAt: at, UpdatedAt: at}
	err := r.engine.DB().WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(session).Error
	return translate(err)
}

func (r *sessionRepo) GetSessionByID(ctx context.Context, id uuid.UUID) (*entities.RecordingSession, error) {
	session := &entities.RecordingSession{}
	err := r.engine.DB().WithContext(ctx).First(session, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return session, nil
}

type sessionAggRow struct {
	ID              uuid.UUID
	Title           *string
	Favorite        bool
	Category        *string
	FirstChunkTime  *string
	DurationSeconds float64
	ChunkCount      int
}

// ListSessions returns one summary per session; first chunk time, duration
// and chunk count are derived from the chunk rows.
func (r *sessionRepo) ListSessions(ctx context.Context) ([]*entities.SessionSummary, error) {
	var rows []sessionAggRow
	err := r.engine.DB().WithContext(ctx).Raw(`
		SELECT s.id, s.title, s.favorite, s.category,
		       MIN(c.start_time) AS first_chunk_time,
		       COALESCE(SUM((julianday(c.end_time) - julianday(c.start_time)) * 86400.0), 0) AS duration_seconds,
		       COUNT(c.id) AS chunk_count
		FROM recording_sessions s
		LEFT JOIN audio_chunks c ON c.session_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC
	`).Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	summaries := make([]*entities.SessionSummary, 0, len(rows))
	for _, row := range rows {
		summary := &entities.SessionSummary{
			ID:              row.ID,
			Title:           row.Title,
			Favorite:        row.Favorite,
			Category:        row.Category,
			DurationSeconds: row.DurationSeconds,
			ChunkCount:      row.ChunkCount,
		}
		if row.FirstChunkTime != nil {
			t, parseErr := time.Parse(sqliteTimeLayout, *row.FirstChunkTime)
			if parseErr != nil {
				return nil, fmt.Errorf("%w: unparseable chunk time %q for session %s", ErrInvalidData, *row.FirstChunkTime, row.ID)
			}
			summary.FirstChunkTime = &t
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *sessionRepo) DeleteSession(ctx context.Context, id uuid.UUID) ([]string, error) {
	var paths []string
	err := r.engine.DB().WithContext(ctx).
		Model(&entities.AudioChunk{}).
		Where("session_id = ?", id).
		Pluck("file_path", &paths).Error
	if err != nil {
		return nil, translate(err)
	}

	res := r.engine.DB().WithContext(ctx).Delete(&entities.RecordingSession{}, "id = ?", id)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return paths, nil
}
