package entities

import (
	"time"

	"github.com/google/uuid"
)

type RecordingSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Title     *string   `json:"title" gorm:"type:varchar(255)"`
	Notes     *string   `json:"notes" gorm:"type:text"`
	Favorite  bool      `json:"favorite" gorm:"not null;default:false"`
	Category  *string   `json:"category" gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`

	Chunks []AudioChunk `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (RecordingSession) TableName() string {
	return "recording_sessions"
}

// SessionSummary is the aggregate view of a session: first chunk time, total
// duration and chunk count are derived from the chunk rows, not stored.
type SessionSummary struct {
	ID              uuid.UUID  `json:"id"`
	Title           *string    `json:"title"`
	Favorite        bool       `json:"favorite"`
	Category        *string    `json:"category"`
	FirstChunkTime  *time.Time `json:"first_chunk_time"`
	DurationSeconds float64    `json:"duration_seconds"`
	ChunkCount      int        `json:"chunk_count"`
}
