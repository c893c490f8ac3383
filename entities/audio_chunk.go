package entities

import (
	"time"

	"github.com/google/uuid"
)

type AudioChunk struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SessionID  uuid.UUID `json:"session_id" gorm:"type:uuid;not null;index:idx_audio_chunks_session;uniqueIndex:uniq_session_chunk_index,priority:1"`
	ChunkIndex int       `json:"chunk_index" gorm:"not null;uniqueIndex:uniq_session_chunk_index,priority:2"`
	FilePath   string    `json:"file_path" gorm:"type:varchar(500);not null"`
	StartTime  time.Time `json:"start_time" gorm:"not null;index:idx_audio_chunks_start"`
	EndTime    time.Time `json:"end_time" gorm:"not null"`
	Format     string    `json:"format" gorm:"type:varchar(20);not null"`
	SampleRate int       `json:"sample_rate" gorm:"not null"`
	FileSize   *int64    `json:"file_size" gorm:"type:bigint"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`

	Segments []TranscriptSegment `json:"-" gorm:"foreignKey:ChunkID;constraint:OnDelete:CASCADE"`
}

func (AudioChunk) TableName() string {
	return "audio_chunks"
}

// Duration is derived from the stored bounds, never persisted.
func (c AudioChunk) Duration() time.Duration {
	return c.EndTime.Sub(c.StartTime)
}
