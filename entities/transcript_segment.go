package entities

import (
	"time"

	"github.com/google/uuid"
)

type TranscriptSegment struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ChunkID       uuid.UUID `json:"chunk_id" gorm:"type:uuid;not null;index:idx_transcript_segments_chunk"`
	StartOffset   float64   `json:"start_offset" gorm:"not null"`
	EndOffset     float64   `json:"end_offset" gorm:"not null"`
	Text          string    `json:"text" gorm:"type:text;not null"`
	Confidence    float64   `json:"confidence" gorm:"not null"`
	Language      string    `json:"language" gorm:"type:varchar(10);not null"`
	WordCount     int       `json:"word_count" gorm:"not null"`
	Sentiment     *float64  `json:"sentiment"`
	NamedEntities *string   `json:"named_entities" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null"`
}

func (TranscriptSegment) TableName() string {
	return "transcript_segments"
}
