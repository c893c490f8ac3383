package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChunkCompletedMessage is published once per finalized chunk for the
// transcription collaborator.
type ChunkCompletedMessage struct {
	ChunkId    uuid.UUID `json:"chunkId"`
	SessionId  uuid.UUID `json:"sessionId"`
	ChunkIndex int       `json:"chunkIndex"`
	FilePath   string    `json:"filePath"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Format     string    `json:"format"`
	SampleRate int       `json:"sampleRate"`
}

// TranscriptResultMessage carries the transcription of one chunk back from
// the collaborator.
type TranscriptResultMessage struct {
	ChunkId  uuid.UUID        `json:"chunkId"`
	Segments []SegmentPayload `json:"segments"`
}

type SegmentPayload struct {
	StartOffset   float64  `json:"startOffset"`
	EndOffset     float64  `json:"endOffset"`
	Text          string   `json:"text"`
	Confidence    float64  `json:"confidence"`
	Language      string   `json:"language"`
	Sentiment     *float64 `json:"sentiment"`
	NamedEntities *string  `json:"namedEntities"`
}

type StartSessionRequest struct {
	Mode string `json:"mode"`
}

type PauseSessionRequest struct {
	Reason string `json:"reason"`
}

type SessionMetadataRequest struct {
	Title    *string `json:"title"`
	Notes    *string `json:"notes"`
	Favorite *bool   `json:"favorite"`
	Category *string `json:"category"`
}

type UpdateSegmentTextRequest struct {
	Text string `json:"text"`
}
