package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"voice-capture/audiofile"
	"voice-capture/capture"
	"voice-capture/constant"
	"voice-capture/dto"
	"voice-capture/repository"
)

type routeDeps struct {
	chunker   *capture.Chunker
	store     *audiofile.Store
	sessions  repository.SessionRepository
	chunks    repository.ChunkRepository
	segments  repository.TranscriptRepository
	metadata  repository.MetadataRepository
	analytics repository.AnalyticsRepository
}

func registerRoutes(r *gin.Engine, deps *routeDeps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ctl := r.Group("/capture")
	{
		ctl.POST("/start", deps.startCapture)
		ctl.POST("/stop", deps.stopCapture)
		ctl.POST("/pause", deps.pauseCapture)
		ctl.POST("/resume", deps.resumeCapture)
		ctl.POST("/rotate", deps.rotateCapture)
		ctl.GET("/status", deps.captureStatus)
	}

	sessions := r.Group("/sessions")
	{
		sessions.GET("", deps.listSessions)
		sessions.GET("/:id", deps.getSession)
		sessions.GET("/:id/chunks", deps.getSessionChunks)
		sessions.GET("/:id/transcript", deps.getSessionTranscript)
		sessions.PUT("/:id/metadata", deps.putSessionMetadata)
		sessions.DELETE("/:id", deps.deleteSession)
	}

	r.PATCH("/segments/:id", deps.patchSegmentText)

	analytics := r.Group("/analytics")
	{
		analytics.GET("/sessions-by-hour", deps.sessionsByHour)
		analytics.GET("/sessions-by-day-of-week", deps.sessionsByDayOfWeek)
		analytics.GET("/longest-session", deps.longestSession)
		analytics.GET("/most-active-month", deps.mostActiveMonth)
		analytics.GET("/daily-sentiment", deps.dailySentiment)
		analytics.GET("/language-distribution", deps.languageDistribution)
	}
}

// respondError maps domain errors to HTTP statuses: illegal transitions and
// constraint violations are conflicts, missing rows are 404, malformed stored
// data is 422.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, capture.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrConstraintViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (d *routeDeps) startCapture(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Mode = ""
	}

	mode := constant.CaptureModeActive
	switch req.Mode {
	case "", constant.CaptureModeActive.String():
	case constant.CaptureModeAmbient.String():
		mode = constant.CaptureModeAmbient
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown capture mode"})
		return
	}

	sessionID, err := d.chunker.StartSession(c.Request.Context(), mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": sessionID, "mode": mode})
}

func (d *routeDeps) stopCapture(c *gin.Context) {
	if err := d.chunker.StopSession(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (d *routeDeps) pauseCapture(c *gin.Context) {
	var req dto.PauseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	reason := constant.PauseReasonUser
	switch req.Reason {
	case "", constant.PauseReasonUser.String():
	case constant.PauseReasonInterruption.String():
		reason = constant.PauseReasonInterruption
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown pause reason"})
		return
	}

	if err := d.chunker.Pause(reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paused", "reason": reason})
}

func (d *routeDeps) resumeCapture(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Mode = ""
	}

	// Empty mode restores the mode that was active before the pause.
	var mode constant.CaptureMode
	switch req.Mode {
	case "":
	case constant.CaptureModeActive.String():
		mode = constant.CaptureModeActive
	case constant.CaptureModeAmbient.String():
		mode = constant.CaptureModeAmbient
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown capture mode"})
		return
	}

	if err := d.chunker.Resume(mode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resumed"})
}

func (d *routeDeps) rotateCapture(c *gin.Context) {
	if err := d.chunker.Rotate(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.chunker.Status())
}

func (d *routeDeps) captureStatus(c *gin.Context) {
	c.JSON(http.StatusOK, d.chunker.Status())
}

func (d *routeDeps) listSessions(c *gin.Context) {
	summaries, err := d.sessions.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (d *routeDeps) getSession(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	session, err := d.sessions.GetSessionByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (d *routeDeps) getSessionChunks(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	chunks, err := d.chunks.GetChunksBySession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chunks)
}

func (d *routeDeps) getSessionTranscript(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	segments, err := d.segments.GetSegmentsBySession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, segments)
}

func (d *routeDeps) putSessionMetadata(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.SessionMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := repository.SessionMetadata{SessionID: id}
	if existing, err := d.metadata.GetSessionMetadata(c.Request.Context(), id); err == nil {
		meta.Title = existing.Title
		meta.Notes = existing.Notes
		meta.Favorite = existing.Favorite
		meta.Category = existing.Category
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, err)
		return
	}

	if req.Title != nil {
		meta.Title = req.Title
	}
	if req.Notes != nil {
		meta.Notes = req.Notes
	}
	if req.Favorite != nil {
		meta.Favorite = *req.Favorite
	}
	if req.Category != nil {
		meta.Category = req.Category
	}

	if err := d.metadata.UpsertSessionMetadata(c.Request.Context(), meta); err != nil {
		respondError(c, err)
		return
	}

	session, err := d.metadata.GetSessionMetadata(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (d *routeDeps) deleteSession(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	paths, err := d.sessions.DeleteSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, path := range paths {
		if rmErr := d.store.Remove(path); rmErr != nil {
			// Rows are gone; the orphan sweep picks leftover files up later.
			continue
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted_chunks": len(paths)})
}

func (d *routeDeps) patchSegmentText(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateSegmentTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := d.segments.UpdateSegmentText(c.Request.Context(), id, req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (d *routeDeps) sessionsByHour(c *gin.Context) {
	counts, err := d.analytics.SessionsByHour(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (d *routeDeps) sessionsByDayOfWeek(c *gin.Context) {
	counts, err := d.analytics.SessionsByDayOfWeek(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (d *routeDeps) longestSession(c *gin.Context) {
	row, err := d.analytics.LongestSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if row == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, row)
}

func (d *routeDeps) mostActiveMonth(c *gin.Context) {
	row, err := d.analytics.MostActiveMonth(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if row == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, row)
}

func (d *routeDeps) dailySentiment(c *gin.Context) {
	rows, err := d.analytics.DailySentiment(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (d *routeDeps) languageDistribution(c *gin.Context) {
	rows, err := d.analytics.LanguageDistribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
