package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openf1"
	"github.com/lupinelegend/f1-radio-archive/internal/service/transcription"
)

type handlers struct {
	sync          openf1.SyncService
	transcription transcription.TranscriptionService
}

type transcribeRequest struct {
	ClipID string `json:"clipId"`
	Limit  *int   `json:"limit"`
}

type syncRequest struct {
	SessionKey int  `json:"session_key"`
	Year       int  `json:"year"`
	Latest     bool `json:"latest"`
}

func respondError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// bindOptionalJSON treats an empty body as an empty object
func bindOptionalJSON(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *handlers) transcribe(c *gin.Context) {
	var req transcribeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	sel := transcription.Selector{ClipID: req.ClipID, Limit: transcription.DefaultLimit}
	if req.Limit != nil {
		if *req.Limit < 0 {
			respondError(c, http.StatusBadRequest, fmt.Errorf("limit must not be negative"))
			return
		}
		sel.Limit = *req.Limit
	}

	summary, err := h.transcription.Transcribe(c.Request.Context(), sel)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	if summary.Total == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "No clips found that need transcription",
			"processed": 0,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    fmt.Sprintf("Transcribed %d/%d clips", summary.Successful, summary.Total),
		"total":      summary.Total,
		"successful": summary.Successful,
		"failed":     summary.Failed,
		"results":    summary.Results,
	})
}

func (h *handlers) syncRadio(c *gin.Context) {
	var req syncRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	summary, err := h.sync.Sync(c.Request.Context(), openf1.SyncFilter{SessionKey: req.SessionKey, Year: req.Year, Latest: req.Latest})
	if errors.Is(err, openf1.ErrNoSessionsFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "No sessions found",
		})
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Successfully synced %d new radio messages out of %d total",
			summary.NewRadioMessages, summary.TotalRadioMessages),
		"sessions_processed":   summary.SessionsProcessed,
		"sessions_skipped":     summary.SessionsSkipped,
		"total_radio_messages": summary.TotalRadioMessages,
		"new_radio_messages":   summary.NewRadioMessages,
	})
}

// queryYear reads the optional year query parameter
func queryYear(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid year %q", raw))
		return 0, false
	}
	return year, true
}

func (h *handlers) listSessions(c *gin.Context) {
	year, ok := queryYear(c)
	if !ok {
		return
	}

	sessions, err := h.sync.ListSessions(c.Request.Context(), year)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sessions": sessions,
	})
}

func (h *handlers) listMeetings(c *gin.Context) {
	year, ok := queryYear(c)
	if !ok {
		return
	}

	meetings, err := h.sync.ListMeetings(c.Request.Context(), year)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"meetings": meetings,
	})
}
