package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentsync/internal/app/services"
	domainfeeds "rentsync/internal/domain/feeds"
	domainrooms "rentsync/internal/domain/rooms"
)

type SyncHandler struct {
	Core *services.Core
}

type syncAllRequest struct {
	RoomIDs []string `json:"room_ids,omitempty"`
}

type syncResultResponse struct {
	RoomID          string `json:"room_id"`
	Platform        string `json:"platform"`
	Success         bool   `json:"success"`
	EventsProcessed int    `json:"events_processed"`
	Error           string `json:"error,omitempty"`
}

type syncLogResponse struct {
	ID              string `json:"id"`
	Platform        string `json:"platform"`
	Outcome         string `json:"outcome"`
	EventsProcessed int    `json:"events_processed"`
	Error           string `json:"error,omitempty"`
	DurationMS      int64  `json:"duration_ms"`
	At              string `json:"at"`
}

func (h SyncHandler) SyncRoom(c *gin.Context) {
	result, err := h.Core.SyncRoomCalendar(c.Request.Context(), domainrooms.RoomID(c.Param("id")), c.Param("platform"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSyncResultResponse(*result))
}

func (h SyncHandler) SyncAll(c *gin.Context) {
	var req syncAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	var roomIDs []domainrooms.RoomID
	for _, id := range req.RoomIDs {
		roomIDs = append(roomIDs, domainrooms.RoomID(id))
	}
	results, err := h.Core.SyncAllCalendars(c.Request.Context(), roomIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]syncResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, newSyncResultResponse(res))
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h SyncHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.Core.SyncHistory(c.Request.Context(), domainrooms.RoomID(c.Param("id")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]syncLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newSyncLogResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

func newSyncResultResponse(res services.SyncResult) syncResultResponse {
	return syncResultResponse{
		RoomID:          string(res.RoomID),
		Platform:        string(res.Platform),
		Success:         res.Success,
		EventsProcessed: res.EventsProcessed,
		Error:           res.ErrorMessage,
	}
}

func newSyncLogResponse(e *domainfeeds.LogEntry) syncLogResponse {
	return syncLogResponse{
		ID:              e.ID,
		Platform:        string(e.Platform),
		Outcome:         string(e.Outcome),
		EventsProcessed: e.EventsProcessed,
		Error:           e.Error,
		DurationMS:      e.Duration.Milliseconds(),
		At:              e.At.UTC().Format(time.RFC3339),
	}
}

var _ SyncHTTP = SyncHandler{}
