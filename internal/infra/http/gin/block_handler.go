package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentsync/internal/app/services"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
	"rentsync/internal/domain/shared/daterange"
)

type BlockHandler struct {
	Core *services.Core
}

type blockRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

type blockResponse struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}

func (h BlockHandler) List(c *gin.Context) {
	periods, err := h.Core.ListBlockedPeriods(c.Request.Context(), domainrooms.RoomID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]blockResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, newBlockResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"blocked_periods": out})
}

func (h BlockHandler) Create(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rng, err := daterange.Parse(req.Start, req.End)
	if err != nil {
		respondError(c, err)
		return
	}
	period, err := h.Core.CreateBlockedPeriod(c.Request.Context(), domainrooms.RoomID(c.Param("id")), rng, req.Reason, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBlockResponse(period))
}

func (h BlockHandler) Update(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rng, err := daterange.Parse(req.Start, req.End)
	if err != nil {
		respondError(c, err)
		return
	}
	period, err := h.Core.UpdateBlockedPeriod(c.Request.Context(), c.Param("id"), rng, req.Reason, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBlockResponse(period))
}

func (h BlockHandler) Delete(c *gin.Context) {
	if err := h.Core.DeleteBlockedPeriod(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func newBlockResponse(p *domainschedule.BlockedPeriod) blockResponse {
	return blockResponse{
		ID:     p.ID,
		RoomID: string(p.RoomID),
		Start:  daterange.FormatDay(p.Range.Start),
		End:    daterange.FormatDay(p.Range.End),
		Reason: p.Reason,
		Notes:  p.Notes,
	}
}

var _ BlockHTTP = BlockHandler{}
