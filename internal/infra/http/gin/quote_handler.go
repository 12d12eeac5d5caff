package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentsync/internal/app/services"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

type QuoteHandler struct {
	Core *services.Core
}

type quoteRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
}

type quoteResponse struct {
	RoomID          string            `json:"room_id"`
	CheckIn         string            `json:"check_in"`
	CheckOut        string            `json:"check_out"`
	Guests          int               `json:"guests"`
	Currency        string            `json:"currency"`
	Nights          []nightResponse   `json:"nights"`
	AppliedRules    []appliedResponse `json:"applied_rules"`
	SubtotalCents   int64             `json:"subtotal_cents"`
	ServiceFeeCents int64             `json:"service_fee_cents"`
	TaxCents        int64             `json:"tax_cents"`
	TotalCents      int64             `json:"total_cents"`
}

type nightResponse struct {
	Date       string `json:"date"`
	PriceCents int64  `json:"price_cents"`
	RuleID     string `json:"rule_id,omitempty"`
}

type appliedResponse struct {
	RuleID            string `json:"rule_id"`
	Type              string `json:"type"`
	Nights            int    `json:"nights"`
	ContributionCents int64  `json:"contribution_cents"`
}

func (h QuoteHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stay, err := daterange.Parse(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	quote, err := h.Core.CalculatePrice(c.Request.Context(), domainrooms.RoomID(c.Param("id")), stay, req.Guests)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := quoteResponse{
		RoomID:          string(quote.RoomID),
		CheckIn:         daterange.FormatDay(quote.Stay.Start),
		CheckOut:        daterange.FormatDay(quote.Stay.End),
		Guests:          quote.Guests,
		Currency:        quote.Subtotal.Currency,
		SubtotalCents:   quote.Subtotal.Amount,
		ServiceFeeCents: quote.ServiceFee.Amount,
		TaxCents:        quote.Tax.Amount,
		TotalCents:      quote.Total.Amount,
	}
	for _, night := range quote.Nights {
		resp.Nights = append(resp.Nights, nightResponse{
			Date:       daterange.FormatDay(night.Night),
			PriceCents: night.Price.Amount,
			RuleID:     night.RuleID,
		})
	}
	for _, applied := range quote.Applied {
		resp.AppliedRules = append(resp.AppliedRules, appliedResponse{
			RuleID:            applied.RuleID,
			Type:              string(applied.Type),
			Nights:            applied.Nights,
			ContributionCents: applied.Contribution.Amount,
		})
	}
	c.JSON(http.StatusOK, resp)
}

var _ QuoteHTTP = QuoteHandler{}
