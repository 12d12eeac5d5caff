package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentsync/internal/app/services"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

type RuleHandler struct {
	Core *services.Core
}

type ruleRequest struct {
	Type     string  `json:"type"`
	Value    float64 `json:"value"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Active   bool    `json:"active"`
	Weekdays []int   `json:"weekdays,omitempty"`
}

type ruleResponse struct {
	ID       string  `json:"id"`
	RoomID   string  `json:"room_id"`
	Type     string  `json:"type"`
	Value    float64 `json:"value"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Active   bool    `json:"active"`
	Weekdays []int   `json:"weekdays,omitempty"`
}

func (h RuleHandler) List(c *gin.Context) {
	rules, err := h.Core.ListPricingRules(c.Request.Context(), domainrooms.RoomID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, newRuleResponse(rule))
	}
	c.JSON(http.StatusOK, gin.H{"pricing_rules": out})
}

func (h RuleHandler) Create(c *gin.Context) {
	params, ok := bindRuleParams(c)
	if !ok {
		return
	}
	rule, err := h.Core.CreatePricingRule(c.Request.Context(), domainrooms.RoomID(c.Param("id")), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRuleResponse(rule))
}

func (h RuleHandler) Update(c *gin.Context) {
	params, ok := bindRuleParams(c)
	if !ok {
		return
	}
	rule, err := h.Core.UpdatePricingRule(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRuleResponse(rule))
}

func (h RuleHandler) Delete(c *gin.Context) {
	if err := h.Core.DeletePricingRule(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindRuleParams(c *gin.Context) (services.RuleParams, bool) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return services.RuleParams{}, false
	}
	rng, err := daterange.Parse(req.Start, req.End)
	if err != nil {
		respondError(c, err)
		return services.RuleParams{}, false
	}
	params := services.RuleParams{
		Type:   domainpricing.RuleType(req.Type),
		Value:  req.Value,
		Range:  rng,
		Active: req.Active,
	}
	for _, wd := range req.Weekdays {
		params.Weekdays = append(params.Weekdays, time.Weekday(wd))
	}
	return params, true
}

func newRuleResponse(rule *domainpricing.Rule) ruleResponse {
	resp := ruleResponse{
		ID:     rule.ID,
		RoomID: string(rule.RoomID),
		Type:   string(rule.Type),
		Value:  rule.Value,
		Start:  daterange.FormatDay(rule.Range.Start),
		End:    daterange.FormatDay(rule.Range.End),
		Active: rule.Active,
	}
	for _, wd := range rule.Weekdays {
		resp.Weekdays = append(resp.Weekdays, int(wd))
	}
	return resp
}

var _ RuleHTTP = RuleHandler{}
