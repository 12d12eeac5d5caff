package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentsync/internal/app/services"
	domainavailability "rentsync/internal/domain/availability"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

type CalendarHandler struct {
	Core *services.Core
}

type calendarDayResponse struct {
	Date       string              `json:"date"`
	Available  bool                `json:"available"`
	Blocked    bool                `json:"blocked"`
	PriceCents int64               `json:"price_cents"`
	Currency   string              `json:"currency"`
	Source     string              `json:"source"`
	Booking    *bookingRefResponse `json:"booking,omitempty"`
}

type bookingRefResponse struct {
	BookingID        string `json:"booking_id"`
	ConfirmationCode string `json:"confirmation_code"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
}

func (h CalendarHandler) Calendar(c *gin.Context) {
	window, err := daterange.Parse(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	days, err := h.Core.GetAvailability(c.Request.Context(), domainrooms.RoomID(c.Param("id")), window)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]calendarDayResponse, 0, len(days))
	for _, day := range days {
		out = append(out, newCalendarDayResponse(day))
	}
	c.JSON(http.StatusOK, gin.H{"days": out})
}

func (h CalendarHandler) Export(c *gin.Context) {
	payload, err := h.Core.ExportCalendar(c.Request.Context(), domainrooms.RoomID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(payload))
}

func newCalendarDayResponse(day domainavailability.CalendarDay) calendarDayResponse {
	resp := calendarDayResponse{
		Date:       daterange.FormatDay(day.Date),
		Available:  day.Available,
		Blocked:    day.Blocked,
		PriceCents: day.Price.Amount,
		Currency:   day.Price.Currency,
		Source:     day.Source,
	}
	if day.Booking != nil {
		resp.Booking = &bookingRefResponse{
			BookingID:        string(day.Booking.BookingID),
			ConfirmationCode: day.Booking.ConfirmationCode,
			CheckIn:          daterange.FormatDay(day.Booking.Stay.Start),
			CheckOut:         daterange.FormatDay(day.Booking.Stay.End),
		}
	}
	return resp
}

var _ CalendarHTTP = CalendarHandler{}
