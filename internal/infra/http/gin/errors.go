package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentsync/internal/app/services"
	domainavailability "rentsync/internal/domain/availability"
	domainbooking "rentsync/internal/domain/booking"
	domainfeeds "rentsync/internal/domain/feeds"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/infra/fetch"
	"rentsync/internal/infra/ical"
)

// respondError maps domain errors onto HTTP statuses. Unrecognized errors
// are reported as 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var conflict *domainschedule.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.Is(err, domainrooms.ErrNotFound),
		errors.Is(err, domainschedule.ErrNotFound),
		errors.Is(err, domainpricing.ErrRuleNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainfeeds.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, daterange.ErrInvalidDay),
		errors.Is(err, domainavailability.ErrUnknownSource),
		errors.Is(err, domainpricing.ErrRuleType),
		errors.Is(err, domainpricing.ErrRuleValue),
		errors.Is(err, domainschedule.ErrReasonRequired),
		errors.Is(err, services.ErrInvalidGuests):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, fetch.ErrFetchFailed),
		errors.Is(err, ical.ErrNoEvents):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
