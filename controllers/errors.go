package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotel-reservation/logger"
	"hotel-reservation/middleware"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

var statusByKind = map[services.ErrorKind]int{
	services.KindValidation:        http.StatusBadRequest,
	services.KindNotFound:          http.StatusNotFound,
	services.KindForbidden:         http.StatusForbidden,
	services.KindConflict:          http.StatusConflict,
	services.KindInvalidTransition: http.StatusConflict,
	services.KindPromotionInvalid:  http.StatusUnprocessableEntity,
	services.KindPaymentMismatch:   http.StatusUnprocessableEntity,
}

// respondError maps core failures onto HTTP. Anything untyped is logged and
// reported as a generic 500.
func respondError(c *gin.Context, err error) {
	if e, ok := services.AsError(err); ok {
		status, known := statusByKind[e.Kind]
		if !known {
			status = http.StatusInternalServerError
		}
		utils.JSONError(c, status, "error."+string(e.Kind), e.Message)
		return
	}
	logger.WithFields(logger.Fields{"method": c.Request.Method, "path": c.Request.URL.Path}).
		WithError(err).Error("request failed")
	utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal server error")
}

func respondBadRequest(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, "error."+string(services.KindValidation), message)
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(c, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// requireActor is used behind RequireAuth; the 401 here only guards misrouting.
func requireActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "error.unauthenticated", "authentication required")
		return services.Actor{}, false
	}
	return actor, true
}

// parseDate accepts a calendar date (YYYY-MM-DD) only. Stays have no time of day.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid %s format, expected YYYY-MM-DD", field)
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := parseDate("check_in", checkIn)
	if err != nil {
		return in, in, err
	}
	out, err := parseDate("check_out", checkOut)
	if err != nil {
		return in, out, err
	}
	return in, out, nil
}
