package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Katzler/shapeshifter/pkg/exchange"
	"github.com/Katzler/shapeshifter/pkg/metrics"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/Katzler/shapeshifter/pkg/store"
	"github.com/gin-gonic/gin"
)

var errMissingKey = errors.New("api key missing from request context")

// respondError maps domain errors to status codes. Anything unrecognized is
// logged and reported as a 500 without detail.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *scheduler.ViolationError
	var ierr *exchange.ImportError

	switch {
	case errors.As(err, &verr):
		metrics.ValidationRejectionsTotal.WithLabelValues(string(verr.Reason)).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "assignment rejected",
			"reason": verr.Reason,
			"label":  verr.Reason.Label(),
		})
	case errors.As(err, &ierr):
		c.JSON(http.StatusBadRequest, gin.H{"error": ierr.Err.Error()})
	case errors.Is(err, store.ErrWorkspaceNotFound), errors.Is(err, store.ErrAgentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrWorkspaceLimit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidName),
		errors.Is(err, store.ErrInvalidContractHours),
		errors.Is(err, models.ErrUnknownDay),
		errors.Is(err, models.ErrUnknownShift),
		errors.Is(err, models.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.abortInternal(c, err)
	}
}

func (h *Handler) abortInternal(c *gin.Context, err error) {
	h.Log.Error("request failed",
		slog.String("path", c.Request.URL.Path),
		slog.Any("error", err),
	)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
