package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/bakery_backend/utils"
)

// StatusFor maps an engine error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, utils.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrPeriodClosed),
		errors.Is(err, utils.ErrAlreadyLinked),
		errors.Is(err, utils.ErrTransactionBusy):
		return http.StatusConflict
	case errors.Is(err, utils.ErrSummaryMismatch),
		errors.Is(err, utils.ErrInactiveLineRejected),
		errors.Is(err, utils.ErrPartyRequired),
		errors.Is(err, utils.ErrInvalidTransaction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(StatusFor(err), gin.H{"error": err.Error()})
}

func abortBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
