// Package handlers contains the gin HTTP handlers for the PrintStarter
// API. Handlers stay thin: bind, delegate to an application service, map
// the outcome to a status and a JSON body.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/printstarter/printstarter/internal/application/dto"
	"github.com/printstarter/printstarter/internal/interfaces/http/middleware"
	"github.com/printstarter/printstarter/pkg/errors"
	"github.com/printstarter/printstarter/pkg/logger"
)

// bindOptionalJSON fills out from the request body. An absent or empty
// body is fine (field defaults apply); a present but unparseable body is
// a validation failure.
func bindOptionalJSON(c *gin.Context, out interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(out); err != nil {
		return errors.ErrValidation("Invalid request body.").WithCause(err)
	}
	return nil
}

// respondError maps any error to its status and {error} body and leaves
// the monitor label behind for the request monitor.
func respondError(c *gin.Context, log logger.Logger, err error) {
	c.Set(middleware.ErrorLabelKey, errors.Label(err))

	appErr, ok := errors.AsAppError(err)
	if !ok {
		log.Error(c.Request.Context(), "unclassified handler error", err)
		c.JSON(errors.HTTPStatus(err), dto.ErrorResponse{Error: "Server error"})
		return
	}

	if appErr.HTTPStatus() >= 500 {
		log.Error(c.Request.Context(), "request failed", appErr)
	}
	c.JSON(appErr.HTTPStatus(), dto.ErrorResponse{Error: appErr.Error()})
}

// setCacheMeta records the cache outcome for the monitor's log line.
func setCacheMeta(c *gin.Context, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	c.Set(middleware.ResponseMetaKey, map[string]interface{}{"cache": outcome})
}
