package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printstarter/printstarter/internal/application/dto"
	"github.com/printstarter/printstarter/internal/infrastructure/alerting"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/errors"
	"github.com/printstarter/printstarter/pkg/logger"
)

// AlertHandler lets an operator verify the alert pipeline end to end.
type AlertHandler struct {
	dispatcher *alerting.Dispatcher
	testToken  string
	log        logger.Logger
}

// NewAlertHandler creates the handler. testToken is the shared secret;
// when empty the endpoint refuses to dispatch.
func NewAlertHandler(dispatcher *alerting.Dispatcher, testToken string, log logger.Logger) *AlertHandler {
	return &AlertHandler{dispatcher: dispatcher, testToken: testToken, log: log}
}

// TestAlert handles POST /api/test-alert. The token travels in the
// X-Alert-Test-Token header or a {token} body field; the header wins.
func (h *AlertHandler) TestAlert(c *gin.Context) {
	if h.testToken == "" {
		respondError(c, h.log, errors.ErrServer("Missing alert test token on server."))
		return
	}

	token := c.GetHeader(constants.HeaderAlertTestToken)
	if token == "" {
		var body dto.TestAlertRequest
		if err := bindOptionalJSON(c, &body); err == nil {
			token = body.Token
		}
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(h.testToken)) != 1 {
		respondError(c, h.log, errors.ErrUnauthorized("Unauthorized."))
		return
	}

	h.dispatcher.SendTestAlert(c.Request.Context(), constants.RouteAPITestAlert)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Test alert dispatched."})
}
