package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/utils"
)

// RequestContext resolves the request correlation ID and the caller
// identity once, up front, and plants both in the request context where
// the logger and the downstream middleware read them.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		identity := utils.ClientIP(c.Request.Header)

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		ctx = context.WithValue(ctx, constants.ContextKeyClientIdentity, identity)
		c.Request = c.Request.WithContext(ctx)

		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Set(string(constants.ContextKeyClientIdentity), identity)
		c.Header(constants.HeaderRequestID, requestID)

		c.Next()
	}
}

// ClientIdentity returns the identity resolved by RequestContext, or the
// unknown sentinel when the middleware did not run.
func ClientIdentity(c *gin.Context) string {
	if v, ok := c.Get(string(constants.ContextKeyClientIdentity)); ok {
		if s, isString := v.(string); isString {
			return s
		}
	}
	return utils.UnknownIdentity
}
