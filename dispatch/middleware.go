package dispatch

import (
	"github.com/gin-gonic/gin"

	"github.com/bloomkit/bloom/container"
	"github.com/bloomkit/bloom/errors"
	"github.com/bloomkit/bloom/logger"
)

// RequestScope returns the Gin middleware that brackets every inbound
// request with a container request scope. Request-scoped instances resolved
// by any handler call during the request share the scope's store; the scope
// is torn down when the request completes, after the response is written.
// Teardown failures are logged, never surfaced to the client.
func RequestScope(m *container.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, token, err := m.EnterRequestScope(c.Request.Context())
		if err != nil {
			status, body := errors.HTTPResponse(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		defer func() {
			if exitErr := m.ExitRequestScope(token); exitErr != nil {
				logger.WithComponent("dispatch").WithError(exitErr).
					Error("request scope teardown failed", logger.Fields(
						"path", c.Request.URL.Path,
					))
			}
		}()

		c.Next()
	}
}
