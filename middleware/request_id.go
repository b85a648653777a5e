package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"train-booking-backend/utils"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags the request with an id, taken from the caller when present,
// and puts a logger carrying it into the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		entry := logrus.WithField("request_id", id)
		c.Request = c.Request.WithContext(utils.WithLogger(c.Request.Context(), entry))
		c.Next()
	}
}
