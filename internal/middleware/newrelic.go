package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes copies the request id and actor id onto the New Relic
// transaction started by nrgin. It is a no-op when no transaction exists.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}

		if requestID := RequestID(c); requestID != "" {
			txn.AddAttribute("request_id", requestID)
		}
		if id, ok := ActorID(c); ok {
			txn.AddAttribute("actor_id", id)
		}

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
