package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ActorHeader carries the chat identity of the caller. The chat layer sets it
// from the incoming update.
const ActorHeader = "X-Actor-ID"

// actorIDKey is the gin context key for the parsed actor id.
const actorIDKey = "actor_id"

// AdminChecker reports whether an identity is on the operator allow-list.
type AdminChecker interface {
	IsAdmin(id int64) bool
}

// RequireActor parses the X-Actor-ID header and rejects requests without a
// valid positive id.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(ActorHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + ActorHeader + " header"})
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid " + ActorHeader + " header"})
			return
		}

		c.Set(actorIDKey, id)
		c.Next()
	}
}

// RequireAdmin allows only operators. Must run after RequireActor.
func RequireAdmin(access AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ActorID(c)
		if !ok || access == nil || !access.IsAdmin(id) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// ActorID returns the id stored by RequireActor.
func ActorID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(actorIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
