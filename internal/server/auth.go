package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const contextOwnerIDKey = "owner_id"

// AuthRequired authenticates the bearer session token and stores the owner
// on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ownerID, err := s.verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextOwnerIDKey, ownerID)
		c.Next()
	}
}

func ownerID(c *gin.Context) string {
	return c.GetString(contextOwnerIDKey)
}
