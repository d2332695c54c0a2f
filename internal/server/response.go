package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// AbortWithError converts any error into the transport error envelope and
// stops the handler chain. The original error is attached to the context
// for the request logger.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	api := toAPIError(err)
	c.AbortWithStatusJSON(api.status, gin.H{"error": api})
}
