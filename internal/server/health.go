package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Health Check
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]any
// @Router       /healthz [get]
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "app": s.cfg.App.Name})
}
