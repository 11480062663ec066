package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"barrot/backend/constants"
)

// RegisterHealthRoutes wires the liveness probe.
func RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": constants.MessageHealthy})
	})
}
