package routers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"barrot/backend/constants"
	"barrot/database"
	"barrot/handlers"
)

// Deps are the collaborators every API route needs.
type Deps struct {
	Store     *database.Store
	Generate  handlers.Generator
	Log       *slog.Logger
	StaticDir string
}

// RegisterBackendRoutes mounts CORS, the /api groups and the static root.
// 功能: 统一入口，/api 下未知路径返回 JSON 404，其余交给静态目录。
func RegisterBackendRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.Default())

	api := r.Group("/api")
	handlers.RegisterHealthRoutes(api)
	handlers.RegisterChatRoutes(api, d.Store, d.Generate, d.Log)
	handlers.RegisterUserRoutes(api, d.Store, d.Log)
	handlers.RegisterRecordingRoutes(api, d.Store, d.Log)
	handlers.RegisterSessionRoutes(api, d.Store, d.Log)

	static := http.FileServer(http.Dir(d.StaticDir))
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrNotFound})
			return
		}
		static.ServeHTTP(c.Writer, c.Request)
	})
}

// Recovery answers panics with the generic 500 body and logs them.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic in handler", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": constants.ErrInternal})
	})
}
