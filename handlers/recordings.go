package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"barrot/backend/constants"
	"barrot/database"
	"barrot/models"
)

// RegisterRecordingRoutes wires recording metadata endpoints.
// 功能: 只保存录音元数据，不接收音频本身。
func RegisterRecordingRoutes(rg *gin.RouterGroup, store *database.Store, log *slog.Logger) {
	rg.POST("/recordings", func(c *gin.Context) { createRecording(c, store, log) })
	rg.GET("/recordings", func(c *gin.Context) { listRecordings(c, store, log) })
}

func createRecording(c *gin.Context, store *database.Store, log *slog.Logger) {
	var req models.RecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrInvalidJSON})
		return
	}
	if strings.TrimSpace(req.Filename) == "" || strings.TrimSpace(req.FilePath) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrRecordingRequired})
		return
	}
	req.UserID = nullableID(req.UserID)

	rec := req.ToRecording()
	if err := store.Insert(c.Request.Context(), &rec); err != nil {
		internalError(c, log, constants.ErrFailedSaveRecording, err)
		return
	}

	c.JSON(http.StatusCreated, models.RecordingResponse{
		ID:       rec.ID,
		Filename: rec.Filename,
		FilePath: rec.FilePath,
		Duration: rec.Duration,
	})
}

func listRecordings(c *gin.Context, store *database.Store, log *slog.Logger) {
	filter, ok := userFilter(c)
	if !ok {
		return
	}
	recordings := make([]models.Recording, 0)
	q := database.Query{Filter: filter, OrderBy: newestFirst, Limit: pageLimit(c)}
	if err := store.Find(c.Request.Context(), &recordings, q); err != nil {
		internalError(c, log, constants.ErrFailedFetchRecording, err)
		return
	}
	c.JSON(http.StatusOK, models.RecordingListResponse{Recordings: recordings})
}
