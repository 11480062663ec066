package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"barrot/backend/constants"
	"barrot/database"
	"barrot/models"
)

// Generator produces the canned reply for a chat message.
type Generator func(text string) string

// RegisterChatRoutes wires the chat log endpoints.
// 功能: 保存每轮对话并按时间倒序分页返回历史。
func RegisterChatRoutes(rg *gin.RouterGroup, store *database.Store, gen Generator, log *slog.Logger) {
	rg.POST("/chat/message", func(c *gin.Context) { postChatMessage(c, store, gen, log) })
	rg.GET("/chat/history", func(c *gin.Context) { getChatHistory(c, store, log) })
}

func postChatMessage(c *gin.Context, store *database.Store, gen Generator, log *slog.Logger) {
	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrInvalidJSON})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrMessageRequired})
		return
	}

	msg := models.ChatMessage{
		UserID:   nullableID(req.UserID),
		Message:  req.Message,
		Response: gen(req.Message),
	}
	if err := store.Insert(c.Request.Context(), &msg); err != nil {
		internalError(c, log, constants.ErrFailedSaveMessage, err)
		return
	}

	c.JSON(http.StatusOK, models.ChatMessageResponse{
		ID:        msg.ID,
		Message:   msg.Message,
		Response:  msg.Response,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func getChatHistory(c *gin.Context, store *database.Store, log *slog.Logger) {
	filter, ok := userFilter(c)
	if !ok {
		return
	}
	messages := make([]models.ChatMessage, 0)
	q := database.Query{Filter: filter, OrderBy: newestFirst, Limit: pageLimit(c)}
	if err := store.Find(c.Request.Context(), &messages, q); err != nil {
		internalError(c, log, constants.ErrFailedFetchHistory, err)
		return
	}
	c.JSON(http.StatusOK, models.ChatHistoryResponse{Messages: messages})
}
