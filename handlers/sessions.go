package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"barrot/backend/constants"
	"barrot/database"
	"barrot/models"
)

// sessionTokenBytes of entropy, hex-encoded to twice as many characters.
const sessionTokenBytes = 32

// RegisterSessionRoutes wires session creation.
// 功能: 生成随机令牌，24 小时后过期。
func RegisterSessionRoutes(rg *gin.RouterGroup, store *database.Store, log *slog.Logger) {
	rg.POST("/sessions", func(c *gin.Context) { createSession(c, store, log) })
}

// NewSessionToken returns 32 random bytes from crypto/rand as lowercase hex.
func NewSessionToken() (string, error) {
	return newSessionToken(rand.Reader)
}

func newSessionToken(r io.Reader) (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func createSession(c *gin.Context, store *database.Store, log *slog.Logger) {
	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrInvalidJSON})
		return
	}
	if nullableID(req.UserID) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrUserIDRequired})
		return
	}

	token, err := NewSessionToken()
	if err != nil {
		internalError(c, log, constants.ErrFailedCreateSession, err)
		return
	}
	now := time.Now().UTC()
	session := models.Session{
		UserID:       *req.UserID,
		SessionToken: token,
		CreatedAt:    now,
		ExpiresAt:    now.Add(models.SessionTTL),
	}
	if err := store.Insert(c.Request.Context(), &session); err != nil {
		internalError(c, log, constants.ErrFailedCreateSession, err)
		return
	}

	c.JSON(http.StatusCreated, models.SessionResponse{
		SessionID:    session.ID,
		SessionToken: session.SessionToken,
		ExpiresAt:    session.ExpiresAt.Format(time.RFC3339Nano),
	})
}
