package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"barrot/backend/constants"
	"barrot/database"
	"barrot/models"
)

// RegisterUserRoutes wires signup and lookup.
// 功能: 用户名或邮箱重复返回 409。
func RegisterUserRoutes(rg *gin.RouterGroup, store *database.Store, log *slog.Logger) {
	rg.POST("/users", func(c *gin.Context) { createUser(c, store, log) })
	rg.GET("/users/:id", func(c *gin.Context) { getUser(c, store, log) })
}

func createUser(c *gin.Context, store *database.Store, log *slog.Logger) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrInvalidJSON})
		return
	}
	username, email := strings.TrimSpace(req.Username), strings.TrimSpace(req.Email)
	if username == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrUserFieldsRequired})
		return
	}

	user := models.User{Username: username, Email: email}
	if err := store.Insert(c.Request.Context(), &user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": constants.ErrUserExists})
			return
		}
		internalError(c, log, constants.ErrFailedCreateUser, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateUserResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

func getUser(c *gin.Context, store *database.Store, log *slog.Logger) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrUserNotFound})
		return
	}

	var user models.User
	if err := store.Get(c.Request.Context(), &user, uint(id)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrUserNotFound})
			return
		}
		internalError(c, log, constants.ErrFailedFetchUser, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
