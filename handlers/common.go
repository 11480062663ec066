package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"barrot/backend/constants"
)

// pageLimit reads ?limit, falling back to the default page size for missing,
// malformed or non-positive values and capping at the max page size.
func pageLimit(c *gin.Context) int {
	v, err := strconv.Atoi(c.Query("limit"))
	if err != nil || v <= 0 {
		return constants.DefaultPageSize
	}
	if v > constants.MaxPageSize {
		return constants.MaxPageSize
	}
	return v
}

// userFilter reads the optional ?userId filter. ok is false when the value
// is present but not a positive integer; the response has been written.
func userFilter(c *gin.Context) (filter map[string]any, ok bool) {
	raw := strings.TrimSpace(c.Query("userId"))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrInvalidUserID})
		return nil, false
	}
	return map[string]any{"user_id": uint(id)}, true
}

// internalError logs the cause and answers 500 with a fixed message.
func internalError(c *gin.Context, log *slog.Logger, msg string, err error) {
	log.ErrorContext(c.Request.Context(), msg, "err", err, "method", c.Request.Method, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// nullableID treats a zero id as absent.
func nullableID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

const newestFirst = "created_at DESC, id DESC"
