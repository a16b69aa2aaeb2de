package handlers

import (
	"errors"
	"net/http"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
	"kanban_board/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Board  *service.BoardService
	Engine *service.ReorderEngine
}

func NewHandler(board *service.BoardService, engine *service.ReorderEngine) *Handler {
	return &Handler{Board: board, Engine: engine}
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrColumnNotFound), errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDocumentNotFound):
		// the row vanished between read and commit
		c.JSON(http.StatusConflict, gin.H{"error": "board changed, retry"})
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
}
