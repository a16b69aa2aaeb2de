package handlers

import (
	"net/http"

	"kanban_board/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetBoard returns all columns in order and all tasks.
func (h *Handler) GetBoard(c *gin.Context) {
	c.JSON(http.StatusOK, h.Board.Board())
}

// Drop applies a drag-and-drop result.
func (h *Handler) Drop(c *gin.Context) {
	var ev domain.DropEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c)
		return
	}

	res, err := h.Engine.HandleDrop(c.Request.Context(), ev)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
