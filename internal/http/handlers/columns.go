package handlers

import (
	"net/http"

	"kanban_board/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateColumn(c *gin.Context) {
	var form service.ColumnForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}

	col, err := h.Board.CreateColumn(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, col)
}

func (h *Handler) RenameColumn(c *gin.Context) {
	var form service.ColumnForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}

	if err := h.Board.RenameColumn(c.Request.Context(), c.Param("id"), form); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteColumn removes the column together with its tasks.
func (h *Handler) DeleteColumn(c *gin.Context) {
	if err := h.Board.DeleteColumn(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
