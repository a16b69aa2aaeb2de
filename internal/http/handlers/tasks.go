package handlers

import (
	"net/http"

	"kanban_board/internal/http/middleware"
	"kanban_board/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTask(c *gin.Context) {
	var form service.TaskForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}

	task, err := h.Board.CreateTask(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update; absent fields are left alone.
func (h *Handler) UpdateTask(c *gin.Context) {
	var patch service.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}

	if err := h.Board.UpdateTask(c.Request.Context(), c.Param("id"), patch); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.Board.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment posts a comment authored by the caller.
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	comment, err := h.Board.AddComment(c.Request.Context(), c.Param("id"), middleware.User(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

type attachmentRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (h *Handler) AddAttachment(c *gin.Context) {
	var req attachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	a, err := h.Board.AddAttachment(c.Request.Context(), c.Param("id"), req.Name, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

type assigneeRequest struct {
	Name string `json:"name"`
}

func (h *Handler) AddAssignee(c *gin.Context) {
	var req assigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if err := h.Board.AddAssignee(c.Request.Context(), c.Param("id"), req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveAssignee(c *gin.Context) {
	if err := h.Board.RemoveAssignee(c.Request.Context(), c.Param("id"), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
