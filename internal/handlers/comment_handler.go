package handlers

import (
	"net/http"

	"github.com/anonto42/threadboard/backend/internal/models"
	"github.com/anonto42/threadboard/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	contentService *services.ContentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(contentService *services.ContentService) *CommentHandler {
	return &CommentHandler{contentService: contentService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
}

// CreateComment adds a comment to a post. Blank content is ignored and
// answered with 204.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	comment, err := h.contentService.AddComment(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		return serviceError(err)
	}
	if comment == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID retrieves all comments for a specific post, oldest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	comments, err := h.contentService.ListComments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, comments)
}
