package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/threadboard/backend/internal/models"
	"github.com/anonto42/threadboard/backend/internal/services"
	"github.com/anonto42/threadboard/backend/internal/view"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	contentService *services.ContentService
	renderer       *view.Renderer
	excerptWords   int
	now            func() time.Time
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(contentService *services.ContentService, renderer *view.Renderer, excerptWords int) *PostHandler {
	return &PostHandler{
		contentService: contentService,
		renderer:       renderer,
		excerptWords:   excerptWords,
		now:            time.Now,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetFeed)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/upvote", h.UpvotePost)
	g.POST("/posts/:id/verify", h.VerifySecretKey)
}

// GetFeed lists posts sorted by ?sort=, filtered by ?q= and ?flag=,
// each with its comment count.
func (h *PostHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()

	sortBy, err := models.ParseSortField(c.QueryParam("sort"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var category models.Flag
	if raw := c.QueryParam("flag"); raw != "" {
		if category, err = models.ParseFlag(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	posts, err := h.contentService.ListPosts(ctx, sortBy)
	if err != nil {
		return serviceError(err)
	}
	posts = view.FilterFeed(posts, c.QueryParam("q"), category)

	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	comments, err := h.contentService.CommentsForPosts(ctx, postIDs)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts": view.BuildFeed(posts, comments, h.now(), h.excerptWords),
		"sort":  sortBy,
		"flags": models.AllFlags,
	})
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.contentService.CreatePost(c.Request().Context(), req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost returns a post with its rendered body and its comments
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.contentService.GetPost(ctx, postID)
	if err != nil {
		return serviceError(err)
	}
	comments, err := h.contentService.ListComments(ctx, postID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, view.BuildPostDetail(*post, comments, h.now(), h.renderer))
}

// UpdatePost updates an existing post when the secret key matches
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.contentService.UpdatePost(c.Request().Context(), c.Param("id"), req.SecretKey, req.ToUpdate())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post and its comments when the secret key matches
func (h *PostHandler) DeletePost(c echo.Context) error {
	var req models.SecretKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if err := h.contentService.DeletePost(c.Request().Context(), c.Param("id"), req.SecretKey); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpvotePost adds one upvote
func (h *PostHandler) UpvotePost(c echo.Context) error {
	post, err := h.contentService.Upvote(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// VerifySecretKey lets the edit form unlock without ever returning the stored key
func (h *PostHandler) VerifySecretKey(c echo.Context) error {
	var req models.SecretKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if err := h.contentService.VerifySecretKey(c.Request().Context(), c.Param("id"), req.SecretKey); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": c.Param("id"), "verified": true})
}
