package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/posts/service"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/logger"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/middleware"
)

// RegisterPostRoutes mounts /posts on rg. Reads are public; writes need an
// authenticated principal.
func RegisterPostRoutes(rg *gin.RouterGroup, svc *service.Service) {
	p := rg.Group("/posts")

	p.GET("", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"posts": list})
	})

	p.GET("/:id", func(c *gin.Context) {
		post, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	})

	w := p.Group("", middleware.RequireAuth())

	w.POST("", func(c *gin.Context) {
		var req struct {
			Title   string `json:"title" binding:"required"`
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		post, err := svc.Create(c.Request.Context(), middleware.PrincipalFrom(c), req.Title, req.Content)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, post)
	})

	w.PATCH("/:id", func(c *gin.Context) {
		var req struct {
			Title   *string `json:"title,omitempty"`
			Content *string `json:"content,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		id := c.Param("id")
		if err := svc.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, req.Title, req.Content); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w.DELETE("/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("posts: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
