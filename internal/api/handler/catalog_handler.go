package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cinemax/internal/api/service"
	"cinemax/internal/catalog"
)

const minSuggestRunes = 3

type CatalogHandler struct {
	svc service.CatalogService
	log *logrus.Logger
}

func NewCatalogHandler(svc service.CatalogService, log *logrus.Logger) *CatalogHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CatalogHandler{svc: svc, log: log}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/landing", h.Landing)
	rg.GET("/media/:kind/:idslug", h.Media)
	rg.GET("/view/:kind/:idslug", h.Viewer)
	rg.GET("/suggest", h.Suggest)
}

// Landing handles GET /api/landing?tab=&query=. Always 200: provider
// failures empty sections, they never fail the page.
func (h *CatalogHandler) Landing(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	tab := strings.TrimSpace(c.Query("tab"))
	query := strings.TrimSpace(c.Query("query"))

	c.JSON(http.StatusOK, h.svc.Landing(ctx, tab, query))
}

// Media handles GET /api/media/:kind/:idslug. A stale or wrong slug is a
// permanent redirect to the canonical path; only unknown ids are 404.
func (h *CatalogHandler) Media(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	detail, res, err := h.svc.ResolveMedia(ctx, c.Param("kind"), c.Param("idslug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.SlugMismatch {
		c.Redirect(http.StatusMovedPermanently, "/api"+res.CanonicalPath)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Viewer handles GET /api/view/:kind/:idslug with coordinate query params.
// Unlike the detail route, a mismatched slug still plays.
func (h *CatalogHandler) Viewer(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	view, err := h.svc.ResolveViewer(ctx, c.Param("kind"), c.Param("idslug"), c.Request.URL.Query())
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// Suggest handles GET /api/suggest?q=&tab=, the stateless one-shot variant of
// the live-search channel. Short queries return an empty list, not an error.
func (h *CatalogHandler) Suggest(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	tab := strings.TrimSpace(c.Query("tab"))

	if len([]rune(q)) < minSuggestRunes {
		c.JSON(http.StatusOK, gin.H{"data": []struct{}{}, "total": 0})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 6*time.Second)
	defer cancel()

	cards := h.svc.Suggest(ctx, tab, q)
	c.JSON(http.StatusOK, gin.H{
		"data":  cards,
		"total": len(cards),
	})
}
