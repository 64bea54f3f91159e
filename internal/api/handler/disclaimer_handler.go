package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	disclaimerCookie = "disclaimer_ack"
	// one year; the notice reappears after the cookie expires
	disclaimerMaxAge = 365 * 24 * 60 * 60
)

// DisclaimerHandler tracks whether the client acknowledged the content
// notice. The flag lives in a cookie on the client, never on the server.
type DisclaimerHandler struct{}

func NewDisclaimerHandler() *DisclaimerHandler {
	return &DisclaimerHandler{}
}

func (h *DisclaimerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/disclaimer", h.Status)
	rg.POST("/disclaimer", h.Acknowledge)
}

// Status handles GET /api/disclaimer.
func (h *DisclaimerHandler) Status(c *gin.Context) {
	value, err := c.Cookie(disclaimerCookie)
	c.JSON(http.StatusOK, gin.H{
		"acknowledged": err == nil && value == "1",
	})
}

// Acknowledge handles POST /api/disclaimer.
func (h *DisclaimerHandler) Acknowledge(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(disclaimerCookie, "1", disclaimerMaxAge, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"acknowledged": true})
}
