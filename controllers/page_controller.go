// file: controllers/page_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"catfish-cull/logger"
	"catfish-cull/services"

	"github.com/gin-gonic/gin"
)

const (
	defaultQRSize = 300
	maxQRSize     = 1024
)

// PageController serves the small public endpoints the kiosk pages need.
type PageController struct {
	ApplicationURL string
	WebsocketURL   string
	// Encode renders QR codes; nil uses qrcode.Encode.
	Encode services.QREncoder
}

// NewPageController builds a PageController for the public URLs.
func NewPageController(appURL, wsURL string) *PageController {
	logger.Info.Printf("NewPageController: ApplicationURL=%s, WebsocketURL=%s", appURL, wsURL)
	return &PageController{ApplicationURL: appURL, WebsocketURL: wsURL}
}

// Health reports that the server is up.
func (pc *PageController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Config tells the kiosk pages where to connect.
func (pc *PageController) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"applicationUrl": pc.ApplicationURL,
		"websocketUrl":   pc.WebsocketURL,
		"leaderboardUrl": pc.LeaderboardURL(),
	})
}

// LeaderboardURL is the public page the QR code points at.
func (pc *PageController) LeaderboardURL() string {
	return strings.TrimRight(pc.ApplicationURL, "/") + "/leaderboard"
}

// GetQRCode renders a PNG QR code for the public leaderboard.
func (pc *PageController) GetQRCode(c *gin.Context) {
	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxQRSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 1 and 1024"})
			return
		}
		size = n
	}

	png, err := services.GenerateQRCode(pc.LeaderboardURL(), size, pc.Encode)
	if err != nil {
		logger.Error.Printf("GetQRCode: Error generating QR code: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QR generation failed"})
		return
	}

	c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
	c.Data(http.StatusOK, "image/png", png)
}
