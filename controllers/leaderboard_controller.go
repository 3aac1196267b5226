// file: controllers/leaderboard_controller.go
package controllers

import (
	"net/http"

	"catfish-cull/models"
	"catfish-cull/services"

	"github.com/gin-gonic/gin"
)

// LeaderboardSource is satisfied by services.LeaderboardFeed.
type LeaderboardSource interface {
	Snapshot(division models.Division) (services.LeaderboardSnapshot, error)
}

// LeaderboardController serves the public leaderboard.
type LeaderboardController struct {
	Feed LeaderboardSource
}

// Leaderboard returns the ranked board for ?division= (all, women, juniors).
func (lc *LeaderboardController) Leaderboard(c *gin.Context) {
	division, err := models.ParseDivision(c.Query("division"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := lc.Feed.Snapshot(division)
	if err != nil {
		respondError(c, "LeaderboardController.Leaderboard", err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, snap)
}
