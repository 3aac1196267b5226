// router.go
package main

import (
	"context"
	"net/http"

	"catfish-cull/config"
	"catfish-cull/controllers"
	"catfish-cull/middleware"
	"catfish-cull/services"
	"catfish-cull/websocket"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "catfishsession"

// defaultViewport is assumed for a display until its kiosk reports a size.
var defaultViewport = services.Viewport{Width: 1920, Height: 1080}

// app holds the long-lived pieces main needs to start and stop.
type app struct {
	router   *gin.Engine
	feed     *services.LeaderboardFeed
	displays *websocket.DisplayManager
	hub      *websocket.Hub
}

// newApp wires the data source into the feed, the displays and the HTTP routes.
// A display starts when its first kiosk connects, stops once it has had no
// kiosks for DISPLAY_IDLE_GRACE, and always stops when ctx is cancelled.
func newApp(ctx context.Context, cfg *config.Config, repo services.Repository, metrics websocket.Metrics) *app {
	feed := services.NewLeaderboardFeed(repo, cfg.LeaderboardInterval, cfg.LatestEntries)

	hub := websocket.NewHub(metrics)
	displays := websocket.NewDisplayManager(ctx, repo, websocket.DisplayConfig{
		RefreshInterval:  cfg.RefreshInterval,
		DwellInterval:    cfg.DwellInterval,
		ProgressInterval: cfg.ProgressInterval,
		Layout:           services.NewLayout(cfg.ItemHeight, cfg.ChromeOverhead),
		Viewport:         defaultViewport,
		CheckedInLimit:   cfg.CheckedInLimit,
		Names:            cfg.DisplayNames,
		IdleGrace:        cfg.DisplayIdleGrace,
	}, websocket.NewHubMessenger(hub), metrics)
	hub.SetLifecycle(displays)

	pages := controllers.NewPageController(cfg.ApplicationURL, cfg.WebsocketURL)
	results := services.NewResultsService(repo, services.LogNotifier{}, pages.LeaderboardURL())

	router := setupRouter(cfg,
		pages,
		controllers.NewDisplayController(displays, hub),
		&controllers.LeaderboardController{Feed: feed},
		controllers.NewAdminController(repo, results, feed, cfg.AdminPasswordHash),
	)
	return &app{router: router, feed: feed, displays: displays, hub: hub}
}

// setupRouter registers every route on a fresh gin engine.
func setupRouter(
	cfg *config.Config,
	pages *controllers.PageController,
	displays *controllers.DisplayController,
	leaderboard *controllers.LeaderboardController,
	admin *controllers.AdminController,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Debug {
		router.Use(gin.Logger())
	}

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Frame-Options", "SAMEORIGIN")
		c.Next()
	})

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400, // one event day
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, store))

	// Public routes
	router.GET("/health", pages.Health)
	router.GET("/config", pages.Config)
	router.GET("/qrcode", pages.GetQRCode)
	router.GET("/leaderboard", leaderboard.Leaderboard)

	// Check-in displays
	display := router.Group("/display")
	{
		display.GET("/state", displays.State)
		display.GET("/ws", displays.Updates)
		display.POST("/section", displays.Action(websocket.ActionSwitchSection))
		display.POST("/page", displays.Action(websocket.ActionAdvancePage))
		display.POST("/jump", displays.Action(websocket.ActionJumpToPage))
		display.POST("/viewport", displays.Action(websocket.ActionResize))
	}

	// Staff routes
	router.POST("/admin/login", admin.Login)
	router.POST("/admin/logout", admin.Logout)
	staff := router.Group("/admin", middleware.AdminRequired())
	{
		staff.GET("/teams", admin.Roster)
		staff.POST("/teams/:number/checkin", admin.SetCheckIn)
		staff.POST("/catches", admin.SubmitCatch)
		staff.PUT("/catches/:id/status", admin.SetCatchStatus)
		staff.GET("/catches/status-counts", admin.StatusCounts)
		staff.POST("/finalize", admin.Finalize)
		staff.POST("/import/preview", admin.ImportPreview)
		staff.POST("/import/commit", admin.ImportCommit)
	}

	return router
}
