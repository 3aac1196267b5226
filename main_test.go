// main_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catfish-cull/config"
	"catfish-cull/models"
	"catfish-cull/services"
	"catfish-cull/websocket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("weigh-in"), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		ApplicationURL:      "http://localhost:8080",
		WebsocketURL:        "ws://localhost:8080/display/ws",
		Env:                 "test",
		SessionSecret:       "test-secret",
		AdminPasswordHash:   string(hash),
		RefreshInterval:     20 * time.Millisecond,
		DwellInterval:       time.Hour,
		ProgressInterval:    time.Hour,
		LeaderboardInterval: time.Hour,
		ItemHeight:          96,
		ChromeOverhead:      320,
		CheckedInLimit:      20,
		LatestEntries:       3,
		DisplayNames:        []string{"main"},
		DisplayIdleGrace:    time.Minute,
		ProtestDeadline:     "5:00 PM",
		PrizegivingTime:     "6:30 PM",
	}
}

func newTestApp(t *testing.T) (*app, *services.MemorySource) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := testConfig(t)
	repo, closeRepo, err := openRepository(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(closeRepo)
	mem, ok := repo.(*services.MemorySource)
	require.True(t, ok, "no DATABASE_URL should select the memory source")

	require.NoError(t, mem.InsertTeams(ctx, []models.Team{
		{TeamNumber: 1, Competitor1: models.Competitor{Name: "Ana"}, Competitor2: models.Competitor{Name: "Ben"}, Registered: true},
		{TeamNumber: 2, Competitor1: models.Competitor{Name: "Cy"}, Competitor2: models.Competitor{Name: "Dee"}},
	}))

	a := newApp(ctx, cfg, repo, newMetrics(cfg))
	t.Cleanup(a.displays.CloseAll)
	return a, mem
}

func serve(router *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthRoute(t *testing.T) {
	a, _ := newTestApp(t)
	w := serve(a.router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
}

func TestAdminRoutes_Unauthorised(t *testing.T) {
	a, _ := newTestApp(t)
	for _, path := range []string{"/admin/teams", "/admin/catches/status-counts"} {
		w := serve(a.router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := serve(a.router, http.MethodPost, "/admin/finalize", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLeaderboardRoute_NotReadyUntilRefreshed(t *testing.T) {
	a, _ := newTestApp(t)
	w := serve(a.router, http.MethodGet, "/leaderboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, a.feed.Refresh(context.Background()))
	w = serve(a.router, http.MethodGet, "/leaderboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWeighInFlowsToLeaderboard(t *testing.T) {
	a, _ := newTestApp(t)

	w := serve(a.router, http.MethodPost, "/admin/login", gin.H{"password": "weigh-in"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionName {
			session = ck
		}
	}
	require.NotNil(t, session)

	w = serve(a.router, http.MethodPost, "/admin/catches", gin.H{"teamNumber": 2, "catfishCount": 5}, session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// the admin controller refreshes the feed after each weigh-in
	w = serve(a.router, http.MethodGet, "/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap services.LeaderboardSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, 2, snap.Rows[0].Team.TeamNumber)
}

func TestDisplayRoutes(t *testing.T) {
	a, _ := newTestApp(t)

	w := serve(a.router, http.MethodGet, "/display/state", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no kiosk has opened main yet")
	_, err := a.displays.Open("main")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		w := serve(a.router, http.MethodGet, "/display/state", nil)
		var st websocket.DisplayState
		return w.Code == http.StatusOK && json.Unmarshal(w.Body.Bytes(), &st) == nil && st.Loaded
	}, time.Second, 10*time.Millisecond)

	w = serve(a.router, http.MethodPost, "/display/section", gin.H{"section": "checkedIn"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var st websocket.DisplayState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, websocket.SectionCheckedIn, st.ActiveSection)
	assert.Equal(t, 1, st.Counts.CheckedIn)
}

func TestDisplayRoutes_UnknownDisplay(t *testing.T) {
	a, _ := newTestApp(t)
	w := serve(a.router, http.MethodGet, "/display/ws?display=anon", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, a.displays.Names())
}

func TestNewMetrics_Disabled(t *testing.T) {
	assert.IsType(t, websocket.NoopMetrics{}, newMetrics(&config.Config{}))
}
