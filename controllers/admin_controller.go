// File: controllers/admin_controller.go
package controllers

import (
	"context"
	"net/http"
	"strconv"

	"catfish-cull/importer"
	"catfish-cull/logger"
	"catfish-cull/models"
	"catfish-cull/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// maxImportBytes caps the size of an uploaded export.
const maxImportBytes = 5 << 20

// Refresher is implemented by caches that can be told to reload now.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ---------------- Admin Controller ----------------

// AdminController runs the staff workflows: sign-in, check-in, weigh-in,
// protests, finalisation and roster import.
type AdminController struct {
	Repo         services.Repository
	Results      *services.ResultsService
	Leaderboard  Refresher
	PasswordHash string
	Columns      importer.ColumnMap
}

// NewAdminController wires the staff handlers.
func NewAdminController(repo services.Repository, results *services.ResultsService, leaderboard Refresher, passwordHash string) *AdminController {
	return &AdminController{
		Repo:         repo,
		Results:      results,
		Leaderboard:  leaderboard,
		PasswordHash: passwordHash,
		Columns:      importer.DefaultColumns,
	}
}

// ComparePasswords checks if the given password matches the hashed password
func ComparePasswords(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}

// ---------------- sign-in ----------------

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login checks the shared staff password and marks the session as admin.
func (ac *AdminController) Login(c *gin.Context) {
	if ac.PasswordHash == "" {
		logger.Warn.Println("Login: ADMIN_PASSWORD_HASH not set; staff sign-in disabled")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Staff sign-in is not configured"})
		return
	}

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all fields."})
		return
	}
	if !ComparePasswords(ac.PasswordHash, req.Password) {
		logger.Warn.Printf("Login: Invalid login attempt for user %q", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password."})
		return
	}

	user := req.Username
	if user == "" {
		user = "staff"
	}
	if err := SessionFrom(c).SignIn(user); err != nil {
		logger.Error.Println("Login: Failed to save session:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error, please try again."})
		return
	}
	logger.Info.Printf("Login: %s signed in", user)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session.
func (ac *AdminController) Logout(c *gin.Context) {
	session := SessionFrom(c)
	user := session.User()
	if err := session.SignOut(); err != nil {
		logger.Error.Printf("Logout: Error saving session during logout: %v", err)
	} else {
		logger.Info.Printf("Logout: %q signed out", user)
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// ---------------- check-in ----------------

// Roster lists every team with its check-in counts.
func (ac *AdminController) Roster(c *gin.Context) {
	teams, err := ac.Repo.PollRoster(c.Request.Context())
	if err != nil {
		respondError(c, "Roster", err)
		return
	}
	counts := services.PollCountsOrDerive(c.Request.Context(), ac.Repo, teams)
	c.JSON(http.StatusOK, gin.H{"teams": teams, "counts": counts})
}

type checkInRequest struct {
	Registered *bool `json:"registered"`
}

// SetCheckIn marks team :number as arrived, or back to not arrived with
// {"registered": false}.
func (ac *AdminController) SetCheckIn(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid team number"})
		return
	}
	var req checkInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
	}
	registered := req.Registered == nil || *req.Registered

	team, err := ac.Repo.SetRegistered(c.Request.Context(), number, registered)
	if err != nil {
		respondError(c, "SetCheckIn", err)
		return
	}
	logger.Info.Printf("SetCheckIn: Team #%d registered=%v", number, registered)
	c.JSON(http.StatusOK, team)
}

// ---------------- results ----------------

// SubmitCatch records a weigh-in.
func (ac *AdminController) SubmitCatch(c *gin.Context) {
	var sub services.CatchSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	entry, err := ac.Results.SubmitCatch(c.Request.Context(), sub)
	if err != nil {
		respondError(c, "SubmitCatch", err)
		return
	}
	ac.refreshLeaderboard(c.Request.Context())
	c.JSON(http.StatusCreated, entry)
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// SetCatchStatus moves catch :id to a new status.
func (ac *AdminController) SetCatchStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid catch id"})
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	status, err := ac.Results.SetCatchStatus(c.Request.Context(), id, models.CatchStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, "SetCatchStatus", err)
		return
	}
	ac.refreshLeaderboard(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

// StatusCounts tallies current catches by status.
func (ac *AdminController) StatusCounts(c *gin.Context) {
	counts, err := ac.Results.StatusCounts(c.Request.Context())
	if err != nil {
		respondError(c, "StatusCounts", err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Finalize confirms all provisional catches and locks the results.
func (ac *AdminController) Finalize(c *gin.Context) {
	n, err := ac.Results.FinalizeResults(c.Request.Context())
	if err != nil {
		respondError(c, "Finalize", err)
		return
	}
	ac.refreshLeaderboard(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"confirmed": n, "status": models.EventFinal})
}

func (ac *AdminController) refreshLeaderboard(ctx context.Context) {
	if ac.Leaderboard == nil {
		return
	}
	if err := ac.Leaderboard.Refresh(ctx); err != nil {
		logger.Warn.Printf("refreshLeaderboard: %v", err)
	}
}

// ---------------- import ----------------

// ImportPreview reads an uploaded CSV export (form field "file") and returns
// the proposed teams without saving anything.
func (ac *AdminController) ImportPreview(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upload a CSV export as \"file\""})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, "ImportPreview", err)
		return
	}
	defer f.Close()

	rows, err := importer.ReadCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res := services.Reconcile(importer.Registrants(rows, ac.Columns))
	logger.Info.Printf("ImportPreview: %d candidates (%d unmatched, %d skipped)", len(res.Candidates), res.Unmatched(), len(res.Skipped))
	c.JSON(http.StatusOK, res)
}

type commitRequest struct {
	Candidates []services.Candidate `json:"candidates"`
}

// ImportCommit saves the (possibly edited) candidates as teams.
func (ac *AdminController) ImportCommit(c *gin.Context) {
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no candidates to import"})
		return
	}
	teams, err := services.CandidatesToTeams(req.Candidates)
	if err != nil {
		respondError(c, "ImportCommit", err)
		return
	}
	if err := ac.Repo.InsertTeams(c.Request.Context(), teams); err != nil {
		respondError(c, "ImportCommit", err)
		return
	}
	logger.Info.Printf("ImportCommit: Imported %d teams", len(teams))
	c.JSON(http.StatusCreated, gin.H{"imported": len(teams)})
}
