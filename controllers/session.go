// Package controllers provides the HTTP handlers for the kiosks, the public leaderboard and event staff.
// File: controllers/session.go
package controllers

import (
	"catfish-cull/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AdminSession wraps the request's cookie session. It is created per request
// and is the only place the admin flags are read or written.
type AdminSession struct {
	s sessions.Session
}

// SessionFrom returns the admin view of the request's session.
func SessionFrom(c *gin.Context) AdminSession {
	return AdminSession{s: sessions.Default(c)}
}

// IsAdmin reports whether the session has signed in.
func (a AdminSession) IsAdmin() bool {
	ok, _ := a.s.Get(middleware.SessionAdminKey).(bool)
	return ok
}

// User is the name the session signed in with.
func (a AdminSession) User() string {
	u, _ := a.s.Get(middleware.SessionUserKey).(string)
	return u
}

// SignIn marks the session as admin and saves it.
func (a AdminSession) SignIn(user string) error {
	a.s.Set(middleware.SessionAdminKey, true)
	a.s.Set(middleware.SessionUserKey, user)
	return a.s.Save()
}

// SignOut clears every session value and saves.
func (a AdminSession) SignOut() error {
	a.s.Clear()
	return a.s.Save()
}
