package auth

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/homielab/homie/internal/database"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionKeyUserID = "user_id"
	sessionKeyState  = "oauth_state"
)

// OIDCLogin starts the auth-code flow.
func (p *Provider) OIDCLogin(c *gin.Context) {
	if !p.OIDCEnabled() {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	state := uuid.New().String()
	session := sessions.Default(c)
	session.Set(sessionKeyState, state)
	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	c.Redirect(http.StatusFound, p.oauthConfig.AuthCodeURL(state))
}

// OIDCCallback finishes the auth-code flow: verifies the token, applies
// the email allowlists, syncs the account row (recomputing the admin flag
// from the allowlist) and starts the session.
func (p *Provider) OIDCCallback(c *gin.Context) {
	ctx := c.Request.Context()
	session := sessions.Default(c)

	// The state is single-use: drop it from the session before checking,
	// and persist the drop even when the check fails.
	state, _ := session.Get(sessionKeyState).(string)
	session.Delete(sessionKeyState)
	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	if state == "" || c.Query("state") != state {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	oauth2Token, err := p.oauthConfig.Exchange(ctx, c.Query("code"))
	if err != nil {
		c.AbortWithError(http.StatusUnauthorized, err) //nolint:errcheck
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.AbortWithError(http.StatusUnauthorized, err) //nolint:errcheck
		return
	}

	var claims struct {
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Sub               string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	if !p.cfg.AccessControl.IsAllowed(claims.Email) {
		log.Warn("login denied, email not on allowlist", "email", claims.Email)
		c.Redirect(http.StatusFound, "/unauthorized")
		return
	}

	username := claims.PreferredUsername
	if username == "" {
		username, _, _ = strings.Cut(claims.Email, "@")
	}
	name := claims.Name
	if name == "" {
		name = username
	}

	user, err := p.db.SyncUser(ctx, database.SyncUserParams{
		Subject:  claims.Sub,
		Email:    claims.Email,
		Username: username,
		FullName: name,
		AuthMode: database.AuthModeOIDC,
		IsAdmin:  p.cfg.AccessControl.IsAdmin(claims.Email),
	})
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	session.Set(sessionKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	log.Info("user logged in", "user_id", user.ID, "admin", user.IsAdmin)
	c.Redirect(http.StatusFound, "/")
}

// LocalLogin handles the local operator form post.
func (p *Provider) LocalLogin(c *gin.Context) {
	if !p.LocalEnabled() {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	username := c.PostForm("username")
	password := c.PostForm("password")

	local := p.cfg.Auth.Local
	if username != local.Username ||
		bcrypt.CompareHashAndPassword([]byte(local.PasswordHash), []byte(password)) != nil {
		log.Warn("local login failed", "username", username)
		c.Redirect(http.StatusFound, "/login?error=invalid")
		return
	}

	user, err := p.db.SyncUser(c.Request.Context(), database.SyncUserParams{
		Email:    username + "@localhost",
		Username: username,
		FullName: username,
		AuthMode: database.AuthModeLocal,
		// Local mode is single-operator, the operator administers the app.
		IsAdmin: true,
	})
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session.
func (p *Provider) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	c.Redirect(http.StatusFound, "/login")
}
