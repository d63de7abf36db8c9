package handlers

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbutil "github.com/ase-portfolio/webapp/internal/db"
)

// Session keys. These mirror the browser session contract: user identity,
// a cached role and username, and an optional pending upgrade code.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyRole     = "role"
	SessionKeyUsername = "username"
	SessionKeyAdminOTP = "admin_otp"
)

// Flash is a one-shot notice rendered on the next page load.
type Flash struct {
	Level   string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// flash queues a notice in the session.
func flash(c *gin.Context, level, message string) {
	sess := sessions.Default(c)
	sess.AddFlash(Flash{Level: level, Message: message})
	_ = sess.Save()
}

// takeFlashes drains queued notices from the session.
func takeFlashes(c *gin.Context) []Flash {
	sess := sessions.Default(c)
	raw := sess.Flashes()
	if len(raw) > 0 {
		_ = sess.Save()
	}
	out := make([]Flash, 0, len(raw))
	for _, item := range raw {
		if f, ok := item.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

// CurrentUserID returns the logged-in user id, or 0 when anonymous.
func CurrentUserID(c *gin.Context) uint64 {
	if id, ok := sessions.Default(c).Get(SessionKeyUserID).(uint64); ok {
		return id
	}
	return 0
}

// CurrentRole returns the cached role, or an empty string when anonymous.
func CurrentRole(c *gin.Context) string {
	if role, ok := sessions.Default(c).Get(SessionKeyRole).(string); ok {
		return role
	}
	return ""
}

// sessionUserID and sessionRole keep handler code terse.
func sessionUserID(c *gin.Context) uint64 { return CurrentUserID(c) }
func sessionRole(c *gin.Context) string   { return CurrentRole(c) }

// sessionUsername returns the cached username.
func sessionUsername(c *gin.Context) string {
	if name, ok := sessions.Default(c).Get(SessionKeyUsername).(string); ok {
		return name
	}
	return ""
}

// viewData assembles the fields every template expects, draining flashes.
func viewData(c *gin.Context, conn *gorm.DB) gin.H {
	userID := sessionUserID(c)
	return gin.H{
		"SiteName": dbutil.SiteName(conn),
		"LoggedIn": userID != 0,
		"UserID":   userID,
		"Role":     sessionRole(c),
		"Username": sessionUsername(c),
		"Flashes":  takeFlashes(c),
	}
}
