// Package web registers the server-rendered routes and their middleware.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ase-portfolio/webapp/internal/http/web/handlers"
	"github.com/ase-portfolio/webapp/internal/mail"
	"github.com/ase-portfolio/webapp/internal/market"
	"github.com/ase-portfolio/webapp/internal/models"
	"github.com/ase-portfolio/webapp/internal/weather"
)

// RegisterWebRoutes registers all pages, the auth lifecycle, the upgrade
// flow, the admin dashboard, and the JSON endpoints.
func RegisterWebRoutes(r *gin.Engine, db *gorm.DB, sender mail.Sender, weatherClient *weather.Client, marketClient *market.Client) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	pageHandler := handlers.NewPageHandler(db)
	r.GET("/", pageHandler.Home)
	r.GET("/about", pageHandler.About)

	rectangleHandler := handlers.NewRectangleHandler(db)
	r.GET("/rectangle", rectangleHandler.Show)
	r.POST("/rectangle", rectangleHandler.Calculate)

	authHandler := handlers.NewAuthHandler(db)
	r.GET("/signup", authHandler.ShowSignup)
	r.POST("/signup", authHandler.Signup)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	upgradeHandler := handlers.NewUpgradeHandler(db, sender)
	authed := r.Group("")
	authed.Use(requireUser())
	authed.GET("/request_code", upgradeHandler.RequestCode)
	authed.GET("/private", upgradeHandler.ShowPrivate)
	authed.POST("/private", upgradeHandler.SubmitCode)

	adminHandler := handlers.NewAdminHandler(db)
	admin := r.Group("/admin")
	admin.Use(requireAdmin())
	admin.GET("", adminHandler.Dashboard)
	admin.POST("/toggle/:id", adminHandler.Toggle)
	admin.POST("/delete/:id", adminHandler.Delete)

	weatherHandler := handlers.NewWeatherHandler(db, weatherClient)
	r.GET("/weather", weatherHandler.Show)
	r.POST("/weather", weatherHandler.Lookup)

	marketHandler := handlers.NewMarketHandler(db, marketClient)
	r.GET("/market", marketHandler.Show)
	r.POST("/market", marketHandler.Lookup)
	r.GET("/api/gold-history", marketHandler.GoldHistory)
}

// RequestIDMiddleware tags every request with an id for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requireUser redirects anonymous browsers to the login page.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if handlers.CurrentUserID(c) == 0 {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireAdmin redirects non-admins to the home page. The role comes from
// the session cache, not the store: a demotion by another admin only takes
// effect once this session ends.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if handlers.CurrentRole(c) != models.RoleAdmin {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
