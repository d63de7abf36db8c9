package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PageHandler serves the static public pages.
type PageHandler struct {
	db *gorm.DB
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(db *gorm.DB) *PageHandler {
	return &PageHandler{db: db}
}

// Home renders the landing page.
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", viewData(c, h.db))
}

// About renders the about page.
func (h *PageHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", viewData(c, h.db))
}
