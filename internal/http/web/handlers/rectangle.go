package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ase-portfolio/webapp/internal/geometry"
)

// RectangleHandler serves the rectangle calculator.
type RectangleHandler struct {
	db *gorm.DB
}

// NewRectangleHandler constructs a RectangleHandler.
func NewRectangleHandler(db *gorm.DB) *RectangleHandler {
	return &RectangleHandler{db: db}
}

// rectangleForm defines the calculator form schema.
type rectangleForm struct {
	Length float64 `form:"length" binding:"required"`
	Width  float64 `form:"width" binding:"required"`
	Action string  `form:"action" binding:"required,oneof=area perimeter"`
}

// Show renders the empty calculator.
func (h *RectangleHandler) Show(c *gin.Context) {
	c.HTML(http.StatusOK, "rectangle.html", viewData(c, h.db))
}

// Calculate computes the area or perimeter and re-renders the page.
func (h *RectangleHandler) Calculate(c *gin.Context) {
	var form rectangleForm
	if errBind := c.ShouldBind(&form); errBind != nil {
		flash(c, "danger", "Please enter a numeric length and width.")
		c.HTML(http.StatusOK, "rectangle.html", viewData(c, h.db))
		return
	}

	data := viewData(c, h.db)
	switch form.Action {
	case "area":
		data["Area"] = geometry.RectangleArea(form.Length, form.Width)
	case "perimeter":
		data["Perimeter"] = geometry.RectanglePerimeter(form.Length, form.Width)
	}
	c.HTML(http.StatusOK, "rectangle.html", data)
}
