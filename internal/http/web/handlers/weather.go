package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ase-portfolio/webapp/internal/weather"
)

// WeatherHandler serves the weather lookup page.
type WeatherHandler struct {
	db     *gorm.DB
	client *weather.Client
}

// NewWeatherHandler constructs a WeatherHandler.
func NewWeatherHandler(db *gorm.DB, client *weather.Client) *WeatherHandler {
	return &WeatherHandler{db: db, client: client}
}

// weatherForm defines the lookup form schema.
type weatherForm struct {
	City string `form:"city" binding:"required,min=2,max=100"`
}

// Show renders the empty lookup form.
func (h *WeatherHandler) Show(c *gin.Context) {
	c.HTML(http.StatusOK, "weather.html", viewData(c, h.db))
}

// Lookup geocodes the city and fetches its current weather.
func (h *WeatherHandler) Lookup(c *gin.Context) {
	var form weatherForm
	if errBind := c.ShouldBind(&form); errBind != nil {
		flash(c, "danger", "Enter a city name between 2 and 100 characters.")
		c.HTML(http.StatusOK, "weather.html", viewData(c, h.db))
		return
	}

	report, errReport := h.client.Report(c.Request.Context(), form.City)
	if errReport != nil {
		switch {
		case errors.Is(errReport, weather.ErrCityNotFound):
			flash(c, "danger", "City not found. Check the spelling and try again.")
		case errors.Is(errReport, weather.ErrDataUnavailable):
			flash(c, "danger", "Weather data is unavailable right now.")
		default:
			flash(c, "danger", "Could not fetch the weather report.")
		}
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
			"city":       form.City,
		}).WithError(errReport).Warn("weather lookup failed")
		c.HTML(http.StatusOK, "weather.html", viewData(c, h.db))
		return
	}

	data := viewData(c, h.db)
	data["Report"] = report
	c.HTML(http.StatusOK, "weather.html", data)
}
