package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ase-portfolio/webapp/internal/market"
)

// MarketHandler serves the gold market dashboard and the history API.
type MarketHandler struct {
	db     *gorm.DB
	client *market.Client
}

// NewMarketHandler constructs a MarketHandler.
func NewMarketHandler(db *gorm.DB, client *market.Client) *MarketHandler {
	return &MarketHandler{db: db, client: client}
}

// marketForm defines the dashboard form schema.
type marketForm struct {
	Currency string `form:"currency" binding:"omitempty,alpha,len=3"`
}

// Show renders the dashboard without a snapshot; prices load on submit and
// the chart loads from the history API.
func (h *MarketHandler) Show(c *gin.Context) {
	h.renderDashboard(c, nil)
}

// Lookup fetches the gold/forex snapshot for the requested currency.
func (h *MarketHandler) Lookup(c *gin.Context) {
	var form marketForm
	if errBind := c.ShouldBind(&form); errBind != nil {
		flash(c, "danger", "Currency must be a 3-letter code.")
		h.renderDashboard(c, nil)
		return
	}

	snap, errSnap := h.client.Snapshot(c.Request.Context(), form.Currency)
	if errSnap != nil {
		switch {
		case errors.Is(errSnap, market.ErrUnsupportedCurrency):
			flash(c, "danger", "Unsupported currency code.")
		case errors.Is(errSnap, market.ErrConnection):
			flash(c, "danger", "Could not reach the market data service.")
		default:
			flash(c, "danger", "Market data is unavailable right now.")
		}
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
			"currency":   form.Currency,
		}).WithError(errSnap).Warn("market lookup failed")
		h.renderDashboard(c, nil)
		return
	}
	h.renderDashboard(c, &snap)
}

// renderDashboard renders the market page, with a snapshot when present.
func (h *MarketHandler) renderDashboard(c *gin.Context, snap *market.Snapshot) {
	data := viewData(c, h.db)
	data["DefaultCurrency"] = h.client.DefaultCurrency()
	if snap != nil {
		data["Snapshot"] = snap
	}
	c.HTML(http.StatusOK, "market.html", data)
}

// GoldHistory returns the clamped historical gold series as JSON.
func (h *MarketHandler) GoldHistory(c *gin.Context) {
	days := market.MaxHistoryDays
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil {
			days = parsed
		}
	}

	hist, errHist := h.client.History(c.Request.Context(), days)
	if errHist != nil {
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
			"days":       days,
		}).WithError(errHist).Warn("gold history fetch failed")
		message := "could not fetch historical data"
		if errors.Is(errHist, market.ErrNoData) {
			message = "no historical data available"
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusOK, hist)
}
