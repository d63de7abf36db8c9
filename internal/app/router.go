package app

import (
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ase-portfolio/webapp/internal/config"
	"github.com/ase-portfolio/webapp/internal/http/web"
	"github.com/ase-portfolio/webapp/internal/mail"
	"github.com/ase-portfolio/webapp/internal/market"
	"github.com/ase-portfolio/webapp/internal/security"
	"github.com/ase-portfolio/webapp/internal/weather"
	"github.com/ase-portfolio/webapp/internal/webui"
)

// NewRouter assembles the gin engine: recovery, request ids, the in-memory
// session store behind a signed cookie, templates, and all routes.
func NewRouter(cfg config.Config, conn *gorm.DB, sender mail.Sender) (*gin.Engine, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(web.RequestIDMiddleware())

	secret := cfg.Session.Secret
	if secret == "" {
		// Sessions are in-memory anyway; an ephemeral secret only means
		// cookies from before a restart stop validating, which they would.
		generated, errGen := security.GenerateRandomString(32)
		if errGen != nil {
			return nil, fmt.Errorf("generate session secret: %w", errGen)
		}
		secret = generated
		log.Warn("no session secret configured, generated an ephemeral one")
	}
	engine.Use(sessions.Sessions(cfg.Session.CookieName, memstore.NewStore([]byte(secret))))

	tmpl, errTmpl := webui.Templates()
	if errTmpl != nil {
		return nil, errTmpl
	}
	engine.SetHTMLTemplate(tmpl)

	weatherClient := weather.NewClient(cfg.Weather.GeocodeURL, cfg.Weather.ForecastURL, cfg.UpstreamTimeout)
	marketClient := market.NewClient(
		cfg.Market.GoldURL,
		cfg.Market.ForexURL,
		cfg.Market.HistoryURL,
		cfg.Market.DefaultCurrency,
		cfg.UpstreamTimeout,
	)

	web.RegisterWebRoutes(engine, conn, sender, weatherClient, marketClient)
	return engine, nil
}
