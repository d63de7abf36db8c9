package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ase-portfolio/webapp/internal/mail"
	"github.com/ase-portfolio/webapp/internal/models"
	"github.com/ase-portfolio/webapp/internal/security"
)

// UpgradeHandler runs the one-time-code admin upgrade flow. The pending
// code lives only in the requesting session and is removed when a matching
// code is submitted or when a new request supersedes it. A wrong guess
// leaves the code pending; attempts are not limited.
type UpgradeHandler struct {
	db     *gorm.DB
	sender mail.Sender
}

// NewUpgradeHandler constructs an UpgradeHandler.
func NewUpgradeHandler(db *gorm.DB, sender mail.Sender) *UpgradeHandler {
	return &UpgradeHandler{db: db, sender: sender}
}

// upgradeForm defines the code submission schema.
type upgradeForm struct {
	AdminCode string `form:"admin_code" binding:"required"`
}

// RequestCode generates a fresh upgrade code, stores it in the session, and
// hands it to the delivery collaborator. Delivery failure is a warning, the
// code stays usable from the server log.
func (h *UpgradeHandler) RequestCode(c *gin.Context) {
	code, errGen := security.GenerateOTP()
	if errGen != nil {
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).WithError(errGen).Error("otp generation failed")
		flash(c, "danger", "Could not generate a code. Try again.")
		c.Redirect(http.StatusSeeOther, "/private")
		return
	}

	sess := sessions.Default(c)
	sess.Set(SessionKeyAdminOTP, code)
	if errSave := sess.Save(); errSave != nil {
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).WithError(errSave).Error("session save failed")
		flash(c, "danger", "Could not store the code. Try again.")
		c.Redirect(http.StatusSeeOther, "/private")
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, sessionUserID(c)).Error; errFind != nil {
		flash(c, "danger", "Could not load your account.")
		c.Redirect(http.StatusSeeOther, "/private")
		return
	}

	errSend := h.sender.Send(c.Request.Context(), user.EmailOrEmpty(),
		"Admin Access Code", "Your Admin Upgrade Code is: "+code)
	if errSend != nil {
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).WithError(errSend).Warn("upgrade code delivery failed")
		flash(c, "danger", "Error sending email. Check server logs.")
	} else {
		flash(c, "info", "Code sent! Check your email.")
	}
	c.Redirect(http.StatusSeeOther, "/private")
}

// ShowPrivate renders the private area with the upgrade form.
func (h *UpgradeHandler) ShowPrivate(c *gin.Context) {
	c.HTML(http.StatusOK, "private.html", viewData(c, h.db))
}

// SubmitCode compares the submitted code against the pending one. Only an
// exact string match upgrades; a mismatch changes nothing and the user may
// retry.
func (h *UpgradeHandler) SubmitCode(c *gin.Context) {
	var form upgradeForm
	if errBind := c.ShouldBind(&form); errBind != nil {
		flash(c, "danger", "Invalid Code.")
		c.HTML(http.StatusOK, "private.html", viewData(c, h.db))
		return
	}

	sess := sessions.Default(c)
	pending, _ := sess.Get(SessionKeyAdminOTP).(string)
	if pending == "" || form.AdminCode != pending {
		flash(c, "danger", "Invalid Code.")
		c.HTML(http.StatusOK, "private.html", viewData(c, h.db))
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", sessionUserID(c)).
		Updates(map[string]any{"role": models.RoleAdmin, "updated_at": time.Now().UTC()})
	if res.Error != nil || res.RowsAffected == 0 {
		errUpdate := res.Error
		if errUpdate == nil {
			errUpdate = errors.New("user row missing")
		}
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).WithError(errUpdate).Error("role upgrade failed")
		flash(c, "danger", "Could not upgrade your account. Try again.")
		c.HTML(http.StatusOK, "private.html", viewData(c, h.db))
		return
	}

	sess.Set(SessionKeyRole, models.RoleAdmin)
	sess.Delete(SessionKeyAdminOTP)
	_ = sess.Save()

	flash(c, "success", "Success! You are now an Admin.")
	c.Redirect(http.StatusSeeOther, "/private")
}
