package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbutil "github.com/ase-portfolio/webapp/internal/db"
	"github.com/ase-portfolio/webapp/internal/models"
)

// AdminHandler serves the user-management dashboard. Every route trusts the
// role cached in the session, so demoting or deactivating an admin only
// takes effect when their session ends.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// Dashboard lists users, optionally filtered by a username/email search.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "username")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "email"),
			pattern,
			pattern,
		)
	}

	var users []models.User
	if errFind := q.Order("created_at ASC").Find(&users).Error; errFind != nil {
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).WithError(errFind).Error("list users failed")
		flash(c, "danger", "Could not load users.")
		users = nil
	}

	data := viewData(c, h.db)
	data["Users"] = users
	data["Search"] = search
	c.HTML(http.StatusOK, "admin.html", data)
}

// Toggle flips a user's active flag. Acting on your own account is a no-op.
func (h *AdminHandler) Toggle(c *gin.Context) {
	h.mutateTarget(c, func(target *models.User) error {
		return h.db.WithContext(c.Request.Context()).Model(target).
			Update("active", !target.Active).Error
	})
}

// Delete permanently removes a user. Acting on your own account is a no-op.
func (h *AdminHandler) Delete(c *gin.Context) {
	h.mutateTarget(c, func(target *models.User) error {
		return h.db.WithContext(c.Request.Context()).Delete(target).Error
	})
}

// mutateTarget loads the target user, skips self-actions, applies the
// mutation, and redirects back to the dashboard.
func (h *AdminHandler) mutateTarget(c *gin.Context, mutate func(*models.User) error) {
	defer c.Redirect(http.StatusSeeOther, "/admin")

	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		flash(c, "danger", "Invalid user id.")
		return
	}
	if id == sessionUserID(c) {
		// Admins cannot lock out or delete themselves.
		return
	}

	var target models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&target, id).Error; errFind != nil {
		flash(c, "danger", "User not found.")
		return
	}

	if errMutate := mutate(&target); errMutate != nil {
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).WithError(errMutate).Error("admin user mutation failed")
		flash(c, "danger", "Could not update the user.")
	}
}
