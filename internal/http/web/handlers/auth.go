package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ase-portfolio/webapp/internal/models"
	"github.com/ase-portfolio/webapp/internal/security"
)

// invalidCredentialsMessage is shown for unknown email AND wrong password,
// so a login attempt cannot probe which accounts exist.
const invalidCredentialsMessage = "Invalid email or password."

// AuthHandler serves signup, login, and logout.
type AuthHandler struct {
	db *gorm.DB
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// signupForm defines the signup form schema. There is deliberately no role
// field: a tampered form cannot inject a role, every account starts as user.
type signupForm struct {
	Username        string `form:"username" binding:"required,min=3,max=50"`
	Email           string `form:"email" binding:"omitempty,email"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

// loginForm defines the login form schema.
type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// ShowSignup renders the signup form.
func (h *AuthHandler) ShowSignup(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", viewData(c, h.db))
}

// Signup validates the form and creates a new account with role user.
func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	if errBind := c.ShouldBind(&form); errBind != nil {
		flash(c, "danger", "Check the form: username 3-50 characters, password at least 6, passwords must match.")
		c.HTML(http.StatusOK, "signup.html", viewData(c, h.db))
		return
	}

	email := strings.TrimSpace(form.Email)
	if email != "" {
		var count int64
		if errCount := h.db.WithContext(c.Request.Context()).
			Model(&models.User{}).Where("email = ?", email).Count(&count).Error; errCount != nil {
			h.renderSignupError(c, errCount)
			return
		}
		if count > 0 {
			flash(c, "danger", "Email already registered.")
			c.HTML(http.StatusOK, "signup.html", viewData(c, h.db))
			return
		}
	}

	hash, errHash := security.HashPassword(form.Password)
	if errHash != nil {
		h.renderSignupError(c, errHash)
		return
	}

	user := models.User{
		Username: form.Username,
		Password: hash,
		Role:     models.RoleUser,
		Active:   true,
	}
	if email != "" {
		user.Email = &email
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		h.renderSignupError(c, errCreate)
		return
	}

	flash(c, "success", "Account created! Please log in.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// renderSignupError logs the failure and re-renders the form.
func (h *AuthHandler) renderSignupError(c *gin.Context, err error) {
	log.WithFields(log.Fields{
		"route":      c.FullPath(),
		"request_id": c.GetString("request_id"),
	}).WithError(err).Error("signup failed")
	flash(c, "danger", "Could not create the account. Try again.")
	c.HTML(http.StatusOK, "signup.html", viewData(c, h.db))
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", viewData(c, h.db))
}

// Login verifies credentials and establishes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if errBind := c.ShouldBind(&form); errBind != nil {
		flash(c, "danger", invalidCredentialsMessage)
		c.HTML(http.StatusOK, "login.html", viewData(c, h.db))
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where("email = ?", strings.TrimSpace(form.Email)).First(&user).Error
	if errFind != nil || !security.CheckPassword(user.Password, form.Password) {
		flash(c, "danger", invalidCredentialsMessage)
		c.HTML(http.StatusOK, "login.html", viewData(c, h.db))
		return
	}

	// Checked only after the credentials verify, so the message cannot be
	// used to probe account state without the password.
	if !user.Active {
		flash(c, "danger", "Your account is deactivated.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	sess := sessions.Default(c)
	sess.Set(SessionKeyUserID, user.ID)
	sess.Set(SessionKeyRole, user.Role)
	sess.Set(SessionKeyUsername, user.Username)
	if errSave := sess.Save(); errSave != nil {
		log.WithFields(log.Fields{
			"route":      c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).WithError(errSave).Error("session save failed")
		flash(c, "danger", "Could not establish the session. Try again.")
		c.HTML(http.StatusOK, "login.html", viewData(c, h.db))
		return
	}

	flash(c, "success", "Logged in successfully!")
	c.Redirect(http.StatusSeeOther, "/private")
}

// Logout clears all session state unconditionally.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	flash(c, "info", "Logged out.")
	c.Redirect(http.StatusSeeOther, "/")
}
