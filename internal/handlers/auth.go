package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/trishadairy/storefront/internal/hash"
	"github.com/trishadairy/storefront/internal/logging"
	authmw "github.com/trishadairy/storefront/internal/middleware/auth"
	"github.com/trishadairy/storefront/internal/models"
	"github.com/trishadairy/storefront/internal/session"
)

type AuthHandler struct {
	DB         *gorm.DB
	Sessions   session.Store
	SessionTTL time.Duration
	Producer   EventPublisher
}

func (h *AuthHandler) Register(c echo.Context) error {
	userName := strings.TrimSpace(c.FormValue("user_name"))
	email := strings.TrimSpace(c.FormValue("email"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	city := strings.TrimSpace(c.FormValue("city"))
	password := c.FormValue("password")
	confirm := c.FormValue("confirm_password")

	if userName == "" || email == "" || phone == "" || city == "" || password == "" || confirm == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are required.")
	}
	if password != confirm {
		return echo.NewHTTPError(http.StatusBadRequest, "Passwords do not match.")
	}

	var existing models.User
	err := h.DB.Where("user_name = ? OR email = ?", userName, email).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username or email already registered.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return h.persistenceError(c, "register lookup", err)
	}

	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return h.persistenceError(c, "password hash", err)
	}

	user := models.User{
		UserName:     userName,
		Email:        email,
		Phone:        phone,
		City:         city,
		PasswordHash: passwordHash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// The unique indexes backstop the check-then-insert window: a
		// racing duplicate surfaces here as a constraint violation.
		if isDuplicateErr(err) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username or email already registered.")
		}
		return h.persistenceError(c, "register insert", err)
	}

	if err := h.startSession(c, &user); err != nil {
		return h.persistenceError(c, "register session", err)
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":      "user_registered",
		"user_id":   user.ID,
		"user_name": user.UserName,
	})

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) Login(c echo.Context) error {
	userName := strings.TrimSpace(c.FormValue("user_name"))
	password := c.FormValue("password")
	if userName == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Please enter both username and password")
	}

	var user models.User
	if err := h.DB.Where("user_name = ?", userName).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Pay the bcrypt cost anyway so an unknown username is
			// indistinguishable from a wrong password by timing.
			hash.BurnCheck(password)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		return h.persistenceError(c, "login lookup", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	if err := h.startSession(c, &user); err != nil {
		return h.persistenceError(c, "login session", err)
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":      "user_logged_in",
		"user_id":   user.ID,
		"user_name": user.UserName,
	})

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	token := authmw.Token(c)
	if token != "" {
		if err := h.Sessions.Delete(c.Request().Context(), token); err != nil {
			return h.persistenceError(c, "logout", err)
		}
	}
	c.SetCookie(session.ExpiredCookie())
	return c.Redirect(http.StatusSeeOther, "/login.html")
}

// SessionInfo lets the page renderer check login state.
func (h *AuthHandler) SessionInfo(c echo.Context) error {
	state := authmw.State(c)
	if !state.LoggedIn() {
		return c.JSON(http.StatusOK, map[string]any{"loggedIn": false})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loggedIn": true,
		"user":     state.UserName,
	})
}

// startSession issues a fresh token holding the user's identity and an
// empty cart, replacing whatever session the browser carried before.
func (h *AuthHandler) startSession(c echo.Context, user *models.User) error {
	token, err := session.NewToken()
	if err != nil {
		return err
	}

	err = h.Sessions.Mutate(c.Request().Context(), token, func(s *session.State) error {
		s.UserID = user.ID
		s.UserName = user.UserName
		return nil
	})
	if err != nil {
		return err
	}

	c.SetCookie(session.NewCookie(token, h.SessionTTL))
	return nil
}

func (h *AuthHandler) persistenceError(c echo.Context, op string, err error) error {
	logging.FromContext(c.Request().Context()).Error("persistence error", "op", op, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
