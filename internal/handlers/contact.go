package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/trishadairy/storefront/internal/logging"
	"github.com/trishadairy/storefront/internal/models"
)

type ContactHandler struct {
	DB *gorm.DB
}

func (h *ContactHandler) Submit(c echo.Context) error {
	var req struct {
		Name    string `json:"name"    form:"name"`
		Email   string `json:"email"   form:"email"`
		Phone   string `json:"phone"   form:"phone"`
		Subject string `json:"subject" form:"subject"`
		Message string `json:"message" form:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Name, email, and message are required.",
		})
	}

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		logging.FromContext(c.Request().Context()).Error("persistence error", "op", "contact insert", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database error."})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Thank you for contacting us! We will reach out soon.",
	})
}
