package handlers

import (
	"fmt"
	"net/http"
	"time"

	"interview-ace/internal/repository"
	"interview-ace/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	log *zap.Logger
}

func NewUserHandler(log *zap.Logger) *UserHandler {
	return &UserHandler{log: log}
}

// ShowProfile returns the current user with ReminderTime converted back from
// UTC into the stored timezone, so the settings form shows what the user
// originally picked.
func (h *UserHandler) ShowProfile(c *gin.Context) {
	user := *currentUser(c)

	if user.TimeZone != "" && user.ReminderTime != "" {
		loc, err := time.LoadLocation(user.TimeZone)
		if err == nil {
			utcTime, err := time.Parse("15:04", user.ReminderTime)
			if err == nil {
				now := time.Now().UTC()
				reminderInUTC := time.Date(now.Year(), now.Month(), now.Day(), utcTime.Hour(), utcTime.Minute(), 0, 0, time.UTC)
				user.ReminderTime = reminderInUTC.In(loc).Format("15:04")
			}
		}
	}

	c.JSON(http.StatusOK, user)
}

type updateInfoRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *UserHandler) UpdateInfo(c *gin.Context) {
	user := currentUser(c)

	var req updateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := repository.UpdateUser(c, user.ID, req.FirstName, req.LastName); err != nil {
		h.log.Error("Failed to update user info", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.Status(http.StatusNoContent)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	user := currentUser(c)

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !user.CheckPassword(req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect current password"})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New passwords do not match"})
		return
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := repository.UpdateUserPassword(c, user.ID, req.NewPassword); err != nil {
		h.log.Error("Failed to update password", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}
	c.Status(http.StatusNoContent)
}

type notificationSettingsRequest struct {
	Enabled      bool   `json:"enabled"`
	ReminderTime string `json:"reminderTime"`
	TimeZone     string `json:"timeZone"`
}

func (h *UserHandler) UpdateNotificationSettings(c *gin.Context) {
	user := currentUser(c)

	var req notificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.TimeZone == "" {
		req.TimeZone = "UTC"
	}

	loc, err := time.LoadLocation(req.TimeZone)
	if err != nil {
		h.log.Error("Invalid timezone identifier", zap.Error(err), zap.String("timezone", req.TimeZone))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timezone"})
		return
	}

	// Combine the current date with the user's selected time.
	// This provides the context needed to correctly determine if DST is active.
	now := time.Now()
	dateTimeString := fmt.Sprintf("%s %s", now.Format("2006-01-02"), req.ReminderTime)

	// Parse the full date and time string in the user's local timezone.
	parsedTime, err := time.ParseInLocation("2006-01-02 15:04", dateTimeString, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time format. Please use HH:MM."})
		return
	}

	// Convert to UTC and format for storage.
	utcReminderTime := parsedTime.UTC().Format("15:04")
	if err := repository.UpdateNotificationPreferences(user.ID, req.Enabled, utcReminderTime, req.TimeZone); err != nil {
		h.log.Error("Failed to update notification preferences", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save notification settings"})
		return
	}
	c.Status(http.StatusNoContent)
}

type deleteAccountRequest struct {
	Password     string `json:"password" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required"`
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	user := currentUser(c)

	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Confirmation != "DELETE" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please type DELETE to confirm"})
		return
	}
	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
		return
	}
	if err := repository.DeleteUser(c, user.ID); err != nil {
		h.log.Error("Failed to delete account", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	session.Save()

	c.Status(http.StatusNoContent)
}
