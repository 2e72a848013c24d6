package repository

import (
	"interview-ace/internal/database"
	"interview-ace/internal/models"
	"time"
)

// GetUsersForEmailReminder finds users who have practice reminders enabled for a specific time.
func GetUsersForEmailReminder(reminderTime string) ([]models.User, error) {
	var users []models.User
	err := database.DB.Where("email_notifications_enabled = ? AND reminder_time = ?", true, reminderTime).Find(&users).Error
	return users, err
}

// HasPracticedToday checks if a user finished a practice session on the current day.
func HasPracticedToday(userID uint) (bool, error) {
	var count int64
	today := time.Now().Truncate(24 * time.Hour)
	tomorrow := today.Add(24 * time.Hour)

	err := database.DB.Model(&models.InterviewSession{}).
		Where("user_id = ? AND ended_at >= ? AND ended_at < ?", userID, today, tomorrow).
		Count(&count).Error

	return count > 0, err
}

// UpdateNotificationPreferences updates a user's reminder settings.
func UpdateNotificationPreferences(userID uint, enabled bool, reminderTime, timezone string) error {
	return database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email_notifications_enabled": enabled,
		"reminder_time":               reminderTime,
		"time_zone":                   timezone,
	}).Error
}
