package repository

import (
	"context"
	"interview-ace/internal/database"
	"interview-ace/internal/models"

	"gorm.io/gorm"
)

// CreateSession inserts the row for a session that is about to start. The
// summary fields stay zero until the live stream ends.
func CreateSession(ctx context.Context, session *models.InterviewSession) error {
	return database.DB.WithContext(ctx).Create(session).Error
}

// FinishSessionTx writes the final summary and all integrity violations in a
// single transaction. The violation rows reference the summary ID, so a
// failure anywhere rolls back everything.
func FinishSessionTx(summary *models.InterviewSession, violations []models.ViolationRecord) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		// 1. Update the summary row created at session start
		if err := tx.Save(summary).Error; err != nil {
			return err
		}

		// 2. Insert all granular violations referencing the summary ID
		for i := range violations {
			violations[i].SessionID = summary.ID
		}
		if len(violations) > 0 {
			if err := tx.Create(&violations).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func GetSessionByID(ctx context.Context, id uint) (*models.InterviewSession, error) {
	var session models.InterviewSession
	result := database.DB.WithContext(ctx).First(&session, id)
	return &session, result.Error
}

// GetSessionsForUser returns a user's finished sessions, newest first.
// A limit of 0 returns the full history.
func GetSessionsForUser(ctx context.Context, userID uint, limit int) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	query := database.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ended_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

func GetViolationsForSession(ctx context.Context, sessionID uint) ([]models.ViolationRecord, error) {
	var violations []models.ViolationRecord
	err := database.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC").
		Find(&violations).Error
	return violations, err
}

func DeleteSession(ctx context.Context, userID, sessionID uint) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.InterviewSession
		if err := tx.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.ViolationRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&session).Error
	})
}
