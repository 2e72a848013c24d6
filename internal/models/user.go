package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Practice reminder preferences. ReminderTime is stored as "HH:MM" in UTC;
	// TimeZone keeps the IANA identifier the browser reported so the profile
	// page can render the time back in local terms.
	EmailNotificationsEnabled bool   `gorm:"default:false" json:"emailNotificationsEnabled"`
	ReminderTime              string `json:"reminderTime"`
	TimeZone                  string `json:"timeZone"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
