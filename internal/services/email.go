package services

import (
	"fmt"
	"net"
	"net/smtp"

	"interview-ace/internal/config"
	"interview-ace/internal/models"

	"go.uber.org/zap"
)

// EmailService delivers practice reminders over SMTP. With email disabled in
// config it logs the message instead, so local development works without a
// relay.
type EmailService struct {
	log *zap.Logger
}

func NewEmailService(log *zap.Logger) *EmailService {
	return &EmailService{log: log}
}

// SendReminderEmail sends the daily practice reminder to one user.
func (s *EmailService) SendReminderEmail(user models.User) {
	emailConf := config.Conf.Email

	name := user.FirstName
	if name == "" {
		name = "there"
	}

	subject := "Time for your daily interview practice"
	body := fmt.Sprintf(
		"Hi %s,\n\nThis is a friendly reminder to fit in an interview practice session today. "+
			"A few minutes in front of the camera keeps your posture and delivery sharp.\n\n"+
			"Start a session: %s\n",
		name, emailConf.BaseURL)

	if !emailConf.Enabled {
		s.log.Info("Email disabled; logging reminder instead",
			zap.String("to", user.Email),
			zap.String("subject", subject),
		)
		return
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		emailConf.From, user.Email, subject, body))
	addr := net.JoinHostPort(emailConf.Host, emailConf.Port)
	auth := smtp.PlainAuth("", emailConf.Username, emailConf.Password, emailConf.Host)

	if err := smtp.SendMail(addr, auth, emailConf.From, []string{user.Email}, msg); err != nil {
		s.log.Error("Failed to send reminder email", zap.Error(err), zap.String("to", user.Email))
		return
	}

	s.log.Info("Reminder email sent", zap.String("to", user.Email))
}
