package services

import (
	"fmt"
	"verba/internal/db"
	"verba/internal/models"
)

// ActivationEmailJob mails the confirmation link for a freshly registered
// account. A missing user is a permanent failure, not a silent success.
type ActivationEmailJob struct {
	UserID uint
	Mail   *MailService
}

func (j ActivationEmailJob) Kind() string { return "activation-email" }

func (j ActivationEmailJob) Execute() error {
	var user models.User
	if err := db.DB.First(&user, j.UserID).Error; err != nil {
		return fmt.Errorf("activation email for user %d: %w", j.UserID, models.ErrNotFound)
	}

	token, err := MakeUserToken(&user, TokenActivation)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/confirm/%d/%s", j.Mail.SiteURL, user.ID, token)
	return j.Mail.SendActivationEmail(&user, url)
}

// PasswordResetEmailJob mails the reset link. The token is bound to the
// current password hash, so it stops working once the password changes.
type PasswordResetEmailJob struct {
	UserID uint
	Mail   *MailService
}

func (j PasswordResetEmailJob) Kind() string { return "password-reset-email" }

func (j PasswordResetEmailJob) Execute() error {
	var user models.User
	if err := db.DB.First(&user, j.UserID).Error; err != nil {
		return fmt.Errorf("password reset email for user %d: %w", j.UserID, models.ErrNotFound)
	}

	token, err := MakeUserToken(&user, TokenPasswordReset)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/password-reset/%d/%s", j.Mail.SiteURL, user.ID, token)
	return j.Mail.SendPasswordResetEmail(&user, url)
}

// ContactEmailJob forwards a contact-form submission to the site operator.
type ContactEmailJob struct {
	Subject string
	Email   string
	Content string
	IP      string
	UserID  *uint
	Mail    *MailService
}

func (j ContactEmailJob) Kind() string { return "contact-email" }

func (j ContactEmailJob) Execute() error {
	username := ""
	if j.UserID != nil {
		var user models.User
		if err := db.DB.First(&user, *j.UserID).Error; err == nil {
			username = user.Username
		}
	}
	return j.Mail.SendContactEmail(j.Subject, j.Email, j.Content, j.IP, username)
}

// BackupJob snapshots the durable tables into a JSON artifact.
type BackupJob struct {
	Dir string
}

func (j BackupJob) Kind() string { return "backup" }

func (j BackupJob) Execute() error {
	_, err := Backup(j.Dir)
	return err
}
