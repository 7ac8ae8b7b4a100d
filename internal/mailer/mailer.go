package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mailer 负责投递登录验证码邮件。
type Mailer interface {
	SendLoginCode(email, code string) error
}

// LogMailer 在开发环境把验证码写入日志，不做真实投递。
type LogMailer struct{}

// SendLoginCode 实现 Mailer
func (LogMailer) SendLoginCode(email, code string) error {
	logrus.WithFields(logrus.Fields{"email": email, "code": code}).Info("login code (dev delivery)")
	return nil
}

// SMTPMailer 通过 SMTP 投递验证码邮件。
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SendLoginCode 实现 Mailer
func (m SMTPMailer) SendLoginCode(email, code string) error {
	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.From),
		fmt.Sprintf("To: %s", email),
		"Subject: Your MarkVault sign-in code",
		"",
		fmt.Sprintf("Your one-time sign-in code is: %s", code),
		"",
		"The code expires shortly. If you did not request it, ignore this email.",
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send login code: %w", err)
	}
	return nil
}
