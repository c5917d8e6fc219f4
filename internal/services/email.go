package services

import (
	"crypto/tls"
	"fmt"
	"html"
	"strings"

	"github.com/princeprakhar/freelance-backend/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends one HTML message.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type EmailService struct {
	config *config.Config
}

func NewEmailService(config *config.Config) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	d.TLSConfig = &tls.Config{ServerName: s.config.SMTPHost}

	return d.DialAndSend(m)
}

// ReviewNotification is what the recipient of a new review is told.
type ReviewNotification struct {
	RecipientEmail string
	RecipientName  string
	ReviewerName   string
	ProjectTitle   string
	OverallRating  int
	Comment        string
	ReviewsURL     string // list of reviews the recipient has received
}

func reviewNotificationBody(n ReviewNotification) string {
	stars := strings.Repeat("★", n.OverallRating) + strings.Repeat("☆", 5-n.OverallRating)
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .stars { font-size: 24px; color: #f5a623; }
        .quote { border-left: 4px solid #4CAF50; padding: 10px; margin: 15px 0; background-color: #fff; }
        .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>You received a new review</h1>
        </div>
        <div class="content">
            <p>Hello %s,</p>
            <p><strong>%s</strong> reviewed your work on <strong>%s</strong>.</p>
            <p class="stars">%s</p>
            <div class="quote">%s</div>
            <p><a href="%s">See all your reviews</a></p>
        </div>
        <div class="footer">
            <p>This is an automated message, please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>`,
		html.EscapeString(n.RecipientName),
		html.EscapeString(n.ReviewerName),
		html.EscapeString(n.ProjectTitle),
		stars,
		html.EscapeString(n.Comment),
		html.EscapeString(n.ReviewsURL),
	)
}

func (s *EmailService) SendReviewNotification(n ReviewNotification) error {
	subject := fmt.Sprintf("New %d-star review on %s", n.OverallRating, n.ProjectTitle)
	return s.SendEmail(n.RecipientEmail, subject, reviewNotificationBody(n))
}
