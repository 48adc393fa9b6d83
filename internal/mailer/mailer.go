package mailer

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/campuspress/newsroom/pkg/config"
	"github.com/campuspress/newsroom/pkg/logging"
)

// Mailer sends transactional email over SMTP
type Mailer struct {
	dialer           *gomail.Dialer
	from             string
	otpExpiryMinutes int
	logger           *zap.Logger
}

// New creates a new Mailer
func New(cfg *config.EmailConfig, otpExpiryMinutes int) *Mailer {
	return &Mailer{
		dialer:           gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:             cfg.From,
		otpExpiryMinutes: otpExpiryMinutes,
		logger:           logging.GetLogger().With(zap.String("component", "mailer")),
	}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send email",
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendJoinOtp emails a verification code for a community join request
func (m *Mailer) SendJoinOtp(email, name, communityName, otp string) error {
	subject := fmt.Sprintf("Join %s - Verification Code", communityName)
	return m.send(email, subject, joinOtpBody(name, communityName, otp, m.otpExpiryMinutes))
}

// SendLeaveOtp emails a verification code for a community leave request
func (m *Mailer) SendLeaveOtp(email, name, communityName, otp string) error {
	subject := fmt.Sprintf("Leave %s - Verification Code", communityName)
	return m.send(email, subject, leaveOtpBody(name, communityName, otp, m.otpExpiryMinutes))
}

// SendRemovalNotice emails a member removed by an administrator
func (m *Mailer) SendRemovalNotice(email, name, communityName string) error {
	subject := fmt.Sprintf("Membership Update - %s", communityName)
	return m.send(email, subject, removalNoticeBody(name, communityName))
}

const footer = `<hr style="margin: 30px 0; border: none; border-top: 1px solid #ddd;">
<p style="color: #666; font-size: 12px;">This is an automated message from the School Newspaper Community Platform.</p>`

func otpBlock(otp string) string {
	return fmt.Sprintf(`<div style="background: #f4f4f4; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">%s</div>`, otp)
}

func joinOtpBody(name, communityName, otp string, expiryMinutes int) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Welcome to %s!</h2>
<p>Hi %s,</p>
<p>You've requested to join <strong>%s</strong>.</p>
<p>Your verification code is:</p>
%s
<p>This code will expire in %d minutes.</p>
<p>If you didn't request this, please ignore this email.</p>
%s</div>`, communityName, name, communityName, otpBlock(otp), expiryMinutes, footer)
}

func leaveOtpBody(name, communityName, otp string, expiryMinutes int) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Leave %s</h2>
<p>Hi %s,</p>
<p>You've requested to leave <strong>%s</strong>.</p>
<p>Your verification code is:</p>
%s
<p>This code will expire in %d minutes.</p>
<p>If you didn't request this, please ignore this email and your membership will remain active.</p>
%s</div>`, communityName, name, communityName, otpBlock(otp), expiryMinutes, footer)
}

func removalNoticeBody(name, communityName string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>%s Membership Update</h2>
<p>Hi %s,</p>
<p>Your membership in <strong>%s</strong> has been updated by an administrator.</p>
<p>If you have any questions, please contact the community administrators.</p>
%s</div>`, communityName, name, communityName, footer)
}
