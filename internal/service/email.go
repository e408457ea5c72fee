package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rentaltracker-backend/internal/config"
	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
)

// MailSender is the subset of the SendGrid client used to deliver mail.
type MailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client   MailSender
	from     string
	fromName string
}

// NewEmailService returns a SendGrid backed service when an API key is
// configured and a log-only service otherwise.
func NewEmailService(cfg config.EmailConfig) EmailService {
	if cfg.SendGridAPIKey == "" {
		return &logEmailService{}
	}
	return NewSendGridEmailService(sendgrid.NewSendClient(cfg.SendGridAPIKey), cfg.FromAddress, cfg.FromName)
}

func NewSendGridEmailService(client MailSender, from, fromName string) EmailService {
	return &sendGridEmailService{
		client:   client,
		from:     from,
		fromName: fromName,
	}
}

func (s *sendGridEmailService) SendOverdueReminder(ctx context.Context, notice domain.OverdueNotice) error {
	if notice.UserEmail == "" {
		return domain.ValidationError("user has no email address")
	}

	subject, plain, html := overdueReminderContent(notice)
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(notice.UserName, notice.UserEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	logger.ExternalServiceCall("SendGrid", "Send", "rental_id", notice.RentalID, "to", notice.UserEmail)
	resp, err := s.client.SendWithContext(ctx, message)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid API error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("SendGrid", "Send", err, "rental_id", notice.RentalID)
	if err != nil {
		return fmt.Errorf("failed to send overdue reminder: %w", err)
	}
	return nil
}

type logEmailService struct{}

func (s *logEmailService) SendOverdueReminder(ctx context.Context, notice domain.OverdueNotice) error {
	subject, _, _ := overdueReminderContent(notice)
	logger.InfoContext(ctx, "Email delivery disabled, reminder logged only",
		"rental_id", notice.RentalID, "to", notice.UserEmail, "subject", subject)
	return nil
}

func overdueReminderContent(n domain.OverdueNotice) (subject, plain, html string) {
	due := n.DueDate.Format("Jan 2, 2006")
	subject = fmt.Sprintf("Overdue rental: %s", n.EquipmentName)
	plain = fmt.Sprintf("Hello %s,\n\nYour rental of %d x %s was due on %s and is now %d day(s) overdue.\nPlease return it as soon as possible.\n\nEquipment Rental Tracker",
		n.UserName, n.Quantity, n.EquipmentName, due, n.DaysOverdue)
	html = fmt.Sprintf("<p>Hello %s,</p><p>Your rental of <strong>%d x %s</strong> was due on %s and is now <strong>%d day(s) overdue</strong>.</p><p>Please return it as soon as possible.</p>",
		n.UserName, n.Quantity, n.EquipmentName, due, n.DaysOverdue)
	return subject, plain, html
}
