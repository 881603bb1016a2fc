package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pravaha-app/expense_backend/internal/core/domain"
	portsrepo "github.com/pravaha-app/expense_backend/internal/core/ports/repositories"
	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings. Enabled is false when no host is configured, in
// which case notifications are logged and dropped.
type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// DecisionMailer emails the expense owner once a decision is durable. It is
// registered as a decision observer and invoked off the request path.
type DecisionMailer struct {
	cfg      Config
	userRepo portsrepo.UserReader
	logger   *slog.Logger
}

var _ portssvc.DecisionNotifierSvc = (*DecisionMailer)(nil)

func NewDecisionMailer(cfg Config, userRepo portsrepo.UserReader, logger *slog.Logger) *DecisionMailer {
	return &DecisionMailer{cfg: cfg, userRepo: userRepo, logger: logger}
}

func (m *DecisionMailer) NotifyDecided(ctx context.Context, event domain.ExpenseDecidedEvent) error {
	if !m.cfg.Enabled {
		m.logger.Info("mailer disabled, dropping decision notification",
			"expense_id", event.ExpenseID, "decision", string(event.Decision))
		return nil
	}

	owner, err := m.userRepo.FindUserByID(ctx, event.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to resolve expense owner %s: %w", event.OwnerID, err)
	}

	subject := fmt.Sprintf("Your expense was %s", decisionWord(event.Decision))
	body := m.buildDecisionBody(owner.FullName, event)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", owner.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send decision email: %w", err)
	}
	return nil
}

func (m *DecisionMailer) buildDecisionBody(ownerName string, event domain.ExpenseDecidedEvent) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <p>Hi %s,</p>
    <p>Your expense claim <strong>%s</strong> was <strong>%s</strong> on %s.</p>
    <p>Log in to review the details.</p>
    <p style="color: #666;">This email was sent automatically, please do not reply.</p>
</body>
</html>
`, ownerName, event.ExpenseID, decisionWord(event.Decision), event.Timestamp.Format("2 Jan 2006 15:04 MST"))
}

func decisionWord(decision domain.ExpenseStatus) string {
	switch decision {
	case domain.StatusApproved:
		return "approved"
	case domain.StatusRejected:
		return "rejected"
	default:
		return "decided"
	}
}
