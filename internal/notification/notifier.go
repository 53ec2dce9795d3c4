package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/core/events"
)

// RecipientResolver answers where a notification for a user should go.
// Returns ok=false when the user has notifications disabled.
type RecipientResolver interface {
	NotificationEmail(userID int64) (email string, ok bool, err error)
}

// Notifier reacts to domain events and sends mail. Delivery failures
// are logged and never propagate back to the publishing request.
type Notifier struct {
	mail       internal.MailConfig
	adminEmail string
	recipients RecipientResolver
	logger     *slog.Logger

	// send is swappable for tests.
	send func(addr string, from string, to []string, msg []byte) error
}

func NewNotifier(mail internal.MailConfig, adminEmail string, recipients RecipientResolver, logger *slog.Logger) *Notifier {
	n := &Notifier{
		mail:       mail,
		adminEmail: adminEmail,
		recipients: recipients,
		logger:     logger,
	}
	n.send = n.sendSMTP
	return n
}

// Register subscribes the notifier to the events it handles.
func (n *Notifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeIncidentCreated, n.onIncidentCreated)
	bus.Subscribe(events.EventTypeIncidentResolved, n.onIncidentResolved)
	bus.Subscribe(events.EventTypeIncidentAssigned, n.onIncidentAssigned)
	bus.Subscribe(events.EventTypePartLowStock, n.onPartLowStock)
}

func (n *Notifier) onIncidentCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.IncidentCreatedEvent)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("New incident #%d: %s", e.IncidentID, e.Title)
	body := fmt.Sprintf("A new %s severity incident was reported.\n\nIncident #%d: %s\n", e.Severity, e.IncidentID, e.Title)
	n.deliver(subject, body, n.adminEmail)
	return nil
}

func (n *Notifier) onIncidentResolved(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.IncidentResolvedEvent)
	if !ok {
		return nil
	}
	email, enabled, err := n.recipients.NotificationEmail(e.ReporterID)
	if err != nil {
		n.logger.Error("failed to resolve notification recipient",
			"user_id", e.ReporterID, "error", err)
		return nil
	}
	if !enabled {
		n.logger.Debug("notifications disabled for user", "user_id", e.ReporterID)
		return nil
	}
	subject := fmt.Sprintf("Incident #%d %s", e.IncidentID, e.Status)
	body := fmt.Sprintf("Your incident #%d has been marked %s.\n", e.IncidentID, e.Status)
	n.deliver(subject, body, email)
	return nil
}

func (n *Notifier) onIncidentAssigned(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.IncidentAssignedEvent)
	if !ok {
		return nil
	}
	n.logger.Info("incident assigned",
		"incident_id", e.IncidentID,
		"engineer_id", e.EngineerID)
	return nil
}

func (n *Notifier) onPartLowStock(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PartLowStockEvent)
	if !ok {
		return nil
	}
	subject := fmt.Sprintf("Low stock: %s", e.PartNumber)
	body := fmt.Sprintf("Part %s is at %d units (minimum %d). Reorder required.\n",
		e.PartNumber, e.CurrentStock, e.MinimumStock)
	n.deliver(subject, body, n.adminEmail)
	return nil
}

func (n *Notifier) deliver(subject, body, to string) {
	if n.mail.Server == "" || to == "" {
		n.logger.Info("mail not configured, skipping notification",
			"subject", subject, "to", to)
		return
	}

	from := n.mail.Username
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
	addr := fmt.Sprintf("%s:%d", n.mail.Server, n.mail.Port)

	if err := n.send(addr, from, []string{to}, msg); err != nil {
		n.logger.Error("failed to send notification mail",
			"to", to, "subject", subject, "error", err)
		return
	}
	n.logger.Info("notification mail sent", "to", to, "subject", subject)
}

func (n *Notifier) sendSMTP(addr, from string, to []string, msg []byte) error {
	var auth smtp.Auth
	if n.mail.Username != "" {
		auth = smtp.PlainAuth("", n.mail.Username, n.mail.Password, n.mail.Server)
	}
	return smtp.SendMail(addr, auth, from, to, msg)
}
