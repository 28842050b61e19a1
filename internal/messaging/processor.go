package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/rs/zerolog/log"

	"example.com/foodbridge/services/donation/internal/mailer"
)

// Processor hands queued notification emails to the mailer
type Processor struct {
	mailer mailer.Mailer
}

// NewProcessor creates a new message processor
func NewProcessor(m mailer.Mailer) *Processor {
	return &Processor{mailer: m}
}

// ProcessMessage delivers one queued email. A send failure abandons the
// message so the queue redelivers it; the core performs no retries itself.
func (p *Processor) ProcessMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error {
	var email EmailMessage
	if err := json.Unmarshal(message.Body, &email); err != nil {
		return fmt.Errorf("error unmarshalling email message: %w", err)
	}

	if email.To == "" {
		log.Warn().Str("message_id", message.MessageID).Msg("Dropping email message without recipient")
		return nil
	}

	if err := p.mailer.Send(ctx, email.To, email.Subject, email.Body); err != nil {
		return fmt.Errorf("error sending email to %s: %w", email.To, err)
	}

	log.Info().Str("to", email.To).Str("subject", email.Subject).Msg("Notification email sent")
	return nil
}
