package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmailSender struct {
	SendEmailFunc func(ctx context.Context, e email.Email) error
}

func (m *mockEmailSender) SendEmail(ctx context.Context, e email.Email) error {
	return m.SendEmailFunc(ctx, e)
}

func TestSendTicketEmail(t *testing.T) {
	event := events.Event{
		ID:        uuid.New(),
		Name:      "Ngày hội <IT>",
		StartTime: time.Date(2026, 11, 1, 8, 30, 0, 0, time.UTC),
	}
	ticket := Ticket{
		EventID:        event.ID,
		UserID:         "SE123456",
		RegistrationID: "reg1",
		Token:          "REG-" + CompactID(event.ID) + "-SE123456-reg1-1700000000000",
		IssuedAt:       time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}

	t.Run("sends html and text bodies", func(t *testing.T) {
		var sent email.Email
		sender := &mockEmailSender{
			SendEmailFunc: func(ctx context.Context, e email.Email) error {
				sent = e
				return nil
			},
		}

		err := SendTicketEmail(context.Background(), sender, "ICAA <info@icaa.world>", "student@fpt.edu.vn", ticket, event)
		require.NoError(t, err)

		assert.Equal(t, "ICAA <info@icaa.world>", sent.FromAddress)
		assert.Equal(t, []string{"student@fpt.edu.vn"}, sent.ToAddresses)
		assert.Contains(t, sent.Subject, event.Name)
		assert.Contains(t, sent.HTMLBody, ticket.Token)
		assert.Contains(t, sent.HTMLBody, "Ngày hội &lt;IT&gt;")
		assert.Contains(t, sent.HTMLBody, "08:30 01/11/2026")
		assert.Contains(t, sent.TextBody, ticket.Token)
		assert.Contains(t, sent.TextBody, "Ngày hội <IT>")
	})

	t.Run("sender fails", func(t *testing.T) {
		sender := &mockEmailSender{
			SendEmailFunc: func(ctx context.Context, e email.Email) error {
				return errors.New("ses down")
			},
		}

		err := SendTicketEmail(context.Background(), sender, "info@icaa.world", "student@fpt.edu.vn", ticket, event)
		requireReason(t, err, REASON_FAILED_TO_SEND_EMAIL)
	})
}
