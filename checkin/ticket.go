package checkin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/International-Combat-Archery-Alliance/event-checkin/qrtoken"
	"github.com/google/uuid"
)

type Encoder interface {
	Encode(eventID, userID, registrationID string) string
}

type Codec interface {
	Encoder
	Decoder
}

// Ticket is what a registrant shows at the door, usually rendered as a QR code.
type Ticket struct {
	EventID        uuid.UUID
	UserID         string
	RegistrationID string
	Token          string
	IssuedAt       time.Time
}

// CompactID formats id without hyphens so it can be embedded in a token.
func CompactID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

// ParseID accepts both the compact and the canonical UUID forms.
func ParseID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// IssueTicket builds and saves a ticket. Issuing again for the same
// registration invalidates the earlier token.
func IssueTicket(ctx context.Context, codec Codec, eventRepo events.Repository, ticketRepo Repository, eventID uuid.UUID, userID string, registrationID string) (Ticket, error) {
	err := qrtoken.CheckIdentifiers(userID, registrationID)
	if err != nil {
		return Ticket{}, NewInvalidIdentifierError("User and registration IDs must be non-empty and must not contain "+qrtoken.Delimiter, err)
	}

	event, err := getEnabledEvent(ctx, eventRepo, eventID)
	if err != nil {
		return Ticket{}, err
	}

	token := codec.Encode(CompactID(event.ID), userID, registrationID)

	payload, ok := codec.Decode(token)
	if !ok {
		return Ticket{}, NewInvalidTokenError(fmt.Sprintf("Issued token %q does not decode", token), nil)
	}

	issuedAt, err := payload.IssuedAt()
	if err != nil {
		return Ticket{}, NewInvalidTokenError("Issued token has an invalid timestamp", err)
	}

	ticket := Ticket{
		EventID:        event.ID,
		UserID:         userID,
		RegistrationID: registrationID,
		Token:          token,
		IssuedAt:       issuedAt,
	}

	err = ticketRepo.SaveTicket(ctx, ticket)
	if err != nil {
		return Ticket{}, err
	}

	return ticket, nil
}
