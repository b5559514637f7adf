package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/International-Combat-Archery-Alliance/event-checkin/qrtoken"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/International-Combat-Archery-Alliance/event-checkin/checkin")

type Repository interface {
	// SaveTicket replaces any ticket previously issued for the registration.
	SaveTicket(ctx context.Context, ticket Ticket) error
	GetTicket(ctx context.Context, eventID uuid.UUID, registrationID string) (Ticket, error)

	// RecordCheckIn fails with REASON_ALREADY_CHECKED_IN if the registration
	// has already been checked in to the event, and with REASON_INVALID_TOKEN
	// if checkIn.Token is no longer the registration's issued ticket.
	RecordCheckIn(ctx context.Context, checkIn CheckIn) error
	GetCheckIn(ctx context.Context, eventID uuid.UUID, registrationID string) (CheckIn, error)
	GetCheckInsForEvent(ctx context.Context, eventID uuid.UUID, limit int32, cursor *string) (GetCheckInsResponse, error)
}

type Decoder interface {
	Decode(token string) (qrtoken.Payload, bool)
}

type GetCheckInsResponse struct {
	Data        []CheckIn
	Cursor      *string
	HasNextPage bool
}

type CheckIn struct {
	EventID        uuid.UUID
	UserID         string
	RegistrationID string
	Token          string
	IssuedAt       time.Time
	CheckedInAt    time.Time
}

// AttemptCheckIn consumes a scanned token. Only the most recently issued ticket
// of a registration is accepted, and a registration can be checked in once.
func AttemptCheckIn(ctx context.Context, decoder Decoder, rawToken string, eventRepo events.Repository, checkInRepo Repository, now time.Time) (checkIn CheckIn, err error) {
	ctx, span := tracer.Start(ctx, "checkin.AttemptCheckIn", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	payload, ok := decoder.Decode(rawToken)
	if !ok {
		return CheckIn{}, NewInvalidTokenError("Token is not a registration token", nil)
	}

	span.SetAttributes(
		attribute.String("checkin.event_id", payload.EventID),
		attribute.String("checkin.registration_id", payload.RegistrationID),
	)

	eventID, err := ParseID(payload.EventID)
	if err != nil {
		return CheckIn{}, NewInvalidTokenError(fmt.Sprintf("Token has an invalid event ID %q", payload.EventID), err)
	}

	err = qrtoken.CheckIdentifiers(payload.UserID, payload.RegistrationID)
	if err != nil {
		return CheckIn{}, NewInvalidTokenError("Token has an invalid user or registration ID", err)
	}

	issuedAt, err := payload.IssuedAt()
	if err != nil {
		return CheckIn{}, NewInvalidTokenError("Token has an invalid timestamp", err)
	}

	event, err := getEnabledEvent(ctx, eventRepo, eventID)
	if err != nil {
		return CheckIn{}, err
	}

	err = requireIssued(ctx, checkInRepo, event.ID, payload.RegistrationID, rawToken)
	if err != nil {
		return CheckIn{}, err
	}

	checkIn = CheckIn{
		EventID:        event.ID,
		UserID:         payload.UserID,
		RegistrationID: payload.RegistrationID,
		Token:          rawToken,
		IssuedAt:       issuedAt,
		CheckedInAt:    now,
	}

	err = checkInRepo.RecordCheckIn(ctx, checkIn)
	if err != nil {
		return CheckIn{}, err
	}

	return checkIn, nil
}

func getEnabledEvent(ctx context.Context, eventRepo events.Repository, eventID uuid.UUID) (events.Event, error) {
	event, err := eventRepo.GetEvent(ctx, eventID)
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) {
			switch eventErr.Reason {
			case events.REASON_EVENT_DOES_NOT_EXIST:
				return events.Event{}, NewAssociatedEventDoesNotExistError(fmt.Sprintf("Event does not exist with ID %q", eventID), err)
			case events.REASON_TIMEOUT:
				return events.Event{}, newCheckInError(REASON_TIMEOUT, fmt.Sprintf("Timed out fetching event with ID %q", eventID), err)
			}
		}

		return events.Event{}, NewFailedToFetchError(fmt.Sprintf("Failed to fetch event with ID %q", eventID), err)
	}

	if event.Disabled {
		return events.Event{}, NewEventDisabledError(fmt.Sprintf("Event %q is disabled", event.Name))
	}

	return event, nil
}

func requireIssued(ctx context.Context, ticketRepo Repository, eventID uuid.UUID, registrationID string, rawToken string) error {
	ticket, err := ticketRepo.GetTicket(ctx, eventID, registrationID)
	if err != nil {
		var checkInErr *Error
		if errors.As(err, &checkInErr) && checkInErr.Reason == REASON_TICKET_DOES_NOT_EXIST {
			return NewInvalidTokenError(fmt.Sprintf("No ticket was issued for registration %q", registrationID), err)
		}
		return err
	}

	if ticket.Token != rawToken {
		return NewInvalidTokenError(fmt.Sprintf("Token was replaced by a newer ticket for registration %q", registrationID), nil)
	}

	return nil
}
