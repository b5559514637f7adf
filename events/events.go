package events

import (
	"context"
	"fmt"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/confirm"
	"github.com/International-Combat-Archery-Alliance/event-checkin/validate"
	"github.com/google/uuid"
)

type Event struct {
	ID        uuid.UUID
	Version   int
	Name      string
	VenueID   uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	// Disabled events accept neither new tickets nor check-ins.
	Disabled bool
}

type GetEventsResponse struct {
	Data        []Event
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	GetEvents(ctx context.Context, limit int32, cursor *string) (GetEventsResponse, error)
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error

	GetVenue(ctx context.Context, id uuid.UUID) (Venue, error)
	CreateVenue(ctx context.Context, venue Venue) error
	UpdateVenue(ctx context.Context, venue Venue) error
	DeleteVenue(ctx context.Context, venue Venue) error
}

// Confirmer asks an operator to approve a destructive action.
type Confirmer interface {
	ConfirmAction(action confirm.Action) (bool, error)
}

func CreateEvent(ctx context.Context, repo Repository, event Event) (Event, error) {
	if !validate.IsRequired(event.Name) || !validate.MaxLength(event.Name, maxNameLength) {
		return Event{}, NewInvalidEventError(fmt.Sprintf("Event name must be between 1 and %d characters", maxNameLength))
	}

	if event.EndTime.Before(event.StartTime) {
		return Event{}, NewInvalidEventError("Event must end after it starts")
	}

	if event.VenueID != uuid.Nil {
		_, err := repo.GetVenue(ctx, event.VenueID)
		if err != nil {
			return Event{}, err
		}
	}

	event.ID = uuid.New()
	event.Version = 1
	event.Disabled = false

	err := repo.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// DisableEvent returns false without touching the event when the operator declines.
// Disabling an already disabled event is a no-op and does not prompt.
func DisableEvent(ctx context.Context, repo Repository, confirmer Confirmer, id uuid.UUID) (bool, error) {
	event, err := repo.GetEvent(ctx, id)
	if err != nil {
		return false, err
	}

	if event.Disabled {
		return true, nil
	}

	ok, err := confirmer.ConfirmAction(confirm.ActionDisableEvent)
	if err != nil {
		return false, NewConfirmationFailedError("Failed to confirm disabling the event", err)
	}
	if !ok {
		return false, nil
	}

	event.Disabled = true
	event.Version++

	err = repo.UpdateEvent(ctx, event)
	if err != nil {
		return false, err
	}

	return true, nil
}
