package api

import (
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/google/uuid"
)

type ErrorCode string

const (
	AlreadyCheckedIn     ErrorCode = "AlreadyCheckedIn"
	BodyTooLarge         ErrorCode = "BodyTooLarge"
	EmptyBody            ErrorCode = "EmptyBody"
	EventDisabled        ErrorCode = "EventDisabled"
	InputValidationError ErrorCode = "InputValidationError"
	InternalError        ErrorCode = "InternalError"
	InvalidCursor        ErrorCode = "InvalidCursor"
	InvalidToken         ErrorCode = "InvalidToken"
	LimitOutOfBounds     ErrorCode = "LimitOutOfBounds"
	NotFound             ErrorCode = "NotFound"
	Timeout              ErrorCode = "Timeout"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Fields holds per-field messages for InputValidationError.
	Fields map[string][]string `json:"fields,omitempty"`
}

type Event struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	VenueId   *uuid.UUID `json:"venueId,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Disabled  bool       `json:"disabled"`
}

type EventsPage struct {
	Data        []Event `json:"data"`
	Cursor      *string `json:"cursor,omitempty"`
	HasNextPage bool    `json:"hasNextPage"`
}

type TicketRequest struct {
	UserId         string `json:"userId"`
	RegistrationId string `json:"registrationId"`
	Email          string `json:"email"`
}

type Ticket struct {
	EventId        uuid.UUID `json:"eventId"`
	UserId         string    `json:"userId"`
	RegistrationId string    `json:"registrationId"`
	Token          string    `json:"token"`
	IssuedAt       time.Time `json:"issuedAt"`
	EmailSent      bool      `json:"emailSent"`
}

type CheckInRequest struct {
	Token string `json:"token"`
}

type CheckIn struct {
	EventId        uuid.UUID `json:"eventId"`
	UserId         string    `json:"userId"`
	RegistrationId string    `json:"registrationId"`
	IssuedAt       time.Time `json:"issuedAt"`
	CheckedInAt    time.Time `json:"checkedInAt"`
}

type CheckInsPage struct {
	Data        []CheckIn `json:"data"`
	Cursor      *string   `json:"cursor,omitempty"`
	HasNextPage bool      `json:"hasNextPage"`
}

func eventToApiEvent(event events.Event) Event {
	var venueId *uuid.UUID
	if event.VenueID != uuid.Nil {
		venueId = &event.VenueID
	}

	return Event{
		Id:        event.ID,
		Name:      event.Name,
		VenueId:   venueId,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		Disabled:  event.Disabled,
	}
}

func ticketToApiTicket(ticket checkin.Ticket, emailSent bool) Ticket {
	return Ticket{
		EventId:        ticket.EventID,
		UserId:         ticket.UserID,
		RegistrationId: ticket.RegistrationID,
		Token:          ticket.Token,
		IssuedAt:       ticket.IssuedAt,
		EmailSent:      emailSent,
	}
}

func checkInToApiCheckIn(c checkin.CheckIn) CheckIn {
	return CheckIn{
		EventId:        c.EventID,
		UserId:         c.UserID,
		RegistrationId: c.RegistrationID,
		IssuedAt:       c.IssuedAt,
		CheckedInAt:    c.CheckedInAt,
	}
}
