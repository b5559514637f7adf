package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/International-Combat-Archery-Alliance/event-checkin/qrtoken"
	"github.com/google/uuid"
)

var noopLogger = slog.New(slog.DiscardHandler)

var testIssuedAt = time.UnixMilli(1700000000000)

var testCodec = qrtoken.NewCodec(noopLogger, qrtoken.WithClock(func() time.Time { return testIssuedAt }))

var _ DB = &mockDB{}

type mockDB struct {
	GetEventFunc            func(ctx context.Context, id uuid.UUID) (events.Event, error)
	GetEventsFunc           func(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error)
	CreateEventFunc         func(ctx context.Context, event events.Event) error
	UpdateEventFunc         func(ctx context.Context, event events.Event) error
	GetVenueFunc            func(ctx context.Context, id uuid.UUID) (events.Venue, error)
	CreateVenueFunc         func(ctx context.Context, venue events.Venue) error
	UpdateVenueFunc         func(ctx context.Context, venue events.Venue) error
	DeleteVenueFunc         func(ctx context.Context, venue events.Venue) error
	RecordCheckInFunc       func(ctx context.Context, c checkin.CheckIn) error
	GetCheckInFunc          func(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.CheckIn, error)
	GetCheckInsForEventFunc func(ctx context.Context, eventID uuid.UUID, limit int32, cursor *string) (checkin.GetCheckInsResponse, error)
	SaveTicketFunc          func(ctx context.Context, ticket checkin.Ticket) error
	GetTicketFunc           func(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.Ticket, error)
}

func (m *mockDB) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	return m.GetEventFunc(ctx, id)
}

func (m *mockDB) GetEvents(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
	return m.GetEventsFunc(ctx, limit, cursor)
}

func (m *mockDB) CreateEvent(ctx context.Context, event events.Event) error {
	return m.CreateEventFunc(ctx, event)
}

func (m *mockDB) UpdateEvent(ctx context.Context, event events.Event) error {
	return m.UpdateEventFunc(ctx, event)
}

func (m *mockDB) GetVenue(ctx context.Context, id uuid.UUID) (events.Venue, error) {
	return m.GetVenueFunc(ctx, id)
}

func (m *mockDB) CreateVenue(ctx context.Context, venue events.Venue) error {
	return m.CreateVenueFunc(ctx, venue)
}

func (m *mockDB) UpdateVenue(ctx context.Context, venue events.Venue) error {
	return m.UpdateVenueFunc(ctx, venue)
}

func (m *mockDB) DeleteVenue(ctx context.Context, venue events.Venue) error {
	return m.DeleteVenueFunc(ctx, venue)
}

func (m *mockDB) RecordCheckIn(ctx context.Context, c checkin.CheckIn) error {
	return m.RecordCheckInFunc(ctx, c)
}

func (m *mockDB) GetCheckIn(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.CheckIn, error) {
	return m.GetCheckInFunc(ctx, eventID, registrationID)
}

func (m *mockDB) GetCheckInsForEvent(ctx context.Context, eventID uuid.UUID, limit int32, cursor *string) (checkin.GetCheckInsResponse, error) {
	return m.GetCheckInsForEventFunc(ctx, eventID, limit, cursor)
}

func (m *mockDB) SaveTicket(ctx context.Context, ticket checkin.Ticket) error {
	return m.SaveTicketFunc(ctx, ticket)
}

func (m *mockDB) GetTicket(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.Ticket, error) {
	return m.GetTicketFunc(ctx, eventID, registrationID)
}

type mockEmailSender struct {
	SendEmailFunc func(ctx context.Context, e email.Email) error
	sent          []email.Email
}

func (m *mockEmailSender) SendEmail(ctx context.Context, e email.Email) error {
	m.sent = append(m.sent, e)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, e)
	}
	return nil
}

func newTestAPI(db DB, sender email.Sender) *API {
	a := NewAPI(db, noopLogger, LOCAL, testCodec, sender, "info@icaa.world", nil)
	a.now = func() time.Time { return testIssuedAt.Add(time.Hour) }
	return a
}

func doRequest(a *API, method string, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func eventReturning(event events.Event) func(ctx context.Context, id uuid.UUID) (events.Event, error) {
	return func(ctx context.Context, id uuid.UUID) (events.Event, error) {
		if id != event.ID {
			return events.Event{}, events.NewEventDoesNotExistsError("not found", nil)
		}
		return event, nil
	}
}

func ticketIssued(token string) func(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.Ticket, error) {
	return func(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.Ticket, error) {
		return checkin.Ticket{EventID: eventID, RegistrationID: registrationID, Token: token}, nil
	}
}

func noTicketIssued(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.Ticket, error) {
	return checkin.Ticket{}, checkin.NewTicketDoesNotExistError("no ticket", nil)
}

func savesTicket(ctx context.Context, ticket checkin.Ticket) error {
	return nil
}
