package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCheckIn(t *testing.T) {
	event := events.Event{ID: uuid.New(), Name: "Hội thao"}
	token := testCodec.Encode(checkin.CompactID(event.ID), "SE123456", "reg1")

	t.Run("success", func(t *testing.T) {
		var recorded checkin.CheckIn
		db := &mockDB{
			GetEventFunc:  eventReturning(event),
			GetTicketFunc: ticketIssued(token),
			RecordCheckInFunc: func(ctx context.Context, c checkin.CheckIn) error {
				recorded = c
				return nil
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodPost, "/v1/checkins", `{"token": "`+token+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body CheckIn
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, event.ID, body.EventId)
		assert.Equal(t, "SE123456", body.UserId)
		assert.Equal(t, "reg1", body.RegistrationId)
		assert.True(t, testIssuedAt.Equal(body.IssuedAt))
		assert.True(t, testIssuedAt.Add(time.Hour).Equal(body.CheckedInAt))
		assert.Equal(t, token, recorded.Token)
	})

	t.Run("already checked in", func(t *testing.T) {
		db := &mockDB{
			GetEventFunc:  eventReturning(event),
			GetTicketFunc: ticketIssued(token),
			RecordCheckInFunc: func(ctx context.Context, c checkin.CheckIn) error {
				return checkin.NewAlreadyCheckedInError("already", nil)
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodPost, "/v1/checkins", `{"token": "`+token+`"}`)
		require.Equal(t, http.StatusConflict, rec.Code)

		var body Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, AlreadyCheckedIn, body.Code)
	})

	t.Run("well formed token that was never issued", func(t *testing.T) {
		forged := testCodec.Encode(checkin.CompactID(event.ID), "anyone", "madeupreg")
		recorded := 0
		db := &mockDB{
			GetEventFunc:  eventReturning(event),
			GetTicketFunc: noTicketIssued,
			RecordCheckInFunc: func(ctx context.Context, c checkin.CheckIn) error {
				recorded++
				return nil
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodPost, "/v1/checkins", `{"token": "`+forged+`"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, InvalidToken, body.Code)
		assert.Zero(t, recorded)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := doRequest(newTestAPI(&mockDB{}, &mockEmailSender{}), http.MethodPost, "/v1/checkins", `{"token": "XYZ-a-b-c-123"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, InvalidToken, body.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(newTestAPI(&mockDB{}, &mockEmailSender{}), http.MethodPost, "/v1/checkins", `{"token": "  "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, InputValidationError, body.Code)
		assert.Contains(t, body.Fields, "token")
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := doRequest(newTestAPI(&mockDB{}, &mockEmailSender{}), http.MethodPost, "/v1/checkins", `{"token":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("event timed out", func(t *testing.T) {
		db := &mockDB{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return events.Event{}, events.NewTimeoutError("slow")
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodPost, "/v1/checkins", `{"token": "`+token+`"}`)
		require.Equal(t, http.StatusGatewayTimeout, rec.Code)

		var body Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, Timeout, body.Code)
	})
}

func TestGetCheckIns(t *testing.T) {
	eventID := uuid.New()

	t.Run("success", func(t *testing.T) {
		cursor := "next"
		db := &mockDB{
			GetCheckInsForEventFunc: func(ctx context.Context, id uuid.UUID, limit int32, c *string) (checkin.GetCheckInsResponse, error) {
				assert.Equal(t, eventID, id)
				assert.Equal(t, int32(2), limit)
				return checkin.GetCheckInsResponse{
					Data: []checkin.CheckIn{
						{EventID: eventID, UserID: "u1", RegistrationID: "r1"},
						{EventID: eventID, UserID: "u2", RegistrationID: "r2"},
					},
					Cursor:      &cursor,
					HasNextPage: true,
				}, nil
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodGet, "/v1/events/"+eventID.String()+"/checkins?limit=2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body CheckInsPage
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Len(t, body.Data, 2)
		assert.Equal(t, "r2", body.Data[1].RegistrationId)
		assert.True(t, body.HasNextPage)
		assert.Equal(t, &cursor, body.Cursor)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		db := &mockDB{
			GetCheckInsForEventFunc: func(ctx context.Context, id uuid.UUID, limit int32, c *string) (checkin.GetCheckInsResponse, error) {
				return checkin.GetCheckInsResponse{}, checkin.NewInvalidCursorError("bad", nil)
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodGet, "/v1/events/"+eventID.String()+"/checkins?cursor=x", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("event id is not a uuid", func(t *testing.T) {
		rec := doRequest(newTestAPI(&mockDB{}, &mockEmailSender{}), http.MethodGet, "/v1/events/nope/checkins", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
