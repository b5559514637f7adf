package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEvents(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		start := time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)
		expected := []events.Event{
			{ID: uuid.New(), Name: "Hội thao", StartTime: start, EndTime: start.Add(time.Hour)},
		}
		db := &mockDB{
			GetEventsFunc: func(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
				assert.Equal(t, int32(10), limit)
				assert.Nil(t, cursor)
				return events.GetEventsResponse{Data: expected, Cursor: nil}, nil
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodGet, "/v1/events", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body EventsPage
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, expected[0].ID, body.Data[0].Id)
		assert.Nil(t, body.Data[0].VenueId)
		assert.False(t, body.HasNextPage)
	})

	t.Run("passes limit and cursor", func(t *testing.T) {
		db := &mockDB{
			GetEventsFunc: func(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
				assert.Equal(t, int32(25), limit)
				require.NotNil(t, cursor)
				assert.Equal(t, "abc", *cursor)
				return events.GetEventsResponse{}, nil
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodGet, "/v1/events?limit=25&cursor=abc", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("limit out of bounds", func(t *testing.T) {
		for _, limit := range []string{"0", "51", "ten"} {
			rec := doRequest(newTestAPI(&mockDB{}, &mockEmailSender{}), http.MethodGet, "/v1/events?limit="+limit, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body Error
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, LimitOutOfBounds, body.Code)
		}
	})

	t.Run("invalid cursor", func(t *testing.T) {
		db := &mockDB{
			GetEventsFunc: func(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
				return events.GetEventsResponse{}, events.NewInvalidCursorError("bad", nil)
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodGet, "/v1/events?cursor=zzz", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, InvalidCursor, body.Code)
	})

	t.Run("db failure", func(t *testing.T) {
		db := &mockDB{
			GetEventsFunc: func(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
				return events.GetEventsResponse{}, events.NewFailedToFetchError("boom", nil)
			},
		}

		rec := doRequest(newTestAPI(db, &mockEmailSender{}), http.MethodGet, "/v1/events", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
