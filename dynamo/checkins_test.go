package dynamo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCheckIn(eventID uuid.UUID, registrationID string) checkin.CheckIn {
	issued := time.Date(2026, 11, 1, 7, 0, 0, 0, time.UTC)
	return checkin.CheckIn{
		EventID:        eventID,
		UserID:         "SE123456",
		RegistrationID: registrationID,
		Token:          fmt.Sprintf("REG-%s-SE123456-%s-%d", checkin.CompactID(eventID), registrationID, issued.UnixMilli()),
		IssuedAt:       issued,
		CheckedInAt:    issued.Add(time.Hour),
	}
}

// issueTicketFor saves the ticket that c was scanned from.
func issueTicketFor(t *testing.T, ctx context.Context, c checkin.CheckIn) {
	t.Helper()

	require.NoError(t, db.SaveTicket(ctx, checkin.Ticket{
		EventID:        c.EventID,
		UserID:         c.UserID,
		RegistrationID: c.RegistrationID,
		Token:          c.Token,
		IssuedAt:       c.IssuedAt,
	}))
}

func requireCheckInReason(t *testing.T, err error, reason checkin.ErrorReason) {
	t.Helper()

	var checkInErr *checkin.Error
	require.ErrorAs(t, err, &checkInErr)
	assert.Equal(t, reason, checkInErr.Reason)
}

func TestRecordCheckIn(t *testing.T) {
	ctx := context.Background()

	t.Run("successfully record and read back", func(t *testing.T) {
		resetTable(ctx)
		event := newTestEvent(time.Now())
		require.NoError(t, db.CreateEvent(ctx, event))
		c := newTestCheckIn(event.ID, "reg1")
		issueTicketFor(t, ctx, c)

		require.NoError(t, db.RecordCheckIn(ctx, c))

		got, err := db.GetCheckIn(ctx, event.ID, "reg1")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("second check-in is rejected", func(t *testing.T) {
		resetTable(ctx)
		event := newTestEvent(time.Now())
		require.NoError(t, db.CreateEvent(ctx, event))
		c := newTestCheckIn(event.ID, "reg1")
		issueTicketFor(t, ctx, c)
		require.NoError(t, db.RecordCheckIn(ctx, c))

		c.CheckedInAt = c.CheckedInAt.Add(time.Minute)
		err := db.RecordCheckIn(ctx, c)
		requireCheckInReason(t, err, checkin.REASON_ALREADY_CHECKED_IN)

		got, err := db.GetCheckIn(ctx, event.ID, "reg1")
		require.NoError(t, err)
		assert.Equal(t, c.CheckedInAt.Add(-time.Minute), got.CheckedInAt)
	})

	t.Run("same registration at another event", func(t *testing.T) {
		resetTable(ctx)
		first := newTestEvent(time.Now())
		second := newTestEvent(time.Now())
		require.NoError(t, db.CreateEvent(ctx, first))
		require.NoError(t, db.CreateEvent(ctx, second))

		for _, c := range []checkin.CheckIn{newTestCheckIn(first.ID, "reg1"), newTestCheckIn(second.ID, "reg1")} {
			issueTicketFor(t, ctx, c)
			require.NoError(t, db.RecordCheckIn(ctx, c))
		}
	})

	t.Run("token that was never issued", func(t *testing.T) {
		resetTable(ctx)
		event := newTestEvent(time.Now())
		require.NoError(t, db.CreateEvent(ctx, event))

		err := db.RecordCheckIn(ctx, newTestCheckIn(event.ID, "reg1"))
		requireCheckInReason(t, err, checkin.REASON_INVALID_TOKEN)

		_, err = db.GetCheckIn(ctx, event.ID, "reg1")
		requireCheckInReason(t, err, checkin.REASON_CHECK_IN_DOES_NOT_EXIST)
	})

	t.Run("token replaced by a newer ticket", func(t *testing.T) {
		resetTable(ctx)
		event := newTestEvent(time.Now())
		require.NoError(t, db.CreateEvent(ctx, event))
		old := newTestCheckIn(event.ID, "reg1")
		issueTicketFor(t, ctx, old)

		newer := old
		newer.Token += "9"
		issueTicketFor(t, ctx, newer)

		err := db.RecordCheckIn(ctx, old)
		requireCheckInReason(t, err, checkin.REASON_INVALID_TOKEN)
		require.NoError(t, db.RecordCheckIn(ctx, newer))
	})

	t.Run("disabled event", func(t *testing.T) {
		resetTable(ctx)
		event := newTestEvent(time.Now())
		require.NoError(t, db.CreateEvent(ctx, event))
		event.Disabled = true
		event.Version++
		require.NoError(t, db.UpdateEvent(ctx, event))

		err := db.RecordCheckIn(ctx, newTestCheckIn(event.ID, "reg1"))
		requireCheckInReason(t, err, checkin.REASON_EVENT_DISABLED)

		_, err = db.GetCheckIn(ctx, event.ID, "reg1")
		requireCheckInReason(t, err, checkin.REASON_CHECK_IN_DOES_NOT_EXIST)
	})

	t.Run("event does not exist", func(t *testing.T) {
		resetTable(ctx)

		err := db.RecordCheckIn(ctx, newTestCheckIn(uuid.New(), "reg1"))
		requireCheckInReason(t, err, checkin.REASON_EVENT_DISABLED)
	})
}

func TestGetCheckIn(t *testing.T) {
	ctx := context.Background()
	resetTable(ctx)

	_, err := db.GetCheckIn(ctx, uuid.New(), "reg1")
	requireCheckInReason(t, err, checkin.REASON_CHECK_IN_DOES_NOT_EXIST)
}

func TestGetCheckInsForEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("pages through one event only", func(t *testing.T) {
		resetTable(ctx)
		event := newTestEvent(time.Now())
		other := newTestEvent(time.Now())
		require.NoError(t, db.CreateEvent(ctx, event))
		require.NoError(t, db.CreateEvent(ctx, other))

		checkIns := []checkin.CheckIn{
			newTestCheckIn(event.ID, "reg1"),
			newTestCheckIn(event.ID, "reg2"),
			newTestCheckIn(event.ID, "reg3"),
			newTestCheckIn(other.ID, "reg9"),
		}
		for _, c := range checkIns {
			issueTicketFor(t, ctx, c)
			require.NoError(t, db.RecordCheckIn(ctx, c))
		}

		first, err := db.GetCheckInsForEvent(ctx, event.ID, 2, nil)
		require.NoError(t, err)
		require.Len(t, first.Data, 2)
		assert.True(t, first.HasNextPage)
		assert.Equal(t, "reg1", first.Data[0].RegistrationID)
		assert.Equal(t, "reg2", first.Data[1].RegistrationID)

		second, err := db.GetCheckInsForEvent(ctx, event.ID, 2, first.Cursor)
		require.NoError(t, err)
		require.Len(t, second.Data, 1)
		assert.Equal(t, "reg3", second.Data[0].RegistrationID)
		assert.False(t, second.HasNextPage)
		assert.Nil(t, second.Cursor)
	})

	t.Run("no check-ins yet", func(t *testing.T) {
		resetTable(ctx)
		event := newTestEvent(time.Now())
		require.NoError(t, db.CreateEvent(ctx, event))

		result, err := db.GetCheckInsForEvent(ctx, event.ID, 10, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Data)
		assert.False(t, result.HasNextPage)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		resetTable(ctx)

		_, err := db.GetCheckInsForEvent(ctx, uuid.New(), 10, aws.String("%%%"))
		requireCheckInReason(t, err, checkin.REASON_INVALID_CURSOR)
	})
}

func TestTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		resetTable(ctx)
		c := newTestCheckIn(uuid.New(), "reg1")
		issueTicketFor(t, ctx, c)

		got, err := db.GetTicket(ctx, c.EventID, "reg1")
		require.NoError(t, err)
		assert.Equal(t, checkin.Ticket{
			EventID:        c.EventID,
			UserID:         c.UserID,
			RegistrationID: "reg1",
			Token:          c.Token,
			IssuedAt:       c.IssuedAt,
		}, got)
	})

	t.Run("reissuing replaces the token", func(t *testing.T) {
		resetTable(ctx)
		c := newTestCheckIn(uuid.New(), "reg1")
		issueTicketFor(t, ctx, c)
		c.Token += "9"
		issueTicketFor(t, ctx, c)

		got, err := db.GetTicket(ctx, c.EventID, "reg1")
		require.NoError(t, err)
		assert.Equal(t, c.Token, got.Token)
	})

	t.Run("not issued", func(t *testing.T) {
		resetTable(ctx)

		_, err := db.GetTicket(ctx, uuid.New(), "reg1")
		requireCheckInReason(t, err, checkin.REASON_TICKET_DOES_NOT_EXIST)
	})
}
