package api

import (
	"log/slog"
	"net/http"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/slices"
	"github.com/International-Combat-Archery-Alliance/event-checkin/validate"
)

func (a *API) PostCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body CheckInRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	if !validate.IsRequired(body.Token) {
		a.writeJSON(w, r, http.StatusBadRequest, Error{
			Code:    InputValidationError,
			Message: "Check-in request is invalid",
			Fields:  map[string][]string{"token": {validate.Required().Message}},
		})
		return
	}

	result, err := checkin.AttemptCheckIn(ctx, a.codec, body.Token, a.db, a.db, a.now())
	if err != nil {
		a.getLoggerFromCtx(ctx).Info("Check-in rejected", slog.Any("error", err))
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, checkInToApiCheckIn(result))
}

func (a *API) GetCheckIns(w http.ResponseWriter, r *http.Request) {
	eventID, err := checkin.ParseID(r.PathValue("eventId"))
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, InputValidationError, "eventId must be a UUID")
		return
	}

	limit, ok := a.parseLimit(w, r)
	if !ok {
		return
	}

	result, err := a.db.GetCheckInsForEvent(r.Context(), eventID, limit, cursorFromQuery(r))
	if err != nil {
		a.getLoggerFromCtx(r.Context()).Error("Failed to get check-ins from the DB", slog.Any("error", err))
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, CheckInsPage{
		Data:        slices.Map(result.Data, checkInToApiCheckIn),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}
