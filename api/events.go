package api

import (
	"log/slog"
	"net/http"

	"github.com/International-Combat-Archery-Alliance/event-checkin/slices"
)

func (a *API) GetEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := a.parseLimit(w, r)
	if !ok {
		return
	}

	result, err := a.db.GetEvents(r.Context(), limit, cursorFromQuery(r))
	if err != nil {
		a.getLoggerFromCtx(r.Context()).Error("Failed to get events from the DB", slog.Any("error", err))
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, EventsPage{
		Data:        slices.Map(result.Data, eventToApiEvent),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}
