package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		a.getLoggerFromCtx(r.Context()).Error("failed to marshal response", slog.Any("error", err))
		status = http.StatusInternalServerError
		jsonBody = []byte(`{"message": "Internal server error", "code": "InternalError"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonBody)
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	a.writeJSON(w, r, status, Error{Code: code, Message: message})
}

// decodeBody reports whether the body was decoded. It writes the error response itself.
func (a *API) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		a.writeJSON(w, r, http.StatusRequestEntityTooLarge, bodyTooLargeError(maxBytesErr))
		return false
	}
	if errors.Is(err, io.EOF) {
		a.writeError(w, r, http.StatusBadRequest, EmptyBody, "Must specify a JSON body in the request")
		return false
	}
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, InputValidationError, fmt.Sprintf("Request body is not valid JSON: %s", err))
		return false
	}
	return true
}

// parseLimit reads the limit query param. It writes the error response itself.
func (a *API) parseLimit(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		a.writeError(w, r, http.StatusBadRequest, LimitOutOfBounds, fmt.Sprintf("Limit must be between 1 and %d", maxLimit))
		return 0, false
	}

	return int32(limit), true
}

func cursorFromQuery(r *http.Request) *string {
	if !r.URL.Query().Has("cursor") {
		return nil
	}
	cursor := r.URL.Query().Get("cursor")
	return &cursor
}

type errorResponse struct {
	status  int
	code    ErrorCode
	message string
}

func checkInErrorResponse(err error) errorResponse {
	var checkInErr *checkin.Error
	if errors.As(err, &checkInErr) {
		switch checkInErr.Reason {
		case checkin.REASON_INVALID_TOKEN:
			return errorResponse{http.StatusBadRequest, InvalidToken, checkInErr.Message}
		case checkin.REASON_INVALID_IDENTIFIER:
			return errorResponse{http.StatusBadRequest, InputValidationError, checkInErr.Message}
		case checkin.REASON_INVALID_CURSOR:
			return errorResponse{http.StatusBadRequest, InvalidCursor, "Passed in cursor is invalid"}
		case checkin.REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST, checkin.REASON_CHECK_IN_DOES_NOT_EXIST:
			return errorResponse{http.StatusNotFound, NotFound, checkInErr.Message}
		case checkin.REASON_EVENT_DISABLED:
			return errorResponse{http.StatusConflict, EventDisabled, checkInErr.Message}
		case checkin.REASON_ALREADY_CHECKED_IN:
			return errorResponse{http.StatusConflict, AlreadyCheckedIn, checkInErr.Message}
		case checkin.REASON_TIMEOUT:
			return errorResponse{http.StatusGatewayTimeout, Timeout, "Timed out talking to the database"}
		}
	}

	var eventErr *events.Error
	if errors.As(err, &eventErr) {
		switch eventErr.Reason {
		case events.REASON_INVALID_CURSOR:
			return errorResponse{http.StatusBadRequest, InvalidCursor, "Passed in cursor is invalid"}
		case events.REASON_EVENT_DOES_NOT_EXIST:
			return errorResponse{http.StatusNotFound, NotFound, eventErr.Message}
		case events.REASON_TIMEOUT:
			return errorResponse{http.StatusGatewayTimeout, Timeout, "Timed out talking to the database"}
		}
	}

	return errorResponse{http.StatusInternalServerError, InternalError, "Internal server error"}
}

func (a *API) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	resp := checkInErrorResponse(err)
	if resp.status >= http.StatusInternalServerError {
		a.getLoggerFromCtx(r.Context()).Error("Request failed", slog.Any("error", err))
	}
	a.writeError(w, r, resp.status, resp.code, resp.message)
}
