package api

import (
	"log/slog"
	"net/http"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/validate"
)

const maxIdentifierLength = 64

func (a *API) PostTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerFromCtx(ctx)

	eventID, err := checkin.ParseID(r.PathValue("eventId"))
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, InputValidationError, "eventId must be a UUID")
		return
	}

	var body TicketRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	fieldErrs := validate.Fields{
		"userId":         {Value: body.UserId, Rules: []validate.Rule{validate.Required(), validate.Max(maxIdentifierLength)}},
		"registrationId": {Value: body.RegistrationId, Rules: []validate.Rule{validate.Required(), validate.Max(maxIdentifierLength)}},
		"email":          {Value: body.Email, Rules: []validate.Rule{validate.Required(), validate.Email()}},
	}.Errors()
	if len(fieldErrs) > 0 {
		a.writeJSON(w, r, http.StatusBadRequest, Error{
			Code:    InputValidationError,
			Message: "Ticket request is invalid",
			Fields:  fieldErrs,
		})
		return
	}

	ticket, err := checkin.IssueTicket(ctx, a.codec, a.db, a.db, eventID, body.UserId, body.RegistrationId)
	if err != nil {
		logger.Warn("Failed to issue ticket", slog.String("event-id", eventID.String()), slog.Any("error", err))
		a.writeDomainError(w, r, err)
		return
	}

	event, err := a.db.GetEvent(ctx, eventID)
	emailSent := err == nil
	if err == nil {
		err = checkin.SendTicketEmail(ctx, a.emailSender, a.fromAddress, body.Email, ticket, event)
		emailSent = err == nil
	}
	if err != nil {
		// The ticket is still valid, the registrant can be sent it again later.
		logger.Error("Failed to email ticket", slog.String("registration-id", ticket.RegistrationID), slog.Any("error", err))
	}

	a.writeJSON(w, r, http.StatusOK, ticketToApiTicket(ticket, emailSent))
}
