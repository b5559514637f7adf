package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/ui"
	"github.com/a-h/templ"
)

const pageTimeFormat = "15:04 02/01/2006"

// GetTicketPage shows what a scanned ticket is for, with a button to check it in.
func (a *API) GetTicketPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.PathValue("token")

	payload, ok := a.codec.Decode(token)
	if !ok {
		a.renderMessage(w, r, http.StatusBadRequest, "Mã không hợp lệ", "Mã này không phải vé đăng ký.", "")
		return
	}

	eventID, err := checkin.ParseID(payload.EventID)
	if err != nil {
		a.renderMessage(w, r, http.StatusBadRequest, "Mã không hợp lệ", "Mã vé có mã sự kiện không hợp lệ.", "")
		return
	}

	event, err := a.db.GetEvent(ctx, eventID)
	if err != nil {
		resp := checkInErrorResponse(err)
		if resp.status >= http.StatusInternalServerError {
			a.getLoggerFromCtx(ctx).Error("Failed to load event for ticket page", slog.Any("error", err))
		}
		a.renderMessage(w, r, resp.status, "Không tìm thấy sự kiện", resp.message, "")
		return
	}

	status := ""
	existing, err := a.db.GetCheckIn(ctx, eventID, payload.RegistrationID)
	switch {
	case err == nil:
		status = fmt.Sprintf("Đã check-in lúc %s.", existing.CheckedInAt.Format(pageTimeFormat))
	case !isCheckInReason(err, checkin.REASON_CHECK_IN_DOES_NOT_EXIST):
		a.getLoggerFromCtx(ctx).Warn("Failed to look up existing check-in", slog.Any("error", err))
	}
	if event.Disabled {
		status = "Sự kiện đã bị vô hiệu hóa."
	}

	issued := payload.Timestamp
	if issuedAt, err := payload.IssuedAt(); err == nil {
		issued = issuedAt.Format(pageTimeFormat)
	}

	card := ui.Card(ui.CardProps{Padding: ui.PaddingLg, Class: "max-w-md mx-auto"},
		heading(event.Name),
		details([]detailRow{
			{label: "Bắt đầu", value: event.StartTime.Format(pageTimeFormat)},
			{label: "Người tham gia", value: payload.UserID},
			{label: "Mã đăng ký", value: payload.RegistrationID},
			{label: "Phát hành", value: issued},
		}),
		notice(status),
		checkInForm(checkInPath(token),
			ui.Button(ui.ButtonProps{
				Type:     "submit",
				Variant:  ui.VariantPrimary,
				Size:     ui.SizeLg,
				Disabled: status != "",
				Class:    "w-full",
			}, ui.Text("Check-in")),
		),
	)

	a.renderPage(w, r, http.StatusOK, event.Name, card)
}

func (a *API) PostCheckInPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.PathValue("token")

	result, err := checkin.AttemptCheckIn(ctx, a.codec, token, a.db, a.db, a.now())
	if err != nil {
		resp := checkInErrorResponse(err)
		if resp.status >= http.StatusInternalServerError {
			a.getLoggerFromCtx(ctx).Error("Check-in failed", slog.Any("error", err))
		}
		a.renderMessage(w, r, resp.status, checkInFailureTitle(resp.code), resp.message, ticketPath(token))
		return
	}

	a.renderMessage(w, r, http.StatusOK, "Check-in thành công",
		fmt.Sprintf("%s đã check-in lúc %s.", result.UserID, result.CheckedInAt.Format(pageTimeFormat)),
		ticketPath(token))
}

func checkInFailureTitle(code ErrorCode) string {
	switch code {
	case AlreadyCheckedIn:
		return "Đã check-in trước đó"
	case EventDisabled:
		return "Sự kiện đã bị vô hiệu hóa"
	case InvalidToken:
		return "Mã không hợp lệ"
	case NotFound:
		return "Không tìm thấy sự kiện"
	default:
		return "Check-in thất bại"
	}
}

func isCheckInReason(err error, reason checkin.ErrorReason) bool {
	var checkInErr *checkin.Error
	return errors.As(err, &checkInErr) && checkInErr.Reason == reason
}

func ticketPath(token string) templ.SafeURL {
	return templ.SafeURL("/tickets/" + url.PathEscape(token))
}

func checkInPath(token string) templ.SafeURL {
	return ticketPath(token) + "/checkin"
}

func (a *API) renderMessage(w http.ResponseWriter, r *http.Request, status int, title string, text string, back templ.SafeURL) {
	var backLink templ.Component
	if back != "" {
		backLink = ui.LinkButton(ui.LinkButtonProps{Href: back, Variant: ui.VariantGhost, Size: ui.SizeSm}, ui.Text("Quay lại vé"))
	}

	cardClass := "max-w-md mx-auto"
	if status != http.StatusOK {
		cardClass += " border-red-300"
	}

	card := ui.Card(ui.CardProps{Padding: ui.PaddingLg, Class: cardClass},
		heading(title),
		message(text),
		backLink,
	)

	a.renderPage(w, r, status, title, card)
}

func (a *API) renderPage(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	err := page(title, body).Render(r.Context(), w)
	if err != nil {
		a.getLoggerFromCtx(r.Context()).Error("Failed to render page", slog.Any("error", err))
	}
}
