package checkin

import "fmt"

type ErrorReason string

const (
	REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL ErrorReason = "FAILED_TO_TRANSLATE_TO_DB_MODEL"
	REASON_FAILED_TO_WRITE                 ErrorReason = "FAILED_TO_WRITE"
	REASON_FAILED_TO_FETCH                 ErrorReason = "FAILED_TO_FETCH"
	REASON_INVALID_CURSOR                  ErrorReason = "INVALID_CURSOR"
	REASON_TIMEOUT                         ErrorReason = "TIMEOUT"
	REASON_INVALID_TOKEN                   ErrorReason = "INVALID_TOKEN"
	REASON_INVALID_IDENTIFIER              ErrorReason = "INVALID_IDENTIFIER"
	REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST ErrorReason = "ASSOCIATED_EVENT_DOES_NOT_EXIST"
	REASON_EVENT_DISABLED                  ErrorReason = "EVENT_DISABLED"
	REASON_ALREADY_CHECKED_IN              ErrorReason = "ALREADY_CHECKED_IN"
	REASON_CHECK_IN_DOES_NOT_EXIST         ErrorReason = "CHECK_IN_DOES_NOT_EXIST"
	REASON_TICKET_DOES_NOT_EXIST           ErrorReason = "TICKET_DOES_NOT_EXIST"
	REASON_FAILED_TO_SEND_EMAIL            ErrorReason = "FAILED_TO_SEND_EMAIL"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newCheckInError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newCheckInError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToTranslateToDBModelError(message string, cause error) *Error {
	return newCheckInError(REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newCheckInError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewInvalidCursorError(message string, cause error) *Error {
	return newCheckInError(REASON_INVALID_CURSOR, message, cause)
}

func NewTimeoutError(message string) *Error {
	return newCheckInError(REASON_TIMEOUT, message, nil)
}

func NewInvalidTokenError(message string, cause error) *Error {
	return newCheckInError(REASON_INVALID_TOKEN, message, cause)
}

func NewInvalidIdentifierError(message string, cause error) *Error {
	return newCheckInError(REASON_INVALID_IDENTIFIER, message, cause)
}

func NewAssociatedEventDoesNotExistError(message string, cause error) *Error {
	return newCheckInError(REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST, message, cause)
}

func NewEventDisabledError(message string) *Error {
	return newCheckInError(REASON_EVENT_DISABLED, message, nil)
}

func NewAlreadyCheckedInError(message string, cause error) *Error {
	return newCheckInError(REASON_ALREADY_CHECKED_IN, message, cause)
}

func NewCheckInDoesNotExistError(message string, cause error) *Error {
	return newCheckInError(REASON_CHECK_IN_DOES_NOT_EXIST, message, cause)
}

func NewTicketDoesNotExistError(message string, cause error) *Error {
	return newCheckInError(REASON_TICKET_DOES_NOT_EXIST, message, cause)
}

func NewFailedToSendEmailError(message string, cause error) *Error {
	return newCheckInError(REASON_FAILED_TO_SEND_EMAIL, message, cause)
}
