// Package qrtoken builds and parses the text tokens embedded in registration QR codes.
//
// A token has the form
//
//	REG-<eventId>-<userId>-<registrationId>-<unixMillis>
//
// Identifiers must not contain the delimiter. Encode does not enforce this, use
// CheckIdentifiers before encoding values that come from outside the system.
package qrtoken

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	Tag       = "REG"
	Delimiter = "-"

	numFields = 5
)

var (
	ErrEmptyIdentifier       = errors.New("identifier is empty")
	ErrDelimiterInIdentifier = fmt.Errorf("identifier contains the token delimiter %q", Delimiter)
)

type Payload struct {
	EventID        string
	UserID         string
	RegistrationID string
	// Raw millisecond timestamp as it appeared in the token.
	Timestamp string
}

func (p Payload) IssuedAt() (time.Time, error) {
	millis, err := strconv.ParseInt(p.Timestamp, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid token timestamp %q: %w", p.Timestamp, err)
	}

	return time.UnixMilli(millis), nil
}

type Codec struct {
	logger *slog.Logger
	now    func() time.Time
	split  func(s, sep string) []string
}

type Option func(c *Codec)

func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(logger *slog.Logger, opts ...Option) *Codec {
	c := &Codec{
		logger: logger,
		now:    time.Now,
		split:  strings.Split,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Codec) Encode(eventID, userID, registrationID string) string {
	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)

	return strings.Join([]string{Tag, eventID, userID, registrationID, timestamp}, Delimiter)
}

// Decode returns false for anything that is not a well-formed token.
// Fields after the fifth are ignored.
func (c *Codec) Decode(token string) (payload Payload, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Failed to decode QR token", slog.Any("error", r))
			payload, ok = Payload{}, false
		}
	}()

	parts := c.split(token, Delimiter)
	if len(parts) < numFields || parts[0] != Tag {
		return Payload{}, false
	}

	return Payload{
		EventID:        parts[1],
		UserID:         parts[2],
		RegistrationID: parts[3],
		Timestamp:      parts[4],
	}, true
}

func CheckIdentifiers(ids ...string) error {
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("identifier %d: %w", i, ErrEmptyIdentifier)
		}
		if strings.Contains(id, Delimiter) {
			return fmt.Errorf("identifier %d (%q): %w", i, id, ErrDelimiterInIdentifier)
		}
	}

	return nil
}

// Encode uses a codec backed by the wall clock and slog.Default.
func Encode(eventID, userID, registrationID string) string {
	return NewCodec(slog.Default()).Encode(eventID, userID, registrationID)
}

func Decode(token string) (Payload, bool) {
	return NewCodec(slog.Default()).Decode(token)
}
