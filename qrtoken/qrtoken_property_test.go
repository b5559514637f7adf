//go:build property

package qrtoken

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCodecProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	identifier := gen.AlphaString().SuchThat(func(s string) bool { return s != "" })

	// Property: decoding an encoded token gives back the identifiers
	properties.Property("decode inverts encode", prop.ForAll(
		func(eventID, userID, registrationID string, millis int64) bool {
			codec := NewCodec(noopLogger, WithClock(func() time.Time { return time.UnixMilli(millis) }))

			payload, ok := codec.Decode(codec.Encode(eventID, userID, registrationID))
			if !ok {
				return false
			}

			ts, err := strconv.ParseInt(payload.Timestamp, 10, 64)
			if err != nil || ts < 0 {
				return false
			}

			return payload.EventID == eventID &&
				payload.UserID == userID &&
				payload.RegistrationID == registrationID &&
				ts == millis
		},
		identifier,
		identifier,
		identifier,
		gen.Int64Range(0, 1<<45),
	))

	// Property: decode never panics and only accepts tagged input
	properties.Property("decode is total", prop.ForAll(
		func(s string) bool {
			_, ok := NewCodec(noopLogger).Decode(s)
			if ok {
				return strings.HasPrefix(s, Tag+Delimiter)
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
