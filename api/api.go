package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Environment int

const (
	LOCAL Environment = iota
	PROD
)

type DB interface {
	events.Repository
	checkin.Repository
}

type API struct {
	db             DB
	logger         *slog.Logger
	env            Environment
	codec          checkin.Codec
	emailSender    email.Sender
	fromAddress    string
	allowedOrigins []string
	tracer         trace.Tracer
	now            func() time.Time
}

func NewAPI(db DB, logger *slog.Logger, env Environment, codec checkin.Codec, emailSender email.Sender, fromAddress string, allowedOrigins []string) *API {
	return &API{
		db:             db,
		logger:         logger,
		env:            env,
		codec:          codec,
		emailSender:    emailSender,
		fromAddress:    fromAddress,
		allowedOrigins: allowedOrigins,
		tracer:         otel.Tracer("github.com/International-Combat-Archery-Alliance/event-checkin/api"),
		now:            time.Now,
	}
}

// Handler returns the routed API wrapped in its middleware. Only the /v1 routes
// are checked against the OpenAPI document, the ticket pages take form posts.
func (a *API) Handler() http.Handler {
	v1 := http.NewServeMux()
	handle(v1, "GET /v1/events", a.GetEvents)
	handle(v1, "POST /v1/events/{eventId}/tickets", a.PostTicket)
	handle(v1, "GET /v1/events/{eventId}/checkins", a.GetCheckIns)
	handle(v1, "POST /v1/checkins", a.PostCheckIn)

	r := http.NewServeMux()
	r.Handle("/v1/", a.openapiValidateMiddleware(mustGetSwagger())(v1))
	handle(r, "GET /tickets/{token}", a.GetTicketPage)
	handle(r, "POST /tickets/{token}/checkin", a.PostCheckInPage)

	return useMiddlewares(r,
		a.bodyLimitMiddleware(),
		a.tracingMiddleware(),
		a.loggingMiddleware(),
		a.requestContextMiddleware(),
		a.corsMiddleware(),
	)
}
