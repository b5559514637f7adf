package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/google/uuid"
	middleware "github.com/oapi-codegen/nethttp-middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	requestIdHeader = "X-Request-Id"

	maxBodyBytes = 64 << 10
)

type middlewareFunc func(next http.Handler) http.Handler

// useMiddlewares applies middlewares so the last one listed runs first.
func useMiddlewares(r *http.ServeMux, middlewares ...middlewareFunc) http.Handler {
	var s http.Handler
	s = r

	for _, mw := range middlewares {
		s = mw(s)
	}

	return s
}

func (a *API) requestContextMiddleware() middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestId := uuid.New()
			if fromHeader, err := uuid.Parse(r.Header.Get(requestIdHeader)); err == nil {
				requestId = fromHeader
			}

			logger := a.logger.With(slog.String("request-id", requestId.String()))

			ctx := ctxWithRequestId(r.Context(), requestId)
			ctx = ctxWithLogger(ctx, logger)

			w.Header().Set(requestIdHeader, requestId.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *API) loggingMiddleware() middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			loggingRW := newLoggingResponseWriter(w)

			// process the request
			next.ServeHTTP(loggingRW, r)

			a.logger.InfoContext(r.Context(),
				"Access log",
				slog.String("latency", formatDuration(time.Since(start))),
				slog.Int64("request-content-length", r.ContentLength),
				slog.Int("resp-body-size", loggingRW.responseSize),
				slog.String("host", r.Host),
				slog.String("method", r.Method),
				slog.Int("status-code", loggingRW.statusCode),
				slog.String("path", r.URL.Path),
				slog.String("request-id", loggingRW.Header().Get(requestIdHeader)),
			)
		})
	}
}

// tracingMiddleware starts the server span. It is named after the method until
// handle renames it to the matched route, so tokens in the path never reach a span.
func (a *API) tracingMiddleware() middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := a.tracer.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("http.request.method", r.Method)),
			)
			defer span.End()

			loggingRW := newLoggingResponseWriter(w)
			next.ServeHTTP(loggingRW, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.response.status_code", loggingRW.statusCode))
			if loggingRW.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(loggingRW.statusCode))
			}
		})
	}
}

// handle registers h on mux and names the request span after the route pattern.
func handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	_, route, _ := strings.Cut(pattern, " ")

	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		span.SetName(r.Pattern)
		span.SetAttributes(attribute.String("http.route", route))

		h(w, r)
	})
}

func (a *API) bodyLimitMiddleware() middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *API) openapiValidateMiddleware(swagger *openapi3.T) middlewareFunc {
	return middleware.OapiRequestValidatorWithOptions(swagger, &middleware.Options{
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, opts middleware.ErrorHandlerOpts) {
			status := opts.StatusCode
			e := Error{
				Message: err.Error(),
				Code:    InternalError,
			}

			var requestErr *openapi3filter.RequestError
			var maxBytesErr *http.MaxBytesError
			switch {
			case errors.As(err, &maxBytesErr):
				status = http.StatusRequestEntityTooLarge
				e = bodyTooLargeError(maxBytesErr)
			case errors.As(err, &requestErr):
				e = requestValidationError(requestErr)
			case status == http.StatusNotFound:
				e.Code = NotFound
			}

			a.writeJSON(w, r, status, e)
		},
	})
}

func requestValidationError(err *openapi3filter.RequestError) Error {
	switch {
	case err.RequestBody != nil && errors.Is(err.Err, openapi3filter.ErrInvalidRequired):
		return Error{Code: EmptyBody, Message: "Must specify a JSON body in the request"}
	case err.Parameter != nil && err.Parameter.Name == "limit":
		return Error{Code: LimitOutOfBounds, Message: fmt.Sprintf("Limit must be between 1 and %d", maxLimit)}
	default:
		return Error{Code: InputValidationError, Message: err.Error()}
	}
}

func bodyTooLargeError(err *http.MaxBytesError) Error {
	return Error{Code: BodyTooLarge, Message: fmt.Sprintf("Request body must be at most %d bytes", err.Limit)}
}

func (a *API) corsMiddleware() middlewareFunc {
	var serverCors *cors.Cors

	switch a.env {
	case PROD:
		serverCors = cors.New(cors.Options{
			AllowedOrigins: a.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", requestIdHeader},
			ExposedHeaders: []string{requestIdHeader},
			MaxAge:         300,
		})
	default:
		serverCors = cors.AllowAll()
	}

	return serverCors.Handler
}

// formatDuration formats a duration to one decimal point.
func formatDuration(d time.Duration) string {
	div := time.Duration(10)
	switch {
	case d > time.Second:
		d = d.Round(time.Second / div)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond / div)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond / div)
	}
	return d.String()
}
