package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/urlshortener/backend/internal/failure"
	"github.com/urlshortener/backend/internal/handler/gen"
)

// NewStrictHandler adapts ssi to the generated chi routes. Errors returned
// by an operation are rendered as failure envelopes instead of the
// generated plain-text defaults.
func NewStrictHandler(log *slog.Logger, ssi gen.StrictServerInterface, middlewares ...gen.StrictMiddlewareFunc) gen.ServerInterface {
	if log == nil {
		log = slog.Default()
	}
	return gen.NewStrictHandlerWithOptions(ssi, middlewares, gen.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  RequestError(log),
		ResponseErrorHandlerFunc: ResponseError(log),
	})
}

// RequestError renders a request that could not be decoded as a BadRequest.
func RequestError(log *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		failure.Write(r.Context(), log, w, failure.BadRequest{Reason: err.Error()})
	}
}

// ResponseError classifies err and writes it as an envelope.
//
// A request whose client went away is logged at debug level only: the
// context.Canceled that unwinds the handler is not a server fault.
func ResponseError(log *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		k := failure.Classify(err)
		if errors.Is(err, context.Canceled) && errors.Is(r.Context().Err(), context.Canceled) {
			log.DebugContext(r.Context(), "request canceled by client",
				"method", r.Method,
				"uri", r.URL.RequestURI(),
			)
			failure.WriteEnvelope(w, failure.NewEnvelope(k))
			return
		}
		failure.Write(r.Context(), log, w, k)
	}
}
