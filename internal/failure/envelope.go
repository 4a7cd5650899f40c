package failure

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the JSON body of every error response.
type Envelope struct {
	// Code equals the HTTP status of the response.
	Code int `json:"code"`
	// Reason is the canonical reason phrase for Code, or null if none exists.
	Reason *string `json:"reason"`
	// Message is safe to show to end users.
	Message string `json:"message"`
	// Details is set only for UnprocessableEntity.
	Details *Details `json:"details,omitempty"`
}

// NewEnvelope renders k without side effects.
func NewEnvelope(k Kind) Envelope {
	status := StatusCode(k)
	env := Envelope{
		Code:    status,
		Reason:  reasonPhrase(status),
		Message: Message(k),
	}
	if u, ok := k.(UnprocessableEntity); ok {
		env.Details = u.Details
		if env.Details == nil {
			env.Details = NewDetails()
		}
	}
	return env
}

// NewRouteNotFound renders the envelope for a request path that matched no
// route. uri is echoed in the message.
func NewRouteNotFound(uri string) Envelope {
	return Envelope{
		Code:    http.StatusNotFound,
		Reason:  reasonPhrase(http.StatusNotFound),
		Message: "Request path Not Found: " + uri,
	}
}

// Write sends k as an error response. 5xx kinds are logged at error level
// with their cause before the response is written; 4xx kinds are not logged.
// A nil log falls back to slog.Default.
func Write(ctx context.Context, log *slog.Logger, w http.ResponseWriter, k Kind) {
	if IsServerFault(k) {
		if log == nil {
			log = slog.Default()
		}
		log.ErrorContext(ctx, "request failed",
			"kind", Name(k),
			"status", StatusCode(k),
			"error", k,
		)
	}

	if _, ok := k.(Unauthorized); ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteEnvelope(w, NewEnvelope(k))
}

// WriteEnvelope serialises env with status env.Code.
func WriteEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Code)
	// The status line is already out; an encode failure can only be a
	// broken connection and there is nothing left to report it to.
	_ = json.NewEncoder(w).Encode(env)
}

func reasonPhrase(status int) *string {
	text := http.StatusText(status)
	if text == "" {
		return nil
	}
	return &text
}
