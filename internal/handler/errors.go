package handler

import (
	"net/http"

	"github.com/urlshortener/backend/internal/failure"
)

// NotFound is the router fallback for any request path no route matched.
// It echoes the request URI in the message and is never logged.
func NotFound(w http.ResponseWriter, r *http.Request) {
	failure.WriteEnvelope(w, failure.NewRouteNotFound(r.URL.RequestURI()))
}
