package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/urlshortener/backend/internal/failure"
)

// NewRecoverer returns a middleware that turns a panic in a downstream
// handler into an InternalFault envelope. The panic value and stack are
// logged; the client only sees the generic message.
//
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func NewRecoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				cause := fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
				failure.Write(r.Context(), log, w, failure.FromError(cause))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
