package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/webhookx-io/eventsvc/pkg/http/response"
	"go.uber.org/zap"
)

// ErrorHandler writes a response for err and reports whether it did.
type ErrorHandler func(err error, w http.ResponseWriter) bool

// Recovery turns handler panics into responses. Panics carrying an error
// are offered to CustomizeError first; the rest become a 500.
type Recovery struct {
	CustomizeError ErrorHandler
}

func NewRecovery(customizeError ErrorHandler) *Recovery {
	return &Recovery{CustomizeError: customizeError}
}

func (m *Recovery) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			e := recover()
			if e == nil {
				return
			}
			if e == http.ErrAbortHandler {
				panic(e)
			}

			err, ok := e.(error)
			if !ok {
				err = errors.New(fmt.Sprint(e))
			}
			if m.CustomizeError != nil && m.CustomizeError(err, w) {
				return
			}

			zap.S().With("request_id", RequestIDFromContext(r.Context())).
				Errorf("panic recovered: %v\n%s", err, debug.Stack())
			response.Error(w, http.StatusInternalServerError, "internal error", nil)
		}()

		next.ServeHTTP(w, r)
	})
}
