package middlewares

import (
	"context"
	"net/http"

	"github.com/webhookx-io/eventsvc/constants"
	"github.com/webhookx-io/eventsvc/utils"
)

type requestIdKey struct{}

// RequestID propagates the caller's X-Request-Id or assigns a new one, and
// echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.HeaderRequestId)
		if id == "" {
			id = utils.UUID()
			r.Header.Set(constants.HeaderRequestId, id)
		}
		w.Header().Set(constants.HeaderRequestId, id)
		ctx := context.WithValue(r.Context(), requestIdKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}
