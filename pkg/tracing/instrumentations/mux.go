package instrumentations

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewMuxMiddleware traces each routed request. Spans are named after the
// route name, or the method and path template when the route is unnamed.
func NewMuxMiddleware(service string) mux.MiddlewareFunc {
	return otelhttp.NewMiddleware(service, otelhttp.WithSpanNameFormatter(spanName))
}

func spanName(operation string, r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return operation
	}
	if name := route.GetName(); name != "" {
		return name
	}
	tpl, _ := route.GetPathTemplate()
	return fmt.Sprintf("%s %s", r.Method, tpl)
}
