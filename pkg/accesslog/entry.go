package accesslog

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/webhookx-io/eventsvc/constants"
	"github.com/webhookx-io/eventsvc/utils"
	"go.opentelemetry.io/otel/trace"
)

// Entry is one served request.
type Entry struct {
	RequestID   string
	ClientIP    string
	Method      string
	Path        string
	Query       string
	Proto       string
	UserAgent   string
	Referer     string
	ContentType string

	Status  int
	Size    int
	Latency time.Duration
}

func NewEntry(r *http.Request) *Entry {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	contentType := r.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return &Entry{
		RequestID:   r.Header.Get(constants.HeaderRequestId),
		ClientIP:    ip,
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		Proto:       r.Proto,
		UserAgent:   r.UserAgent(),
		Referer:     r.Referer(),
		ContentType: contentType,
	}
}

func (e *Entry) URI() string {
	if e.Query == "" {
		return e.Path
	}
	return e.Path + "?" + e.Query
}

func (e *Entry) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("client_ip", e.ClientIP).
		Str("request_id", e.RequestID).
		Dict("request", zerolog.Dict().
			Str("method", e.Method).
			Str("path", e.Path).
			Str("query", e.Query).
			Str("proto", e.Proto).
			Str("content_type", e.ContentType).
			Dict("headers", zerolog.Dict().
				Str("user-agent", e.UserAgent).
				Str("referer", e.Referer))).
		Dict("response", zerolog.Dict().
			Int("status", e.Status).
			Int("size", e.Size)).
		Int64("latency", e.Latency.Milliseconds())

	if sc := trace.SpanContextFromContext(ev.GetCtx()); sc.IsValid() {
		ev.Str("trace_id", sc.TraceID().String())
	}
}

// String renders the entry in combined log style.
func (e *Entry) String() string {
	return fmt.Sprintf(`%s - %s "%s %s %s" %d %d %dms "%s" "%s"`,
		e.ClientIP,
		utils.DefaultIfZero(e.RequestID, "-"),
		e.Method, e.URI(), e.Proto,
		e.Status, e.Size,
		e.Latency.Milliseconds(),
		utils.DefaultIfZero(e.Referer, "-"),
		utils.DefaultIfZero(e.UserAgent, "-"),
	)
}

type recorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *recorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// NewMiddleware logs every request once the wrapped handler returns.
func NewMiddleware(logger AccessLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := NewEntry(r)
			start := time.Now()
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry.Status = rec.status
			entry.Size = rec.size
			entry.Latency = time.Since(start)
			logger.Log(r.Context(), entry)
		})
	}
}
