package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/webhookx-io/eventsvc/config"
	"github.com/webhookx-io/eventsvc/pkg/errs"
	"github.com/webhookx-io/eventsvc/pkg/http/middlewares"
	"github.com/webhookx-io/eventsvc/pkg/http/response"
	"github.com/webhookx-io/eventsvc/pkg/upload"
	"github.com/webhookx-io/eventsvc/service"
	"go.uber.org/zap"
)

const (
	EventsPath = "/api/v3/app/events"

	MsgNotFound       = "not found"
	MsgEventNotFound  = "event not found"
	MsgInvalidID      = "invalid id format"
	MsgBodyTooLarge   = "request body too large"
	MsgMalformedBody  = "malformed request body"
	MsgValidation     = "Request Validation"
	MsgEventCreated   = "Event created successfully"
	MsgEventUpdated   = "Event updated successfully"
	MsgEventDeleted   = "Event deleted successfully"
	MsgTooManyUploads = "only one files[image] attachment is accepted"
)

type API struct {
	cfg         *config.Config
	log         *zap.SugaredLogger
	service     *service.Service
	storage     *upload.Storage
	middlewares []mux.MiddlewareFunc
}

type Options struct {
	Config      *config.Config
	Service     *service.Service
	Storage     *upload.Storage
	Middlewares []mux.MiddlewareFunc
}

func NewAPI(opts Options) *API {
	return &API{
		cfg:         opts.Config,
		log:         zap.S().Named("api"),
		service:     opts.Service,
		storage:     opts.Storage,
		middlewares: opts.Middlewares,
	}
}

// param returns the value of an url variable
func (api *API) param(r *http.Request, variable string) string {
	return mux.Vars(r)[variable]
}

// query returns the url query value if it exists.
func (api *API) query(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}

func (api *API) json(code int, w http.ResponseWriter, data interface{}) {
	response.JSON(w, code, data)
}

// error writes the response of a known error class. Faults are re-raised
// for the recovery middleware.
func (api *API) error(w http.ResponseWriter, err error) {
	if !writeError(err, w) {
		panic(err)
	}
}

func (api *API) assert(err error) {
	if err != nil {
		panic(err)
	}
}

// writeError maps err onto its status code and body. It reports false for
// errors that are system faults.
func writeError(err error, w http.ResponseWriter) bool {
	var validateErr *errs.ValidateError
	var conflictErr *errs.ConflictError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &validateErr):
		response.Error(w, http.StatusBadRequest, MsgValidation, validateErr)
	case errors.Is(err, errs.ErrInvalidID):
		response.Error(w, http.StatusBadRequest, MsgInvalidID, nil)
	case errors.As(err, &maxBytesErr):
		response.Error(w, http.StatusRequestEntityTooLarge, MsgBodyTooLarge, nil)
	case errors.Is(err, ErrMalformedBody):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &conflictErr):
		response.Error(w, http.StatusConflict, conflictErr.Error(), conflictErr)
	case errors.Is(err, errs.ErrConflict):
		response.Error(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, errs.ErrNotFound):
		response.Error(w, http.StatusNotFound, MsgEventNotFound, nil)
	default:
		return false
	}
	return true
}

// Handler returns a http.Handler
func (api *API) Handler() http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, 404, MsgNotFound, nil)
	})

	for _, m := range api.middlewares {
		r.Use(m)
	}
	r.Use(middlewares.NewRecovery(writeError).Handle)

	r.HandleFunc("/", api.Index).Methods("GET").Name("index")

	r.HandleFunc(EventsPath, api.GetEvents).Methods("GET").Name("events.get")
	r.HandleFunc(EventsPath, api.CreateEvent).Methods("POST").Name("events.create")
	r.HandleFunc(EventsPath+"/{id}", api.UpdateEvent).Methods("PUT").Name("events.update")
	r.HandleFunc(EventsPath+"/{id}", api.DeleteEvent).Methods("DELETE").Name("events.delete")

	if api.storage != nil {
		r.PathPrefix("/uploads/").
			Handler(http.StripPrefix("/uploads/", api.storage.Handler())).
			Methods("GET", "HEAD").
			Name("uploads")
	}

	return r
}
