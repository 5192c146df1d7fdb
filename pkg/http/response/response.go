package response

import (
	"encoding/json"
	"net/http"

	"github.com/webhookx-io/eventsvc/constants"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Error   interface{} `json:"error,omitempty"`
}

func header(w http.ResponseWriter, contentType string) {
	h := w.Header()
	for _, header := range constants.DefaultResponseHeaders {
		h.Set(header.Name, header.Value)
	}
	h.Set("Content-Type", contentType)
}

// JSON writes data with the given status. A string is written as is,
// anything else is marshalled. A nil data writes no body.
func JSON(w http.ResponseWriter, code int, data interface{}) {
	var body []byte
	switch v := data.(type) {
	case nil:
	case string:
		body = []byte(v)
	case []byte:
		body = v
	default:
		var err error
		if body, err = json.Marshal(v); err != nil {
			panic(err)
		}
	}

	header(w, "application/json; charset=utf-8")
	w.WriteHeader(code)
	if body != nil {
		if _, err := w.Write(body); err != nil {
			panic(err)
		}
	}
}

// Error writes a {"message": ..., "error": ...} body.
func Error(w http.ResponseWriter, code int, message string, detail interface{}) {
	JSON(w, code, ErrorResponse{Message: message, Error: detail})
}
