package api

import (
	"net/http"

	"github.com/webhookx-io/eventsvc"
)

type IndexResponse struct {
	Version string `json:"version"`
	Message string `json:"message"`
}

func (api *API) Index(w http.ResponseWriter, r *http.Request) {
	var response IndexResponse

	response.Version = eventsvc.VERSION
	response.Message = "Welcome to eventsvc"

	api.json(200, w, response)
}
