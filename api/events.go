package api

import (
	"net/http"

	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/normalizer"
	"github.com/webhookx-io/eventsvc/pkg/types"
	"github.com/webhookx-io/eventsvc/service"
)

type MessageResponse struct {
	Message string `json:"message"`
	EventID string `json:"eventId,omitempty"`
}

func records(list []*entities.Event) []types.Document {
	result := make([]types.Document, 0, len(list))
	for _, event := range list {
		result = append(result, event.Record())
	}
	return result
}

// GetEvents returns one record when id is given, a page of records otherwise.
func (api *API) GetEvents(w http.ResponseWriter, r *http.Request) {
	params := bindListParams(r)

	if id := api.query(r, "id"); id != "" {
		event, err := api.service.Get(r.Context(), id)
		if err != nil {
			api.error(w, err)
			return
		}
		api.json(200, w, event.Record())
		return
	}

	list, err := api.service.List(r.Context(), service.ListOptions{
		Type:  params.Type,
		Page:  params.Page,
		Limit: params.Limit,
	})
	api.assert(err)

	api.json(200, w, records(list))
}

func (api *API) discard(upload *normalizer.FileRef) {
	if upload == nil {
		return
	}
	if err := api.storage.Remove(upload.Filename); err != nil {
		api.log.Warnf("failed to remove upload %s: %v", upload.Filename, err)
	}
}

func (api *API) CreateEvent(w http.ResponseWriter, r *http.Request) {
	raw, upload, err := api.bindEvent(w, r)
	if err != nil {
		api.error(w, err)
		return
	}

	event, err := api.service.Create(r.Context(), raw, upload)
	if err != nil {
		api.discard(upload)
		api.error(w, err)
		return
	}

	api.json(201, w, MessageResponse{Message: MsgEventCreated, EventID: event.ID})
}

func (api *API) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")

	raw, upload, err := api.bindEvent(w, r)
	if err != nil {
		api.error(w, err)
		return
	}

	if _, err := api.service.Update(r.Context(), id, raw, upload); err != nil {
		api.discard(upload)
		api.error(w, err)
		return
	}

	api.json(200, w, MessageResponse{Message: MsgEventUpdated})
}

func (api *API) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")

	if err := api.service.Delete(r.Context(), id); err != nil {
		api.error(w, err)
		return
	}

	api.json(200, w, MessageResponse{Message: MsgEventDeleted})
}
