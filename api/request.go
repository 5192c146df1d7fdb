package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-playground/form"
	"github.com/webhookx-io/eventsvc/normalizer"
)

const (
	FileField = "files[image]"

	// multipart parts beyond this are spooled to temporary files
	multipartMemory = 8 << 20
)

var ErrMalformedBody = errors.New(MsgMalformedBody)

var queryDecoder = form.NewDecoder()

func malformed(err error) error {
	return fmt.Errorf("%w: %s", ErrMalformedBody, err)
}

// ListParams are the query parameters of the events listing.
type ListParams struct {
	Type  string `form:"type"`
	Limit int64  `form:"limit"`
	Page  int64  `form:"page"`
}

// bindListParams decodes the query string. Values that do not parse are left
// at zero, which the service replaces with the defaults.
func bindListParams(r *http.Request) *ListParams {
	params := &ListParams{}
	_ = queryDecoder.Decode(params, r.URL.Query())
	return params
}

// multipart and urlencoded bodies carry the first value of each key
func firstValues(values map[string][]string) map[string]interface{} {
	raw := make(map[string]interface{}, len(values))
	for k, v := range values {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	return raw
}

func decodeJSON(body io.Reader) (map[string]interface{}, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()
	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]interface{}{}, nil
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, malformed(err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// bindEvent reads an event payload from a JSON, urlencoded or multipart
// body. A multipart files[image] part is written to upload storage; the
// caller removes it if the request fails.
func (api *API) bindEvent(w http.ResponseWriter, r *http.Request) (map[string]interface{}, *normalizer.FileRef, error) {
	r.Body = http.MaxBytesReader(w, r.Body, api.cfg.Uploads.MaxSize)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "application/json":
		raw, err := decodeJSON(r.Body)
		return raw, nil, err
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, nil, bodyError(err)
		}
		return firstValues(r.PostForm), nil, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, nil, bodyError(err)
		}
		raw := firstValues(r.MultipartForm.Value)
		files := r.MultipartForm.File[FileField]
		if len(files) == 0 || api.storage == nil {
			return raw, nil, nil
		}
		if len(files) > 1 {
			return nil, nil, malformed(errors.New(MsgTooManyUploads))
		}
		f, err := files[0].Open()
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		ref, err := api.storage.Save(files[0].Filename, f)
		if err != nil {
			return nil, nil, err
		}
		return raw, ref, nil
	default:
		return map[string]interface{}{}, nil, nil
	}
}

func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return malformed(err)
}
