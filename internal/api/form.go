package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/harrylevesque/qrforge/internal/mobile"
	"github.com/harrylevesque/qrforge/internal/models"
	"github.com/harrylevesque/qrforge/internal/utils"
)

// qrRequest is a decoded form or /api body: a kind, its record and optional
// colors.
type qrRequest struct {
	Kind       models.Kind
	Record     models.Record
	Foreground string
	Background string
}

// decodeJSONRequest reads a flat JSON object such as
// {"kind":"wifi","ssid":"Home","hidden":true,"foreground":"#000"}.
func decodeJSONRequest(body io.Reader) (*qrRequest, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if isMaxBytesError(err) {
			return nil, utils.Wrap(http.StatusRequestEntityTooLarge, "request body too large", err)
		}
		return nil, utils.Wrap(http.StatusBadRequest, "invalid JSON body", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = val
		case bool:
			values[k] = strconv.FormatBool(val)
		case json.Number:
			values[k] = val.String()
		default:
			return nil, utils.New(http.StatusBadRequest, fmt.Sprintf("field %q must be a string, number or boolean", k))
		}
	}
	return buildRequest(func(name string) string { return values[name] })
}

func buildRequest(get func(name string) string) (*qrRequest, error) {
	kind, err := models.ParseKind(get("kind"))
	if err != nil {
		return nil, utils.Wrap(http.StatusBadRequest, "unknown kind", err)
	}
	rec, err := mobile.RecordFromForm(kind, get)
	if err != nil {
		if errors.Is(err, mobile.ErrInvalidField) {
			return nil, utils.Wrap(http.StatusBadRequest, err.Error(), err)
		}
		return nil, utils.Wrap(http.StatusBadRequest, "invalid request", err)
	}
	return &qrRequest{
		Kind:       kind,
		Record:     rec,
		Foreground: get("foreground"),
		Background: get("background"),
	}, nil
}

func isMaxBytesError(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
