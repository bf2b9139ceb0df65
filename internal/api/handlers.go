package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"image/color"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/harrylevesque/qrforge/internal/crypto"
	"github.com/harrylevesque/qrforge/internal/mobile"
	"github.com/harrylevesque/qrforge/internal/models"
	"github.com/harrylevesque/qrforge/internal/payload"
	"github.com/harrylevesque/qrforge/internal/qr"
	"github.com/harrylevesque/qrforge/internal/utils"
)

// IndexHandler renders the empty form for ?kind= (text by default).
func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	kind := models.KindText
	status := http.StatusOK
	var formErr string
	if q := r.URL.Query().Get("kind"); q != "" {
		k, err := models.ParseKind(q)
		if err != nil {
			status = http.StatusBadRequest
			formErr = "Unknown QR code type " + q
		} else {
			kind = k
		}
	}
	page := s.newPage(kind)
	page.Error = formErr
	s.renderPage(w, r, status, page)
}

// GenerateFormHandler formats and encodes a submitted form and renders the
// preview with a download link.
func (s *Server) GenerateFormHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxUploadBytes)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, s.errorPage(models.KindText, "Could not read the submitted form."))
		return
	}

	kind, err := models.ParseKind(r.PostForm.Get("kind"))
	if err != nil {
		s.renderPage(w, r, http.StatusBadRequest, s.errorPage(models.KindText, "Unknown QR code type."))
		return
	}

	page := s.newPage(kind)
	for _, f := range page.Fields {
		page.Values[f.Name] = r.PostForm.Get(f.Name)
	}
	if v := r.PostForm.Get("foreground"); v != "" {
		page.Foreground = v
	}
	if v := r.PostForm.Get("background"); v != "" {
		page.Background = v
	}

	req, err := buildRequest(r.PostForm.Get)
	if err == nil {
		req.Foreground, req.Background = page.Foreground, page.Background
	}
	var (
		text string
		png  []byte
	)
	if err == nil {
		text, png, err = s.render(req)
	}
	switch {
	case errors.Is(err, payload.ErrIncomplete):
		page.Prompt = payload.IncompletePrompt
		s.renderPage(w, r, http.StatusOK, page)
		return
	case err != nil:
		page.Error = utils.MessageOf(err)
		s.renderPage(w, r, utils.StatusOf(err), page)
		return
	}

	token, err := s.sealer.Seal(crypto.DownloadTicket{
		Kind:       string(kind),
		Payload:    text,
		Foreground: page.Foreground,
		Background: page.Background,
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("sealing download token")
		page.Error = "Could not create a download link."
		s.renderPage(w, r, http.StatusInternalServerError, page)
		return
	}

	page.Payload = text
	page.Image = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	page.Download = "/download/" + token
	s.renderPage(w, r, http.StatusOK, page)
}

// DownloadHandler re-renders the code sealed in a download token.
func (s *Server) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.sealer.Open(mux.Vars(r)["token"])
	switch {
	case errors.Is(err, crypto.ErrTokenExpired):
		http.Error(w, "download link expired", http.StatusGone)
		return
	case err != nil:
		http.Error(w, "download link not found", http.StatusNotFound)
		return
	}

	kind, err := models.ParseKind(ticket.Kind)
	if err != nil {
		http.Error(w, "download link not found", http.StatusNotFound)
		return
	}
	fg, bg, err := s.colors(ticket.Foreground, ticket.Background)
	if err != nil {
		http.Error(w, utils.MessageOf(err), http.StatusBadRequest)
		return
	}
	png, err := s.encoder.Encode(ticket.Payload, fg, bg)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("re-encoding download")
		http.Error(w, "failed to render QR code", http.StatusInternalServerError)
		return
	}
	writePNG(w, kind, png)
}

// QRHandler renders a JSON request body straight to a PNG attachment.
func (s *Server) QRHandler(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeJSON(w, r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	_, png, err := s.render(req)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Debug().Str("kind", string(req.Kind)).Int("png_bytes", len(png)).Msg("rendered qr code")
	writePNG(w, req.Kind, png)
}

// PayloadHandler returns the formatted payload without encoding it.
func (s *Server) PayloadHandler(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeJSON(w, r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	text, err := s.formatter.Format(req.Record)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"kind": string(req.Kind), "payload": text})
}

// DecodeHandler reads a QR code from an uploaded image, either the raw body
// or the multipart field "image".
func (s *Server) DecodeHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxUploadBytes)

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, err = readMultipartImage(r, s.cfg.Limits.MaxUploadBytes)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		if isMaxBytesError(err) {
			writeJSONError(w, r, utils.Wrap(http.StatusRequestEntityTooLarge, "image too large", err))
			return
		}
		writeJSONError(w, r, utils.Wrap(http.StatusBadRequest, "could not read image", err))
		return
	}
	if len(data) == 0 {
		writeJSONError(w, r, utils.New(http.StatusBadRequest, "empty image"))
		return
	}

	res, err := mobile.Scan(data)
	switch {
	case errors.Is(err, qr.ErrQRDecode):
		writeJSONError(w, r, utils.Wrap(http.StatusUnprocessableEntity, "no QR code found in image", err))
		return
	case err != nil:
		writeJSONError(w, r, utils.Wrap(http.StatusUnprocessableEntity, "unreadable QR code content", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func readMultipartImage(r *http.Request, limit int64) ([]byte, error) {
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, err
	}
	f, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

type kindInfo struct {
	Kind     models.Kind    `json:"kind"`
	Label    string         `json:"label"`
	FileName string         `json:"file_name"`
	Fields   []mobile.Field `json:"fields"`
}

// KindsHandler lists every kind with its fields.
func (s *Server) KindsHandler(w http.ResponseWriter, r *http.Request) {
	out := make([]kindInfo, 0, len(models.Kinds))
	for _, k := range models.Kinds {
		out = append(out, kindInfo{Kind: k, Label: k.Label(), FileName: k.FileName(), Fields: mobile.Fields(k)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request) (*qrRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxUploadBytes)
	return decodeJSONRequest(r.Body)
}

// render formats and encodes req.
func (s *Server) render(req *qrRequest) (string, []byte, error) {
	fg, bg, err := s.colors(req.Foreground, req.Background)
	if err != nil {
		return "", nil, err
	}
	text, err := s.formatter.Format(req.Record)
	if err != nil {
		return "", nil, err
	}
	png, err := s.encoder.Encode(text, fg, bg)
	if err != nil {
		if errors.Is(err, qr.ErrPayloadTooLarge) {
			return "", nil, utils.Wrap(http.StatusRequestEntityTooLarge, "content is too long for a QR code", err)
		}
		return "", nil, utils.Wrap(http.StatusInternalServerError, "failed to render QR code", err)
	}
	return text, png, nil
}

func (s *Server) colors(fgHex, bgHex string) (color.Color, color.Color, error) {
	fg, err := qr.ParseColor(fgHex)
	if err != nil {
		return nil, nil, utils.Wrap(http.StatusBadRequest, "invalid foreground color", err)
	}
	bg, err := qr.ParseColor(bgHex)
	if err != nil {
		return nil, nil, utils.Wrap(http.StatusBadRequest, "invalid background color", err)
	}
	if fg == nil {
		fg = s.defaultFg
	}
	if bg == nil {
		bg = s.defaultBg
	}
	return fg, bg, nil
}

func (s *Server) newPage(k models.Kind) mobile.Page {
	return mobile.NewPage(k, qr.HexColor(s.defaultFg, "#000000"), qr.HexColor(s.defaultBg, "#ffffff"))
}

func (s *Server) errorPage(k models.Kind, msg string) mobile.Page {
	page := s.newPage(k)
	page.Error = msg
	return page
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page mobile.Page) {
	var buf bytes.Buffer
	if err := s.pages.Render(&buf, page); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("rendering page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writePNG(w http.ResponseWriter, kind models.Kind, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "attachment; filename="+kind.FileName())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError maps err to a status and JSON body. Incomplete input gets
// the form prompt and the missing field.
func writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	var inc *payload.IncompleteError
	if errors.As(err, &inc) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":   "incomplete",
			"field":   inc.Field,
			"message": payload.IncompletePrompt,
		})
		return
	}

	status := utils.StatusOf(err)
	l := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Msg("request failed")
	} else {
		l.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, map[string]string{"error": utils.MessageOf(err)})
}
