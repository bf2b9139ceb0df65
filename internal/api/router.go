package api

import (
	"errors"
	"fmt"
	"image/color"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/harrylevesque/qrforge/internal/config"
	"github.com/harrylevesque/qrforge/internal/crypto"
	"github.com/harrylevesque/qrforge/internal/mobile"
	"github.com/harrylevesque/qrforge/internal/payload"
	"github.com/harrylevesque/qrforge/internal/qr"
)

// Server holds everything the handlers need. Handlers keep no per-request
// state on it.
type Server struct {
	cfg       *config.Config
	log       zerolog.Logger
	formatter payload.Formatter
	encoder   *qr.Encoder
	sealer    *crypto.Sealer
	pages     *mobile.Pages
	limiter   *clientLimiter

	defaultFg color.Color
	defaultBg color.Color
}

// NewServer wires the formatter, encoder and page templates from cfg.
func NewServer(cfg *config.Config, log zerolog.Logger, sealer *crypto.Sealer) (*Server, error) {
	if sealer == nil {
		return nil, errors.New("api: sealer is required")
	}
	pages, err := mobile.NewPages()
	if err != nil {
		return nil, fmt.Errorf("api: parsing templates: %w", err)
	}
	fg, err := qr.ParseColor(cfg.QR.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := qr.ParseColor(cfg.QR.Background)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:       cfg,
		log:       log,
		formatter: payload.Formatter{EscapeValues: cfg.QR.EscapeValues},
		encoder: qr.NewEncoder(qr.Options{
			ModulePixels:    cfg.QR.ModulePixels,
			DisableBorder:   cfg.QR.DisableBorder,
			MaxPayloadBytes: cfg.QR.MaxPayloadBytes,
		}),
		sealer:    sealer,
		pages:     pages,
		limiter:   newClientLimiter(cfg.Limits.RequestsPerSecond, cfg.Limits.Burst),
		defaultFg: fg,
		defaultBg: bg,
	}, nil
}

// NewRouter registers every route on a fresh mux router.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.accessLog, s.recoverer, s.rateLimit)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("health write failed")
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/", s.IndexHandler).Methods(http.MethodGet)
	r.HandleFunc("/index.html", s.IndexHandler).Methods(http.MethodGet)
	r.HandleFunc("/", s.GenerateFormHandler).Methods(http.MethodPost)
	r.HandleFunc("/download/{token}", s.DownloadHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/qr", s.QRHandler).Methods(http.MethodPost)
	api.HandleFunc("/payload", s.PayloadHandler).Methods(http.MethodPost)
	api.HandleFunc("/decode", s.DecodeHandler).Methods(http.MethodPost)
	api.HandleFunc("/kinds", s.KindsHandler).Methods(http.MethodGet)
	return r
}
