package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kiesman99/backdrop/internal/api"
	"github.com/kiesman99/backdrop/internal/palette"
	"github.com/kiesman99/backdrop/internal/render"
	"github.com/kiesman99/backdrop/pkg/tile"
)

const (
	maxImageURLs     = 64
	defaultSuggest   = 5
	maxSuggestColors = 16
)

// Options configures a Server
type Options struct {
	// Source loads the images named in requests. Defaults to a tile.Processor.
	Source render.Source
	// Cache is shared by every request.
	Cache  *render.Cache
	Logger logrus.FieldLogger
}

// Server implements the ServerInterface from the API package
type Server struct {
	startTime time.Time
	version   string
	source    render.Source
	cache     *render.Cache
	log       logrus.FieldLogger
}

// NewServer creates a new server instance
func NewServer(version string, opts Options) (*Server, error) {
	if opts.Source == nil {
		opts.Source = tile.NewProcessor("", nil)
	}
	if opts.Cache == nil {
		c, err := render.NewCache(render.DefaultCacheBytes)
		if err != nil {
			return nil, err
		}
		opts.Cache = c
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}

	return &Server{
		startTime: time.Now(),
		version:   version,
		source:    opts.Source,
		cache:     opts.Cache,
		log:       opts.Logger,
	}, nil
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	s.writeJSON(w, http.StatusOK, response)
}

// CreateRender renders one tiled background and returns it as PNG
func (s *Server) CreateRender(w http.ResponseWriter, r *http.Request, params api.CreateRenderParams) {
	requestID := uuid.NewString()
	log := s.log.WithField("request_id", requestID)

	var req api.CreateRenderJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	cfg, problems := layoutFromRequest(&req)
	if len(problems) > 0 {
		s.writeValidationErrorResponse(w, problems, &requestID)
		return
	}

	rnd, err := render.New(render.Options{
		Source: s.source,
		Cache:  s.cache,
		Logger: log,
		Seed:   params.Seed,
	})
	if err != nil {
		s.handleRenderError(w, err, &requestID)
		return
	}

	res, err := rnd.Render(r.Context(), cfg)
	if err != nil {
		s.handleRenderError(w, err, &requestID)
		return
	}

	var out bytes.Buffer
	if err := rnd.Export(&out); err != nil {
		s.handleRenderError(w, err, &requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("X-Tiles-Drawn", strconv.Itoa(res.Stats.Filled))
	w.Header().Set("X-Load-Failures", strconv.Itoa(res.Failed()))
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Bytes()); err != nil {
		log.WithError(err).Error("Error writing response")
	}
}

// ListPalettes returns the built-in background presets
func (s *Server) ListPalettes(w http.ResponseWriter, r *http.Request) {
	presets := palette.Presets()
	out := api.PaletteList{Palettes: make([]api.Palette, len(presets))}
	for i, p := range presets {
		out.Palettes[i] = api.Palette{Name: p.Name, Color: p.Color, Description: p.Description}
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetPalette returns a single preset by name
func (s *Server) GetPalette(w http.ResponseWriter, r *http.Request, name string) {
	p, ok := palette.Lookup(name)
	if !ok {
		s.writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND",
			fmt.Sprintf("No palette named %q", name), nil, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, api.Palette{Name: p.Name, Color: p.Color, Description: p.Description})
}

// SuggestPalette samples the given images and proposes background colors
func (s *Server) SuggestPalette(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := s.log.WithField("request_id", requestID)

	var req api.SuggestPaletteJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	var problems []fieldError
	problems = append(problems, checkURLs(req.ImageUrls, true)...)

	count := defaultSuggest
	if req.Count != nil {
		count = *req.Count
	}
	if count < 1 || count > maxSuggestColors {
		problems = append(problems, fieldError{"count", fmt.Sprintf("count must be between 1 and %d", maxSuggestColors)})
	}

	method := palette.MethodDominantColor
	if req.Method != nil {
		m, err := palette.ParseMethod(string(*req.Method))
		if err != nil {
			problems = append(problems, fieldError{"method", err.Error()})
		}
		method = m
	}
	if len(problems) > 0 {
		s.writeValidationErrorResponse(w, problems, &requestID)
		return
	}

	loaded, errs := s.cache.LoadAll(r.Context(), s.source, req.ImageUrls, 0)
	var sources []*tile.SourceImage
	var failed []string
	for i, img := range loaded {
		if errs[i] != nil {
			log.WithError(errs[i]).WithField("url", req.ImageUrls[i]).Warn("Skipping source image")
			failed = append(failed, req.ImageUrls[i])
			continue
		}
		sources = append(sources, img)
	}

	suggestion, err := palette.Suggest(sources, count, method)
	if err != nil {
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "NO_COLORS",
			err.Error(), &requestID, map[string]interface{}{"failed_urls": failed})
		return
	}

	resp := api.SuggestResponse{
		Background: suggestion.Background.String(),
		Tint:       tile.DeriveTint(suggestion.Background).String(),
		Swatches:   make([]api.Swatch, len(suggestion.Swatches)),
	}
	for i, sw := range suggestion.Swatches {
		resp.Swatches[i] = api.Swatch{Color: sw.Color.String(), Weight: sw.Weight}
	}
	if len(failed) > 0 {
		resp.FailedUrls = &failed
	}

	w.Header().Set("X-Request-ID", requestID)
	s.writeJSON(w, http.StatusOK, resp)
}

type fieldError struct {
	field   string
	message string
}

// layoutFromRequest overlays the request on the default layout and
// collects every validation problem
func layoutFromRequest(req *api.RenderRequest) (tile.LayoutConfig, []fieldError) {
	cfg := tile.DefaultLayout()
	var problems []fieldError

	if req.Palette != nil {
		if p, ok := palette.Lookup(*req.Palette); ok {
			cfg.BackgroundColor = p.Color
		} else {
			problems = append(problems, fieldError{"palette", fmt.Sprintf("unknown palette %q", *req.Palette)})
		}
	}
	if req.BackgroundColor != nil {
		cfg.BackgroundColor = *req.BackgroundColor
	}
	if req.GridSize != nil {
		cfg.GridSize = *req.GridSize
	}
	if req.Density != nil {
		cfg.Density = *req.Density
	}
	if req.TilePixelScale != nil {
		cfg.TilePixelScale = *req.TilePixelScale
	}
	if req.Spacing != nil {
		cfg.Spacing = *req.Spacing
	}
	if req.RowOffsetPercent != nil {
		cfg.RowOffsetPercent = *req.RowOffsetPercent
	}
	if req.EmbossIntensity != nil {
		cfg.EmbossIntensity = *req.EmbossIntensity
	}
	if req.EmbossDirection != nil {
		cfg.EmbossDirection = *req.EmbossDirection
	}
	if req.EmbossDepth != nil {
		cfg.EmbossDepth = *req.EmbossDepth
	}
	cfg.ImageURLs = req.ImageUrls

	problems = append(problems, checkURLs(req.ImageUrls, false)...)

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		for _, e := range unjoin(err) {
			problems = append(problems, fieldError{"layout", e.Error()})
		}
	}

	return cfg, problems
}

// checkURLs only accepts remote images; the server never reads local files
func checkURLs(urls []string, required bool) []fieldError {
	var problems []fieldError
	if required && len(urls) == 0 {
		problems = append(problems, fieldError{"image_urls", "at least one image url is required"})
	}
	if len(urls) > maxImageURLs {
		problems = append(problems, fieldError{"image_urls", fmt.Sprintf("at most %d image urls are allowed", maxImageURLs)})
	}
	for i, raw := range urls {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fieldError{fmt.Sprintf("image_urls[%d]", i), "must be an http or https url"})
		}
	}
	return problems
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// handleRenderError maps render failures onto API error responses
func (s *Server) handleRenderError(w http.ResponseWriter, err error, requestID *string) {
	switch {
	case errors.Is(err, render.ErrEmptyExport):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "EMPTY_EXPORT",
			"Nothing to export", requestID, nil)
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "RENDER_TIMEOUT",
			"Render timed out", requestID, nil)
	case errors.Is(err, context.Canceled):
		// client went away
		s.log.WithField("request_id", *requestID).Debug("Render cancelled")
	default:
		s.log.WithError(err).WithField("request_id", *requestID).Error("Render failed")
		s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Internal server error", requestID, nil)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("Error encoding response")
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	s.writeJSON(w, statusCode, response)
}

// writeValidationErrorResponse writes a validation error response
func (s *Server) writeValidationErrorResponse(w http.ResponseWriter, problems []fieldError, requestID *string) {
	response := api.ValidationErrorResponse{
		Error:     api.VALIDATIONERROR,
		Message:   problems[0].message,
		RequestId: requestID,
		ValidationErrors: make([]struct {
			Code    *string `json:"code,omitempty"`
			Field   string  `json:"field"`
			Message string  `json:"message"`
		}, len(problems)),
	}
	for i, p := range problems {
		response.ValidationErrors[i].Field = p.field
		response.ValidationErrors[i].Message = p.message
	}

	s.writeJSON(w, http.StatusBadRequest, response)
}
