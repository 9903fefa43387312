package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"activity_service/internal/domain/model"
)

const maxBodyBytes = 1 << 20

// Recommender is the part of core.RecommendationService the handlers need.
type Recommender interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error)
	Windows(ctx context.Context, req model.WindowsRequest) (*model.WindowsResult, error)
	ClassifyTags(tags map[string]string) model.ClassifiedAttributes
}

type Handler struct {
	service  Recommender
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewHandler(service Recommender, logger zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

type SearchRequest struct {
	Address       string   `json:"address" validate:"max=256"`
	Lat           *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lon           *float64 `json:"lon" validate:"omitempty,min=-180,max=180"`
	RadiusKm      float64  `json:"radius_km" validate:"min=0"`
	Timezone      string   `json:"timezone" validate:"max=64"`
	Sensitivities []string `json:"sensitivities" validate:"max=16,dive,required"`
	Include       []string `json:"include" validate:"max=32,dive,required,max=64"`
	Exclude       []string `json:"exclude" validate:"max=32,dive,required,max=64"`
	Limit         int      `json:"limit" validate:"min=0,max=1000"`
}

type WindowsRequest struct {
	Lat           *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon           *float64 `json:"lon" validate:"required,min=-180,max=180"`
	Timezone      string   `json:"timezone" validate:"max=64"`
	Sensitivities []string `json:"sensitivities" validate:"max=16,dive,required"`
}

type ClassifyRequest struct {
	Tags map[string]string `json:"tags" validate:"required"`
}

type SensitivityInfo struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type CatalogResponse struct {
	Sensitivities []SensitivityInfo `json:"sensitivities"`
	Activities    []string          `json:"activities"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	active, err := model.ParseSensitivitySet(req.Sensitivities)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err))
		return
	}
	if err := validateActivities(req.Include, req.Exclude); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.Search(r.Context(), model.SearchRequest{
		Address:       req.Address,
		Lat:           req.Lat,
		Lon:           req.Lon,
		RadiusKm:      req.RadiusKm,
		Timezone:      req.Timezone,
		Sensitivities: active,
		Include:       req.Include,
		Exclude:       req.Exclude,
		Limit:         req.Limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Windows(w http.ResponseWriter, r *http.Request) {
	var req WindowsRequest
	if !h.decode(w, r, &req) {
		return
	}

	active, err := model.ParseSensitivitySet(req.Sensitivities)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err))
		return
	}

	result, err := h.service.Windows(r.Context(), model.WindowsRequest{
		Lat:           *req.Lat,
		Lon:           *req.Lon,
		Timezone:      req.Timezone,
		Sensitivities: active,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.service.ClassifyTags(req.Tags))
}

func (h *Handler) Catalog(w http.ResponseWriter, _ *http.Request) {
	resp := CatalogResponse{Activities: model.AllActivities}
	for _, s := range model.AllSensitivities {
		resp.Sensitivities = append(resp.Sensitivities, SensitivityInfo{Code: string(s), Label: s.Label()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads and validates a JSON body, writing a 400 response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func validateActivities(lists ...[]string) error {
	known := make(map[string]bool, len(model.AllActivities))
	for _, a := range model.AllActivities {
		known[a] = true
	}
	for _, list := range lists {
		for _, a := range list {
			if !known[a] {
				return fmt.Errorf("%w: unknown activity %q", model.ErrInvalidRequest, a)
			}
		}
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidRequest), errors.Is(err, model.ErrInvalidCoordinates):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrLocationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrProviderUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	event := h.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
