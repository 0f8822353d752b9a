package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/diewo77/go-pis/httpx"
	"github.com/diewo77/go-pis/i18n"
	"github.com/diewo77/go-pis/internal/models"
	"github.com/diewo77/go-pis/internal/services"
	"github.com/diewo77/go-pis/validation"
)

// PIService is what the handler needs from the service layer.
type PIService interface {
	ByOrderNumber(ctx context.Context, number, taxID string) ([]models.PI, error)
	ByParentOrder(ctx context.Context, parent string) ([]models.PI, error)
	Search(ctx context.Context, q services.SearchQuery) ([]models.PI, error)
	PatchOperational(ctx context.Context, id uint, patch models.OperationalPatch) (*models.PI, error)
}

type PIHandler struct {
	svc      PIService
	log      *zap.Logger
	decoder  *form.Decoder
	validate *validator.Validate
}

func NewPIHandler(svc PIService, log *zap.Logger) *PIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PIHandler{
		svc:      svc,
		log:      log,
		decoder:  validation.NewDecoder(),
		validate: validation.NewValidator(),
	}
}

// Register mounts the PI endpoints on mux.
func (h *PIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /pi/{numero_pi}", h.ByOrderNumber)
	mux.HandleFunc("GET /pi-matriz/{numero_matriz}", h.ByParentOrder)
	mux.HandleFunc("GET /pis/search", h.Search)
	mux.HandleFunc("PATCH /pi/{id}", h.Patch)
}

func (h *PIHandler) ByOrderNumber(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("numero_pi")
	if !h.required(w, "numero_pi", number) {
		return
	}
	pis, err := h.svc.ByOrderNumber(r.Context(), number, r.URL.Query().Get("cnpj"))
	if err != nil {
		h.fail(w, r, err, "pi_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, pis)
}

func (h *PIHandler) ByParentOrder(w http.ResponseWriter, r *http.Request) {
	parent := r.PathValue("numero_matriz")
	if !h.required(w, "numero_matriz", parent) {
		return
	}
	pis, err := h.svc.ByParentOrder(r.Context(), parent)
	if err != nil {
		h.fail(w, r, err, "pi_matriz_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, pis)
}

func (h *PIHandler) Search(w http.ResponseWriter, r *http.Request) {
	var q services.SearchQuery
	v := make(validation.Violations)
	if err := validation.FromDecoder(h.decoder.Decode(&q, r.URL.Query()), v); err != nil {
		h.badRequest(w, r, "validation_failed")
		return
	}
	if err := validation.FromValidator(h.validate.Struct(q), v); err != nil {
		h.fail(w, r, err, "")
		return
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	pis, err := h.svc.Search(r.Context(), q)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, pis)
}

func (h *PIHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		h.badRequest(w, r, "invalid_id")
		return
	}

	var patch models.OperationalPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		h.badRequest(w, r, "invalid_body")
		return
	}

	pi, err := h.svc.PatchOperational(r.Context(), uint(id), patch)
	if err != nil {
		h.fail(w, r, err, "record_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, pi)
}

// required answers 422 when a path value is blank.
func (h *PIHandler) required(w http.ResponseWriter, field, value string) bool {
	v := make(validation.Violations)
	validation.Required(field, value, v)
	if v.Empty() {
		return true
	}
	httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
	return false
}

func (h *PIHandler) badRequest(w http.ResponseWriter, r *http.Request, code string) {
	lang := i18n.LangFrom(r.Context())
	httpx.JSONErrorDetail(w, http.StatusBadRequest, code, i18n.T(lang, code))
}

// fail maps services.ErrNotFound to a 404 carrying notFoundCode's message, and anything else to a 500.
func (h *PIHandler) fail(w http.ResponseWriter, r *http.Request, err error, notFoundCode string) {
	lang := i18n.LangFrom(r.Context())
	if errors.Is(err, services.ErrNotFound) && notFoundCode != "" {
		httpx.JSONErrorDetail(w, http.StatusNotFound, "not_found", i18n.T(lang, notFoundCode))
		return
	}
	h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	httpx.JSONErrorDetail(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, "internal_error"))
}
