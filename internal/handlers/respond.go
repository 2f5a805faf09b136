// Package handlers exposes the services over JSON HTTP endpoints.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/CodingDyl/virtec-crm/auth"
	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/i18n"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"go.uber.org/zap"
)

// fail maps a service error to a status code and a translated message.
func fail(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	lang := i18n.LangFrom(r.Context())
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusUnprocessableEntity, i18n.T(lang, "validation_failed"), i18n.TranslateAll(lang, ve.Violations))
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.JSONError(w, http.StatusUnprocessableEntity, i18n.T(lang, "invalid_transition"), map[string]string{"status": i18n.T(lang, "invalid_transition")})
	case errors.Is(err, services.ErrValidation):
		httpx.JSONError(w, http.StatusUnprocessableEntity, i18n.T(lang, "validation_failed"), nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, i18n.T(lang, "not_found"), nil)
	case errors.Is(err, services.ErrConcurrentModification):
		httpx.JSONError(w, http.StatusConflict, i18n.T(lang, "concurrent_update"), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.JSONError(w, http.StatusUnauthorized, i18n.T(lang, "invalid_credentials"), nil)
	case errors.Is(err, services.ErrExternalService):
		log.Error("dependent service failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONError(w, http.StatusBadGateway, i18n.T(lang, "external_service"), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn("request abandoned", zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONError(w, http.StatusServiceUnavailable, i18n.T(lang, "internal"), nil)
	default:
		log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, i18n.T(lang, "internal"), nil)
	}
}

func badRequest(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, http.StatusBadRequest, i18n.T(i18n.LangFrom(r.Context()), "bad_request"), nil)
}

// pathID reads a positive numeric path value. It answers 400 and returns
// false when the value is missing or malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(w, r)
		return 0, false
	}
	return uint(id), true
}

func queryUint(r *http.Request, name string) uint {
	v, _ := strconv.ParseUint(r.URL.Query().Get(name), 10, 64)
	return uint(v)
}

// page reads ?limit= and ?offset=, clamped the way the services apply them.
func page(r *http.Request) services.Page {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return services.Page{Limit: limit, Offset: offset}.Normalize()
}

// listResponse is the envelope for paged collections.
type listResponse struct {
	Items  any   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		badRequest(w, r)
		return false
	}
	return true
}

func currentUser(r *http.Request) *uint {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		return &uid
	}
	return nil
}
