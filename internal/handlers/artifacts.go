package handlers

import (
	"errors"
	"net/http"

	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/i18n"
	"github.com/CodingDyl/virtec-crm/internal/artifact"
	"go.uber.org/zap"
)

// ArtifactHandler serves stored documents by key. The links it answers are
// the pdf_url and signed_agreement_url values handed out by the services.
type ArtifactHandler struct {
	store artifact.Store
	log   *zap.Logger
}

func NewArtifactHandler(store artifact.Store, log *zap.Logger) *ArtifactHandler {
	return &ArtifactHandler{store: store, log: log}
}

func (h *ArtifactHandler) Download(w http.ResponseWriter, r *http.Request) {
	meta, data, err := h.store.Open(r.Context(), r.PathValue("key"))
	if errors.Is(err, artifact.ErrNotFound) || errors.Is(err, artifact.ErrInvalidKey) {
		httpx.JSONError(w, http.StatusNotFound, i18n.T(i18n.LangFrom(r.Context()), "not_found"), nil)
		return
	}
	if err != nil {
		h.log.Error("open artifact", zap.String("key", r.PathValue("key")), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, i18n.T(i18n.LangFrom(r.Context()), "internal"), nil)
		return
	}
	writeDocument(w, meta, data)
}
