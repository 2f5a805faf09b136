package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/i18n"
	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"go.uber.org/zap"
)

type AgreementHandler struct {
	agreements *services.AgreementService
	maxUpload  int64
	log        *zap.Logger
}

func NewAgreementHandler(agreements *services.AgreementService, maxUpload int64, log *zap.Logger) *AgreementHandler {
	return &AgreementHandler{agreements: agreements, maxUpload: maxUpload, log: log}
}

func (h *AgreementHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var t services.AgreementTerms
	if !decode(w, r, &t) {
		return
	}
	t.CreatedBy = currentUser(r)
	p, err := h.agreements.Generate(r.Context(), id, t)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *AgreementHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.agreements.Review(r.Context(), id, models.AgreementStatus(req.Status), req.Version)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// UploadSigned takes a multipart form with a "file" part and an optional
// "version" field.
func (h *AgreementHandler) UploadSigned(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lang := i18n.LangFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, i18n.T(lang, "file_too_large"), nil)
			return
		}
		badRequest(w, r)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, i18n.T(lang, "validation_failed"), map[string]string{"file": i18n.T(lang, "required")})
		return
	}
	defer file.Close()
	if header.Size > h.maxUpload {
		httpx.JSONError(w, http.StatusRequestEntityTooLarge, i18n.T(lang, "file_too_large"), nil)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, r)
		return
	}
	var version uint64
	if v := r.FormValue("version"); v != "" {
		if version, err = strconv.ParseUint(v, 10, 64); err != nil {
			badRequest(w, r)
			return
		}
	}

	p, err := h.agreements.UploadSigned(r.Context(), id, services.SignedUpload{
		Filename:   header.Filename,
		Data:       data,
		Version:    uint(version),
		UploadedBy: currentUser(r),
	})
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete accepts an optional ?version= guard.
func (h *AgreementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.agreements.Delete(r.Context(), id, queryUint(r, "version"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *AgreementHandler) Document(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	meta, data, err := h.agreements.Document(r.Context(), id)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeDocument(w, meta, data)
}
