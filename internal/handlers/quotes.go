package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/internal/pricing"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quotes *services.QuoteService
	log    *zap.Logger
}

func NewQuoteHandler(quotes *services.QuoteService, log *zap.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, log: log}
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	f := services.QuoteFilter{
		ClientID:  queryUint(r, "client_id"),
		ProjectID: queryUint(r, "project_id"),
		Status:    models.QuoteStatus(r.URL.Query().Get("status")),
		Page:      page(r),
	}
	items, total, err := h.quotes.List(r.Context(), f)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset})
}

// Create prices and stores a quote, answering 201 with the new record.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateQuoteInput
	if !decode(w, r, &in) {
		return
	}
	in.CreatedBy = currentUser(r)
	q, err := h.quotes.Create(r.Context(), in)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/quotes/%d", q.ID))
	httpx.JSON(w, http.StatusCreated, q)
}

// Price previews a total without storing anything.
func (h *QuoteHandler) Price(w http.ResponseWriter, r *http.Request) {
	var req pricing.Request
	if !decode(w, r, &req) {
		return
	}
	b, err := h.quotes.Price(req)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

type statusRequest struct {
	Status  string `json:"status"`
	Version uint   `json:"version"`
}

func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := h.quotes.UpdateStatus(r.Context(), id, models.QuoteStatus(req.Status), req.Version)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.quotes.Delete(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	meta, data, err := h.quotes.PDF(r.Context(), id)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeDocument(w, meta, data)
}

// Features lists the add-ons a quote may include.
func (h *QuoteHandler) Features(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, pricing.Features())
}

func writeDocument(w http.ResponseWriter, meta *models.Artifact, data []byte) {
	mime := meta.MimeType
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", meta.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
