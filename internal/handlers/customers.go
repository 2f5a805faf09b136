package handlers

import (
	"net/http"
	"strconv"

	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customers *services.CustomerService
	spend     *services.SpendAggregator
	log       *zap.Logger
}

func NewCustomerHandler(customers *services.CustomerService, spend *services.SpendAggregator, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, spend: spend, log: log}
}

// List supports ?q= search, ?active=true|false and paging.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	f := services.CustomerFilter{Query: r.URL.Query().Get("q"), Page: page(r)}
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(w, r)
			return
		}
		f.Active = &active
	}
	items, total, err := h.customers.List(r.Context(), f)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset})
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CustomerInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.customers.Create(r.Context(), in)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch services.CustomerPatch
	if !decode(w, r, &patch) {
		return
	}
	c, err := h.customers.Update(r.Context(), id, patch)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// TotalSpent answers with the sum of the customer's accepted quotes.
func (h *CustomerHandler) TotalSpent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.customers.Get(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	total, err := h.spend.CustomerTotalSpent(r.Context(), id)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customer_id": id, "total_spent": total})
}
