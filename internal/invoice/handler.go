package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/frahmantamala/invoice-management/internal/auth"
	"github.com/frahmantamala/invoice-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateInvoice(ctx context.Context, caller auth.Caller, dto InvoiceDTO) (*Invoice, error)
	UpdateInvoice(ctx context.Context, caller auth.Caller, id string, dto InvoiceDTO) (*Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, caller auth.Caller, id string, dto UpdateStatusDTO) (*Invoice, error)
	GetInvoice(ctx context.Context, caller auth.Caller, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, caller auth.Caller, f ListFilter) (*ListResponse, error)
	ExportCSV(ctx context.Context, caller auth.Caller, f ListFilter) ([]byte, error)
	Summary(ctx context.Context, caller auth.Caller) (*Summary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	var dto InvoiceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.Service.CreateInvoice(r.Context(), caller, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, inv)
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	var dto InvoiceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.Service.UpdateInvoice(r.Context(), caller, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.Service.UpdateInvoiceStatus(r.Context(), caller, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	inv, err := h.Service.GetInvoice(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	f, err := ParseListQuery(r.URL.Query())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.ListInvoices(r.Context(), caller, f)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ExportInvoices(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	f, err := ParseListQuery(r.URL.Query())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	body, err := h.Service.ExportCSV(r.Context(), caller, f)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename(time.Now())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.Logger.Error("failed to write csv export", "error", err)
	}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	summary, err := h.Service.Summary(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}
