package settings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/invoice-management/internal/auth"
	"github.com/frahmantamala/invoice-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	UpsertPaymentSchedule(ctx context.Context, caller auth.Caller, id string, dto PaymentScheduleDTO) (*PaymentSchedule, error)
	UpsertDeadlineSetting(ctx context.Context, caller auth.Caller, id string, dto DeadlineSettingDTO) (*DeadlineSetting, error)
	ListPaymentSchedules(ctx context.Context, caller auth.Caller) ([]*PaymentSchedule, error)
	ListDeadlineSettings(ctx context.Context, caller auth.Caller) ([]*DeadlineSetting, error)
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

func (h *Handler) ListPaymentSchedules(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	schedules, err := h.Service.ListPaymentSchedules(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"payment_schedules": schedules})
}

func (h *Handler) CreatePaymentSchedule(w http.ResponseWriter, r *http.Request) {
	h.savePaymentSchedule(w, r, "", http.StatusCreated)
}

func (h *Handler) UpdatePaymentSchedule(w http.ResponseWriter, r *http.Request) {
	h.savePaymentSchedule(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) savePaymentSchedule(w http.ResponseWriter, r *http.Request, id string, status int) {
	caller, _ := auth.CallerFromContext(r.Context())

	var dto PaymentScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	schedule, err := h.Service.UpsertPaymentSchedule(r.Context(), caller, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, status, schedule)
}

func (h *Handler) ListDeadlineSettings(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	deadlines, err := h.Service.ListDeadlineSettings(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"deadlines": deadlines})
}

func (h *Handler) CreateDeadlineSetting(w http.ResponseWriter, r *http.Request) {
	h.saveDeadlineSetting(w, r, "", http.StatusCreated)
}

func (h *Handler) UpdateDeadlineSetting(w http.ResponseWriter, r *http.Request) {
	h.saveDeadlineSetting(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) saveDeadlineSetting(w http.ResponseWriter, r *http.Request, id string, status int) {
	caller, _ := auth.CallerFromContext(r.Context())

	var dto DeadlineSettingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	setting, err := h.Service.UpsertDeadlineSetting(r.Context(), caller, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, status, setting)
}
