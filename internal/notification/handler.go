package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/invoice-management/internal/auth"
	"github.com/frahmantamala/invoice-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, caller auth.Caller, dto CreateNotificationDTO) (*Notification, error)
	MarkAsRead(ctx context.Context, caller auth.Caller, id string) (*Notification, error)
	MarkAllAsRead(ctx context.Context, caller auth.Caller) (int64, error)
	List(ctx context.Context, caller auth.Caller, unreadOnly bool, limit, offset int) (*ListResponse, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())
	limit, offset := h.Pagination(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	resp, err := h.Service.List(r.Context(), caller, unreadOnly, limit, offset)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	var dto CreateNotificationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Service.Create(r.Context(), caller, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	n, err := h.Service.MarkAsRead(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFromContext(r.Context())

	updated, err := h.Service.MarkAllAsRead(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MarkAllResponse{Updated: updated})
}
