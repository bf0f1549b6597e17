package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easymotion-api/internal/application/subscription"
	"github.com/easymotion-api/internal/domain"
	"github.com/easymotion-api/internal/transport/http/middleware"
)

type SubscriptionHandler struct {
	svc subscription.Service
}

func NewSubscriptionHandler(svc subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// Subscribe enrolls the caller in the course from the URL.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	sub, err := h.svc.Subscribe(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	if err := h.svc.Unsubscribe(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "unsubscribed"})
}

// ListByCourse shows a course's roster to admins only; the router guards it.
func (h *SubscriptionHandler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	limit, cursor := parsePage(r)
	subs, next, err := h.svc.ListByCourse(r.Context(), chi.URLParam(r, "id"), limit, cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: subs, NextCursor: next})
}

// ListMine returns the caller's own enrollments. An admin may pass
// ?user_id= to inspect someone else's.
func (h *SubscriptionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	userID := claims.UserID
	if other := r.URL.Query().Get("user_id"); other != "" && claims.Role == domain.RoleAdmin {
		userID = other
	}
	limit, cursor := parsePage(r)
	subs, next, err := h.svc.ListByUser(r.Context(), userID, limit, cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: subs, NextCursor: next})
}
