package handler

import (
	"net/http"

	"parkspot/internal/bookings/service"
	apperrors "parkspot/pkg/errors"
	httputil "parkspot/pkg/http"
	"parkspot/pkg/logger"
	"parkspot/pkg/middleware"
	"parkspot/pkg/model"
)

// Middleware wraps a single route. A nil Middleware leaves the route as is.
type Middleware func(http.Handler) http.Handler

type BookingHandler struct {
	service     service.BookingService
	log         *logger.Logger
	auth        Middleware
	idempotency Middleware
}

// NewBookingHandler builds the /api/bookings routes. auth guards every route
// except the public slots listing; idempotency only wraps creation.
func NewBookingHandler(service service.BookingService, log *logger.Logger, auth, idempotency Middleware) *BookingHandler {
	return &BookingHandler{
		service:     service,
		log:         log,
		auth:        auth,
		idempotency: idempotency,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r, "Create")
	if !ok {
		return
	}

	var req model.CreateBookingRequest
	if err := httputil.DecodeJSONBody(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), requester, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r, "ListMine")
	if !ok {
		return
	}

	bookings, err := h.service.ListForDriver(r.Context(), requester)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r, "GetByID")
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), requester, r.PathValue("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r, "Cancel")
	if !ok {
		return
	}

	booking, err := h.service.Cancel(r.Context(), requester, r.PathValue("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

// SpotSlots is public: anyone browsing a spot may see when it is taken.
func (h *BookingHandler) SpotSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.ListBookedAndSuggestedSlots(r.Context(), r.PathValue("spotId"))
	if err != nil {
		h.writeError(w, "SpotSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "SpotSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/bookings", h.protect(wrap(h.idempotency, http.HandlerFunc(h.Create))))
	mux.Handle("GET /api/bookings/me", h.protect(http.HandlerFunc(h.ListMine)))
	mux.Handle("GET /api/bookings/{id}", h.protect(http.HandlerFunc(h.GetByID)))
	mux.Handle("PUT /api/bookings/{id}/cancel", h.protect(http.HandlerFunc(h.Cancel)))
	mux.HandleFunc("GET /api/bookings/spot/{spotId}", h.SpotSlots)
}

func (h *BookingHandler) protect(next http.Handler) http.Handler {
	return wrap(h.auth, next)
}

func wrap(mw Middleware, next http.Handler) http.Handler {
	if mw == nil {
		return next
	}
	return mw(next)
}

func (h *BookingHandler) requester(w http.ResponseWriter, r *http.Request, handler string) (model.Requester, bool) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok || requester.UserID == "" {
		h.writeError(w, handler, apperrors.Unauthorized("Not authorized, no token"))
		return model.Requester{}, false
	}
	return requester, true
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
