package handler

import (
	"net/http"
	"strings"

	"lockrent/internal/rentals/service"
	apperrors "lockrent/pkg/errors"
	httputil "lockrent/pkg/http"
	"lockrent/pkg/logger"
	"lockrent/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RentalHandler struct {
	service      service.RentalService
	userIDHeader string
	log          *logger.Logger
}

func NewRentalHandler(service service.RentalService, userIDHeader string, log *logger.Logger) *RentalHandler {
	return &RentalHandler{
		service:      service,
		userIDHeader: userIDHeader,
		log:          log,
	}
}

// userID returns the caller identity placed on the request by the
// authenticating gateway.
func (h *RentalHandler) userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(h.userIDHeader))
	if id == "" {
		return "", apperrors.Unauthorized("Missing " + h.userIDHeader + " header")
	}
	return id, nil
}

func (h *RentalHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RentalHandler) EndRental(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := h.userID(r)
	if err != nil {
		h.writeError(w, "EndRental", err)
		return
	}

	result, err := h.service.EndRental(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "EndRental", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "EndRental", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) GetLockStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := h.userID(r)
	if err != nil {
		h.writeError(w, "GetLockStatus", err)
		return
	}

	lockID := ps.ByName("id")
	status, err := h.service.GetLockStatus(r.Context(), userID, lockID)
	if err != nil {
		h.writeError(w, "GetLockStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.LockStatusResponse{LockID: lockID, Status: status}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetLockStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := h.userID(r)
	if err != nil {
		h.writeError(w, "ListRentals", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListRentals", err)
		return
	}

	rentals, total, err := h.service.ListRentals(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, "ListRentals", err)
		return
	}

	if err := httputil.WritePaginated(w, rentals, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListRentals", "operation", "WritePaginated", "error", err)
	}
}

func (h *RentalHandler) RetireLock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lockID := ps.ByName("id")
	mode, err := h.service.RetireLock(r.Context(), lockID)
	if err != nil {
		h.writeError(w, "RetireLock", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.RetireLockResponse{LockID: lockID, Mode: mode}); err != nil {
		h.log.Error("failed to write success response", "handler", "RetireLock", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/locks/:id/end-rental", h.EndRental)
	router.GET("/api/v1/locks/:id/status", h.GetLockStatus)
	router.POST("/api/v1/locks/:id/retire", h.RetireLock)
	router.GET("/api/v1/rentals", h.ListRentals)
}
