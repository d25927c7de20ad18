package handler

import (
	"encoding/json"
	"net/http"

	"optika/internal/model"
	"optika/internal/service"

	"github.com/rs/zerolog"
)

// AppointmentHandler handles appointment-related HTTP requests.
type AppointmentHandler struct {
	service service.AppointmentService
	logger  zerolog.Logger
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(service service.AppointmentService, logger zerolog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		logger:  logger.With().Str("handler", "appointment").Logger(),
	}
}

// Slots handles GET /api/appointments/slots?date=YYYY-MM-DD requests.
func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidRequest, "method not allowed", h.logger)
		return
	}

	date, err := model.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "date query parameter must be YYYY-MM-DD", h.logger)
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), date)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":  date.Format(model.DateLayout),
		"slots": slots,
	})
}

// Book handles POST /api/appointments requests.
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidRequest, "method not allowed", h.logger)
		return
	}

	var req model.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid request body", h.logger)
		return
	}

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// GetByID handles GET /api/appointments/{id} requests.
func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/appointments")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid appointment id", h.logger)
		return
	}

	appt, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// UpdateStatus handles PATCH /api/appointments/{id}/status requests.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/appointments")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid appointment id", h.logger)
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid request body", h.logger)
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// Update handles PUT /api/appointments/{id} requests.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/appointments")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid appointment id", h.logger)
		return
	}

	var req model.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid request body", h.logger)
		return
	}

	appt, err := h.service.UpdateDetails(r.Context(), id, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// Complete handles POST /api/appointments/{id}/complete requests.
func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/appointments")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid appointment id", h.logger)
		return
	}

	var req model.CompleteAppointmentRequest
	if r.Body != nil {
		// An empty body is fine; completion notes are optional.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	appt, err := h.service.Complete(r.Context(), id, req.Notes)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}
