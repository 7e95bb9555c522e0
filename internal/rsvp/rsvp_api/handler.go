package rsvp_api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rsvp-collector/internal/logger"
	"rsvp-collector/internal/models"
	"rsvp-collector/internal/qr"
	"rsvp-collector/internal/rsvp/render"
	"rsvp-collector/internal/rsvp/service"
	"rsvp-collector/internal/utils"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Service   *service.RSVPService
	Dashboard *render.Dashboard
	QR        *qr.Generator
	Logger    *logger.Logger
}

func NewHandler(svc *service.RSVPService, dashboard *render.Dashboard, qrGen *qr.Generator, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Handler{
		Service:   svc,
		Dashboard: dashboard,
		QR:        qrGen,
		Logger:    log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Route("/rsvp", func(r chi.Router) {
		r.Post("/", h.SubmitRSVP)
		r.Get("/", h.ListRSVPs)
		r.Get("/export", h.ExportCSV)
		r.Get("/export/html", h.ExportHTML)
		r.Get("/qr", h.InvitationQR)
	})
}

// SubmitRSVP stores one response.
// Expected body: {"name": "...", "email": "...", "attend": "yes|no", "msg": "..."}
func (h *Handler) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	var req models.RSVPRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		// A well-formed body with a field of the wrong type is a validation
		// failure, not a syntax one.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			utils.WriteError(w, http.StatusUnprocessableEntity, "Invalid RSVP", fmt.Sprintf("field %s has the wrong type", typeErr.Field))
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	id, err := h.Service.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			utils.WriteError(w, http.StatusUnprocessableEntity, "Invalid RSVP", err.Error())
			return
		}
		h.Logger.Error("RSVP", fmt.Sprintf("Failed to save rsvp: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save RSVP", "internal error")
		return
	}

	h.Logger.Debug("RSVP", fmt.Sprintf("Stored rsvp #%d", id))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("RSVP saved successfully"))
}

// ListRSVPs returns every response, newest first.
func (h *Handler) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.Logger.Error("RSVP", fmt.Sprintf("Failed to list rsvps: %v", err))
		http.Error(w, "Failed to list RSVPs", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, render.NewListResponse(rows))
}

// ExportCSV sends every response as a guests.csv attachment.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ExportAll(r.Context())
	if err != nil {
		h.Logger.Error("RSVP", fmt.Sprintf("Failed to export rsvps: %v", err))
		http.Error(w, "Failed to export RSVPs", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteCSV(&buf, rows); err != nil {
		h.Logger.Error("RSVP", fmt.Sprintf("Failed to encode csv: %v", err))
		http.Error(w, "Failed to export RSVPs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=guests.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ExportHTML renders the dashboard.
// Query params: q, attend, order, page, size. Bad values fall back to defaults.
func (h *Handler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	q := service.ParseDashboardQuery(r.URL.Query())

	page, err := h.Service.Dashboard(r.Context(), q)
	if err != nil {
		h.Logger.Error("RSVP", fmt.Sprintf("Failed to load dashboard: %v", err))
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.Dashboard.Render(&buf, page, r.Header.Get("Accept-Language")); err != nil {
		h.Logger.Error("RSVP", fmt.Sprintf("Failed to render dashboard: %v", err))
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// InvitationQR serves a PNG pointing at the public RSVP form.
func (h *Handler) InvitationQR(w http.ResponseWriter, r *http.Request) {
	if h.QR == nil {
		http.Error(w, "QR code not configured", http.StatusNotFound)
		return
	}
	png, err := h.QR.PNG()
	if err != nil {
		h.Logger.Error("QR", fmt.Sprintf("Failed to generate invitation QR: %v", err))
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Healthy(r.Context()); err != nil {
		h.Logger.Error("DATABASE", fmt.Sprintf("Health check failed: %v", err))
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
