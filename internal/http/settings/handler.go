package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
)

type Handler struct {
	svc *settings.Service
}

func NewHandler(svc *settings.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Get("/payment-methods", h.paymentMethods)
}

type methodResponse struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	TaxRateBps int64  `json:"tax_rate_bps"`
}

type settingsResponse struct {
	BusinessName    string           `json:"business_name"`
	BusinessPhone   string           `json:"business_phone,omitempty"`
	BusinessAddress string           `json:"business_address,omitempty"`
	Methods         []methodResponse `json:"payment_methods"`
}

func toMethods(methods []settings.PaymentMethod) []methodResponse {
	out := make([]methodResponse, 0, len(methods))
	for _, m := range methods {
		out = append(out, methodResponse{ID: m.ID, Label: m.Label, TaxRateBps: m.TaxRateBps})
	}

	return out
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := settingsResponse{
		BusinessName:    cfg.BusinessName,
		BusinessPhone:   cfg.BusinessPhone,
		BusinessAddress: cfg.BusinessAddress,
		Methods:         toMethods(cfg.Methods),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) paymentMethods(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toMethods(cfg.Methods)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
