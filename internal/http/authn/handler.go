package authn

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/auth"
)

// Handler exchanges the shared workshop PIN for a bearer token. There is no
// per-staff credential store; the token carries the name the staff member
// logged in with so invoices can record who did the work.
type Handler struct {
	tokens *auth.Tokens
	pin    string
}

func NewHandler(tokens *auth.Tokens, pin string) *Handler {
	return &Handler{tokens: tokens, pin: pin}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
}

type loginRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if h.pin == "" || subtle.ConstantTimeCompare([]byte(req.PIN), []byte(h.pin)) != 1 {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Issue(uuid.NewString(), name)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(loginResponse{Token: token}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
