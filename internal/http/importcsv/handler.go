package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/garagedesk/internal/pricelist"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc *pricelist.Service
}

func NewHandler(svc *pricelist.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importPriceList)
}

// importPriceList accepts a multipart upload: "file" carries the supplier
// sheet, "format" picks the parser and defaults to generic.
func (h *Handler) importPriceList(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := pricelist.Format(r.FormValue("format"))
	if format == "" {
		format = pricelist.FormatGeneric
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	summary, err := h.svc.Import(r.Context(), format, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(summary); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
