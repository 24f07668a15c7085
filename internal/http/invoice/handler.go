package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/customer"
	"github.com/MrJamesThe3rd/garagedesk/internal/document"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/pricing"
	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
)

type Handler struct {
	svc       *invoice.Service
	customers *customer.Service
	settings  *settings.Service
	renderer  document.Renderer
}

func NewHandler(svc *invoice.Service, customers *customer.Service, cfg *settings.Service, renderer document.Renderer) *Handler {
	return &Handler{
		svc:       svc,
		customers: customers,
		settings:  cfg,
		renderer:  renderer,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Get("/{id}/document", h.renderDocument)
}

type itemDTO struct {
	Description     string     `json:"description"`
	Quantity        int64      `json:"quantity"`
	Price           int64      `json:"price"`
	CatalogItemID   *uuid.UUID `json:"catalog_item_id,omitempty"`
	InventoryItemID *uuid.UUID `json:"inventory_item_id,omitempty"`
}

type vehicleDTO struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Year    int    `json:"year,omitempty"`
	PlateNo string `json:"plate_no,omitempty"`
}

type discountDTO struct {
	Kind  pricing.DiscountKind `json:"kind"`
	Value int64                `json:"value"`
}

type invoiceRequest struct {
	CustomerID    uuid.UUID    `json:"customer_id"`
	Vehicle       *vehicleDTO  `json:"vehicle,omitempty"`
	Items         []itemDTO    `json:"items"`
	Discount      *discountDTO `json:"discount,omitempty"`
	Status        string       `json:"status"`
	PaymentMethod *string      `json:"payment_method,omitempty"`
	Technician    string       `json:"technician"`
	Supervisor    string       `json:"supervisor"`
	Notes         string       `json:"notes"`
	Terms         string       `json:"terms"`
	Date          time.Time    `json:"date"`
}

type invoiceResponse struct {
	ID            uuid.UUID   `json:"id"`
	CustomerID    uuid.UUID   `json:"customer_id"`
	Vehicle       *vehicleDTO `json:"vehicle,omitempty"`
	Items         []itemDTO   `json:"items"`
	Subtotal      int64       `json:"subtotal"`
	Discount      int64       `json:"discount"`
	Tax           int64       `json:"tax"`
	Total         int64       `json:"total"`
	Status        string      `json:"status"`
	PaymentMethod *string     `json:"payment_method,omitempty"`
	Draft         bool        `json:"draft"`
	Technician    string      `json:"technician,omitempty"`
	Supervisor    string      `json:"supervisor,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	Terms         string      `json:"terms,omitempty"`
	Date          time.Time   `json:"date"`
	CreatedAt     time.Time   `json:"created_at"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:            inv.ID,
		CustomerID:    inv.CustomerID,
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		Tax:           inv.Tax,
		Total:         inv.Total,
		Status:        string(inv.Status),
		PaymentMethod: inv.PaymentMethod,
		Draft:         inv.IsDraft(),
		Technician:    inv.Technician,
		Supervisor:    inv.Supervisor,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		Date:          inv.Date,
		CreatedAt:     inv.CreatedAt,
	}

	if inv.Vehicle != nil {
		resp.Vehicle = &vehicleDTO{
			Make:    inv.Vehicle.Make,
			Model:   inv.Vehicle.Model,
			Year:    inv.Vehicle.Year,
			PlateNo: inv.Vehicle.PlateNo,
		}
	}

	resp.Items = make([]itemDTO, 0, len(inv.Items))
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, itemDTO{
			Description:     item.Description,
			Quantity:        item.Quantity,
			Price:           item.Price,
			CatalogItemID:   item.CatalogItemID,
			InventoryItemID: item.InventoryItemID,
		})
	}

	return resp
}

// fromRequest builds the record, deriving totals server-side: subtotal and
// discount from the submitted lines, tax from the configured rate of the
// submitted payment method.
func (h *Handler) fromRequest(r *http.Request, req invoiceRequest) (*invoice.Invoice, error) {
	cfg, err := h.settings.Get(r.Context())
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(req.Items))
	items := make([]invoice.Item, 0, len(req.Items))

	for _, item := range req.Items {
		lines = append(lines, pricing.Line{Quantity: item.Quantity, UnitPrice: item.Price})
		items = append(items, invoice.Item{
			Description:     item.Description,
			Quantity:        item.Quantity,
			Price:           item.Price,
			CatalogItemID:   item.CatalogItemID,
			InventoryItemID: item.InventoryItemID,
		})
	}

	var disc pricing.Discount
	if req.Discount != nil {
		disc = pricing.Discount{Kind: req.Discount.Kind, Value: req.Discount.Value}
	}

	var (
		methodLabel *string
		taxRateBps  int64
	)

	if req.PaymentMethod != nil {
		if m, ok := cfg.MethodByLabel(*req.PaymentMethod); ok {
			label := m.Label
			methodLabel = &label
			taxRateBps = m.TaxRateBps
		} else {
			label := settings.LabelOther
			methodLabel = &label
		}
	}

	totals := pricing.Compute(lines, disc, taxRateBps)

	status := invoice.StatusPending
	if req.Status == string(invoice.StatusPaid) {
		status = invoice.StatusPaid
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	inv := &invoice.Invoice{
		CustomerID:    req.CustomerID,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Discount:      totals.DiscountAmount,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        status,
		PaymentMethod: methodLabel,
		Technician:    req.Technician,
		Supervisor:    req.Supervisor,
		Notes:         req.Notes,
		Terms:         req.Terms,
		Date:          date,
	}

	if req.Vehicle != nil {
		inv.Vehicle = &vehicle.Snapshot{
			Make:    req.Vehicle.Make,
			Model:   req.Vehicle.Model,
			Year:    req.Vehicle.Year,
			PlateNo: req.Vehicle.PlateNo,
		}
	}

	return inv, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.fromRequest(r, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.svc.Create(r.Context(), inv); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(inv)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.fromRequest(r, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	inv.ID = id

	if err := h.svc.Update(r.Context(), inv); err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(inv)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := invoice.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("customer_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid customer_id", http.StatusBadRequest)
			return
		}

		filter.CustomerID = &id
	}

	filter.DraftsOnly = r.URL.Query().Get("drafts") == "true"

	invoices, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toResponse(inv))
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(inv)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) renderDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	cust, err := h.customers.Get(r.Context(), inv.CustomerID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	cfg, err := h.settings.Get(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	doc, err := h.renderer.RenderInvoice(r.Context(), inv, cust, cfg)
	if err != nil {
		http.Error(w, "failed to render document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="invoice-`+id.String()+`.pdf"`)

	if _, err := w.Write(doc); err != nil {
		slog.Error("failed to write document", "error", err)
	}
}
