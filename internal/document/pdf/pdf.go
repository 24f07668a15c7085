package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/MrJamesThe3rd/garagedesk/internal/customer"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
)

// Renderer produces the printable A4 invoice.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) RenderInvoice(_ context.Context, inv *invoice.Invoice, cust *customer.Customer, cfg *settings.Settings) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	business := "Workshop Invoice"
	if cfg != nil && cfg.BusinessName != "" {
		business = cfg.BusinessName
	}
	pdf.CellFormat(0, 10, business, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Invoice %s", inv.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, inv.Date.Format("2006-01-02"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if cust != nil {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, "Billed to", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, cust.Name, "", 1, "L", false, 0, "")
		if cust.Phone != "" {
			pdf.CellFormat(0, 5, cust.Phone, "", 1, "L", false, 0, "")
		}
	}

	if inv.Vehicle != nil {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, "Vehicle", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, inv.Vehicle.Label(), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)

	// Items table.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(100, 7, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Unit", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range inv.Items {
		pdf.CellFormat(100, 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, money(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, money(item.Price*item.Quantity), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(2)

	totalRow := func(label string, cents int64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(155, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, money(cents), "", 1, "R", false, 0, "")
	}

	totalRow("Subtotal", inv.Subtotal, false)
	if inv.Discount != 0 {
		totalRow("Discount", -inv.Discount, false)
	}
	totalRow("Tax", inv.Tax, false)
	totalRow("Total", inv.Total, true)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)

	if inv.PaymentMethod != nil {
		pdf.CellFormat(0, 5, fmt.Sprintf("Payment: %s (%s)", *inv.PaymentMethod, inv.Status), "", 1, "L", false, 0, "")
	}

	if inv.Notes != "" {
		pdf.CellFormat(0, 5, "Notes: "+inv.Notes, "", 1, "L", false, 0, "")
	}

	if inv.Terms != "" {
		pdf.CellFormat(0, 5, "Terms: "+inv.Terms, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func money(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
