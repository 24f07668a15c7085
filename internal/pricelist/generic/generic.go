package generic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/garagedesk/internal/pricelist"
)

// Expected header labels. Suppliers prepend account blurbs and append
// footers, so the header row is found by landmark rather than position.
const (
	colRef   = "Referência"
	colDesc  = "Descrição"
	colPrice = "Preço"
	colStock = "Stock"
	colType  = "Tipo"
	colUnit  = "Unidade"
)

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse reads a semicolon-separated supplier sheet. Rows before the header
// landmark and rows that fail to parse are skipped; a sheet with no
// recognizable header is an error.
func (p *Parser) Parse(r io.Reader) ([]pricelist.Entry, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	idx := columnIndex{ref: -1, desc: -1, price: -1, stock: -1, typ: -1, unit: -1}
	headerFound := false

	var entries []pricelist.Entry

	for _, row := range rows {
		if !headerFound {
			headerFound = idx.scan(row)
			continue
		}

		entry, ok := parseRow(idx, row)
		if !ok {
			continue
		}

		entries = append(entries, entry)
	}

	if !headerFound {
		return nil, fmt.Errorf("no header row with %q and %q columns", colDesc, colPrice)
	}

	return entries, nil
}

type columnIndex struct {
	ref, desc, price, stock, typ, unit int
}

// scan checks whether the row is the header. Description and price are the
// landmark; the rest are optional.
func (c *columnIndex) scan(row []string) bool {
	for i, col := range row {
		switch strings.TrimSpace(col) {
		case colRef:
			c.ref = i
		case colDesc:
			c.desc = i
		case colPrice:
			c.price = i
		case colStock:
			c.stock = i
		case colType:
			c.typ = i
		case colUnit:
			c.unit = i
		}
	}

	return c.desc != -1 && c.price != -1
}

func parseRow(idx columnIndex, row []string) (pricelist.Entry, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[i])
	}

	desc := field(idx.desc)
	if desc == "" {
		return pricelist.Entry{}, false
	}

	price, err := parseAmount(field(idx.price))
	if err != nil {
		// Footer or subtotal row.
		return pricelist.Entry{}, false
	}

	entry := pricelist.Entry{
		Reference:   field(idx.ref),
		Description: desc,
		UnitPrice:   price,
		Unit:        field(idx.unit),
	}

	stockStr := field(idx.stock)

	switch normalizeKind(field(idx.typ)) {
	case pricelist.KindService:
		entry.Kind = pricelist.KindService
	case pricelist.KindPart:
		entry.Kind = pricelist.KindPart
	default:
		// No explicit type: a stock figure makes it a tracked part.
		entry.Kind = pricelist.KindProduct
		if stockStr != "" {
			entry.Kind = pricelist.KindPart
		}
	}

	if entry.Kind == pricelist.KindPart {
		stock, err := strconv.ParseInt(stockStr, 10, 64)
		if err != nil || stock < 0 {
			stock = 0
		}

		entry.Stock = stock
	}

	return entry, true
}

func normalizeKind(s string) pricelist.Kind {
	switch strings.ToLower(s) {
	case "serviço", "servico", "service":
		return pricelist.KindService
	case "peça", "peca", "part":
		return pricelist.KindPart
	case "produto", "product":
		return pricelist.KindProduct
	}

	return ""
}

// parseAmount converts a European-formatted price ("1.234,56", "34,90 €")
// into cents.
func parseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
