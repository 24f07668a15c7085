package pricelist

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/garagedesk/internal/catalog"
	"github.com/MrJamesThe3rd/garagedesk/internal/encoding"
	"github.com/MrJamesThe3rd/garagedesk/internal/inventory"
)

// Catalog is the slice of the catalog service the importer needs.
type Catalog interface {
	Upsert(ctx context.Context, params catalog.CreateParams) (*catalog.Item, error)
}

// Inventory is the slice of the inventory service the importer needs.
type Inventory interface {
	Upsert(ctx context.Context, params inventory.CreateParams) (*inventory.Item, error)
}

// Summary reports what an import run did.
type Summary struct {
	Parsed   int `json:"parsed"`
	Services int `json:"services"`
	Products int `json:"products"`
	Parts    int `json:"parts"`
	Failed   int `json:"failed"`
}

type Service struct {
	parsers   map[Format]Parser
	catalog   Catalog
	inventory Inventory
	log       *slog.Logger
}

func NewService(genericParser Parser, cat Catalog, inv Inventory, log *slog.Logger) *Service {
	return &Service{
		parsers: map[Format]Parser{
			FormatGeneric: genericParser,
		},
		catalog:   cat,
		inventory: inv,
		log:       log,
	}
}

// Import decodes and parses a supplier price list, then upserts every entry:
// services and untracked products into the catalog, stock-tracked parts into
// inventory. Rows that fail to upsert are logged and counted, not fatal.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader) (*Summary, error) {
	parser, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("unknown price list format: %s", format)
	}

	decoded, err := encoding.UTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding price list: %w", err)
	}

	entries, err := parser.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing price list: %w", err)
	}

	summary := &Summary{Parsed: len(entries)}

	for _, entry := range entries {
		if err := s.apply(ctx, entry, summary); err != nil {
			summary.Failed++
			s.log.Warn("price list entry rejected",
				"description", entry.Description, "error", err)
		}
	}

	return summary, nil
}

func (s *Service) apply(ctx context.Context, entry Entry, summary *Summary) error {
	switch entry.Kind {
	case KindPart:
		_, err := s.inventory.Upsert(ctx, inventory.CreateParams{
			Name:         entry.Description,
			SalePrice:    entry.UnitPrice,
			CurrentStock: entry.Stock,
			MinStock:     entry.MinStock,
			Unit:         entry.Unit,
		})
		if err != nil {
			return err
		}

		summary.Parts++
	case KindService:
		_, err := s.catalog.Upsert(ctx, catalog.CreateParams{
			Name:  entry.Description,
			Price: entry.UnitPrice,
			Type:  catalog.TypeService,
		})
		if err != nil {
			return err
		}

		summary.Services++
	default:
		_, err := s.catalog.Upsert(ctx, catalog.CreateParams{
			Name:  entry.Description,
			Price: entry.UnitPrice,
			Type:  catalog.TypeProduct,
		})
		if err != nil {
			return err
		}

		summary.Products++
	}

	return nil
}
