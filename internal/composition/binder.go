package composition

import (
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/catalog"
	"github.com/MrJamesThe3rd/garagedesk/internal/inventory"
)

// LineItem is an invoice line under composition. The ID is ephemeral and
// client-generated; persisted items carry no identity.
type LineItem struct {
	ID              uuid.UUID
	Description     string
	Quantity        int64
	UnitPrice       int64 // cents
	CatalogItemID   *uuid.UUID
	InventoryItemID *uuid.UUID
	// MaxStock is the stock ceiling snapshotted when the item was added.
	// Only meaningful when InventoryBacked.
	MaxStock        int64
	InventoryBacked bool
}

// Selection is what the catalog/inventory picker (or a free-text entry) hands
// to AddItem.
type Selection struct {
	Description     string
	Price           int64
	CatalogItemID   *uuid.UUID
	InventoryItemID *uuid.UUID
	CurrentStock    int64
}

func SelectionFromCatalog(item *catalog.Item) Selection {
	id := item.ID
	return Selection{
		Description:   item.Name,
		Price:         item.Price,
		CatalogItemID: &id,
	}
}

func SelectionFromInventory(item *inventory.Item) Selection {
	id := item.ID
	return Selection{
		Description:     item.Name,
		Price:           item.SalePrice,
		InventoryItemID: &id,
		CurrentStock:    item.CurrentStock,
	}
}

func FreeTextSelection(description string, price int64) Selection {
	return Selection{Description: strings.TrimSpace(description), Price: price}
}

// AddItem binds a selection into the composition as a new line item with
// quantity 1. Inventory-backed selections with no stock are rejected before
// any mutation; duplicates are detected per catalog id, inventory id, or
// description when the selection is unbound.
//
// Whether the staff member may later edit the unit price is a capability
// decision made by the caller, not here.
func (c *Controller) AddItem(sel Selection) (*LineItem, error) {
	if sel.InventoryItemID != nil && sel.CurrentStock <= 0 {
		return nil, ErrOutOfStock
	}

	if sel.Price <= 0 {
		return nil, ErrMissingPrice
	}

	if c.findDuplicate(sel) != nil {
		return nil, ErrDuplicateItem
	}

	item := LineItem{
		ID:              uuid.New(),
		Description:     sel.Description,
		Quantity:        1,
		UnitPrice:       sel.Price,
		CatalogItemID:   sel.CatalogItemID,
		InventoryItemID: sel.InventoryItemID,
	}

	if sel.InventoryItemID != nil {
		item.MaxStock = sel.CurrentStock
		item.InventoryBacked = true
	}

	c.items = append(c.items, item)

	return &c.items[len(c.items)-1], nil
}

func (c *Controller) findDuplicate(sel Selection) *LineItem {
	for i := range c.items {
		existing := &c.items[i]

		if sel.CatalogItemID != nil && existing.CatalogItemID != nil &&
			*sel.CatalogItemID == *existing.CatalogItemID {
			return existing
		}

		if sel.InventoryItemID != nil && existing.InventoryItemID != nil &&
			*sel.InventoryItemID == *existing.InventoryItemID {
			return existing
		}

		if sel.CatalogItemID == nil && sel.InventoryItemID == nil &&
			existing.CatalogItemID == nil && existing.InventoryItemID == nil &&
			strings.EqualFold(strings.TrimSpace(sel.Description), strings.TrimSpace(existing.Description)) {
			return existing
		}
	}

	return nil
}

// UpdateQuantity sets a line item's quantity, clamping to [1, MaxStock] for
// inventory-backed items. It returns the quantity actually applied and whether
// the stock ceiling cut it short, so the view can show the limit notice.
func (c *Controller) UpdateQuantity(id uuid.UUID, quantity int64) (int64, bool) {
	item := c.findItem(id)
	if item == nil {
		return 0, false
	}

	// Blank or zero input resets to one unit.
	if quantity < 1 {
		quantity = 1
	}

	limited := false

	if item.InventoryBacked && quantity > item.MaxStock {
		quantity = item.MaxStock
		limited = true
	}

	item.Quantity = quantity

	return quantity, limited
}

// UpdateUnitPrice overrides an item's price. The capability gate lives with
// the caller.
func (c *Controller) UpdateUnitPrice(id uuid.UUID, price int64) error {
	item := c.findItem(id)
	if item == nil {
		return nil
	}

	if price <= 0 {
		return ErrMissingPrice
	}

	item.UnitPrice = price

	return nil
}

func (c *Controller) RemoveItem(id uuid.UUID) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Controller) findItem(id uuid.UUID) *LineItem {
	for i := range c.items {
		if c.items[i].ID == id {
			return &c.items[i]
		}
	}

	return nil
}
