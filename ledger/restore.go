package ledger

import (
	"fmt"

	"github.com/dongoyo/taproom/catalog"
)

// Restore validates a snapshot read back from storage and returns a
// normalized copy.
//
// Missing counts are filled with zero so snapshots written before a catalog
// entry existed still load. Ids the catalog does not know, in the inventory
// or referenced by a sale, are rejected: the caller falls back to a fresh
// state rather than carry a record it cannot display.
func Restore(s *State) (*State, error) {
	if s == nil {
		return NewState(), nil
	}

	inv := ZeroInventory()
	for id, n := range s.Inventory.Products {
		if !id.Valid() {
			return nil, &catalog.UnknownIDError{Kind: catalog.KindProduct, ID: string(id)}
		}
		inv.Products[id] = n
	}
	for id, n := range s.Inventory.Supplies {
		if !id.Valid() {
			return nil, &catalog.UnknownIDError{Kind: catalog.KindSupply, ID: string(id)}
		}
		inv.Supplies[id] = n
	}

	sales := make([]Sale, len(s.Sales))
	for i, sale := range s.Sales {
		if !sale.AgencyID.Valid() {
			return nil, fmt.Errorf("sale %s: %w: %q", sale.ID, ErrUnknownAgency, sale.AgencyID)
		}
		for _, it := range sale.Items {
			if !it.ProductID.Valid() {
				return nil, fmt.Errorf("sale %s: %w", sale.ID,
					&catalog.UnknownIDError{Kind: catalog.KindProduct, ID: string(it.ProductID)})
			}
		}
		items := make([]SaleItem, len(sale.Items))
		copy(items, sale.Items)
		sale.Items = items
		sales[i] = sale
	}

	logs := make([]LogEntry, len(s.Logs))
	copy(logs, s.Logs)

	return &State{Inventory: inv, Sales: sales, Logs: logs}, nil
}
