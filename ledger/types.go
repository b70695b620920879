/*
Package ledger is the inventory consistency engine.

PURPOSE:
  Applies sales and manual adjustments to stock levels while keeping
  product inventory, supply inventory, the sales history and the activity
  log mutually consistent.

KEY CONCEPTS IN THIS FILE (types.go):
  - Inventory: signed counts for every product and every supply
  - Sale / SaleItem: an immutable record of what was sold to whom
  - LogEntry: an immutable activity-log line (sale or manual edit)
  - State: the aggregate root, the unit of persistence

DESIGN PRINCIPLES:
  1. Immutability: a mutation returns a NEW *State, the input is never written
  2. Completeness: every catalog id always has a count (zero is a count)
  3. Ordering: sales oldest-first, logs newest-first

JSON:
  Field names match the snapshot format written by the original app
  (productId, agencyId, date, editorName, type) so old snapshots load.

SEE ALSO:
  - ledger.go: RecordSale, AdjustInventory, Clear
  - restore.go: Validation of snapshots coming back from storage
  - report.go: Oversell alerts and sales summaries
*/
package ledger

import (
	"time"

	"github.com/dongoyo/taproom/catalog"
)

// =============================================================================
// INVENTORY
// =============================================================================

// Inventory holds current counts. Counts are signed: a negative count is an
// oversell waiting for manual correction, not an error.
type Inventory struct {
	Products map[catalog.ProductID]int `json:"products"`
	Supplies map[catalog.SupplyID]int  `json:"supplies"`
}

// ZeroInventory returns an inventory with every catalog id at zero.
func ZeroInventory() Inventory {
	inv := Inventory{
		Products: make(map[catalog.ProductID]int, len(catalog.ProductIDs())),
		Supplies: make(map[catalog.SupplyID]int, len(catalog.SupplyIDs())),
	}
	for _, id := range catalog.ProductIDs() {
		inv.Products[id] = 0
	}
	for _, id := range catalog.SupplyIDs() {
		inv.Supplies[id] = 0
	}
	return inv
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	out := Inventory{
		Products: make(map[catalog.ProductID]int, len(inv.Products)),
		Supplies: make(map[catalog.SupplyID]int, len(inv.Supplies)),
	}
	for k, v := range inv.Products {
		out.Products[k] = v
	}
	for k, v := range inv.Supplies {
		out.Supplies[k] = v
	}
	return out
}

// Equal reports whether both inventories hold the same keys and counts.
func (inv Inventory) Equal(other Inventory) bool {
	if len(inv.Products) != len(other.Products) || len(inv.Supplies) != len(other.Supplies) {
		return false
	}
	for k, v := range inv.Products {
		if ov, ok := other.Products[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range inv.Supplies {
		if ov, ok := other.Supplies[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Validate checks that the inventory covers exactly the catalog sets.
func (inv Inventory) Validate() error {
	for id := range inv.Products {
		if !id.Valid() {
			return &catalog.UnknownIDError{Kind: catalog.KindProduct, ID: string(id)}
		}
	}
	for id := range inv.Supplies {
		if !id.Valid() {
			return &catalog.UnknownIDError{Kind: catalog.KindSupply, ID: string(id)}
		}
	}

	missing := &IncompleteInventoryError{}
	for _, id := range catalog.ProductIDs() {
		if _, ok := inv.Products[id]; !ok {
			missing.Products = append(missing.Products, id)
		}
	}
	for _, id := range catalog.SupplyIDs() {
		if _, ok := inv.Supplies[id]; !ok {
			missing.Supplies = append(missing.Supplies, id)
		}
	}
	if len(missing.Products) > 0 || len(missing.Supplies) > 0 {
		return missing
	}
	return nil
}

// =============================================================================
// HISTORY RECORDS
// =============================================================================

// SaleItem is one product line of a sale.
type SaleItem struct {
	ProductID catalog.ProductID `json:"productId"`
	Quantity  int               `json:"quantity"`
}

// Sale is immutable once appended.
type Sale struct {
	ID       string           `json:"id"`
	Date     time.Time        `json:"date"`
	AgencyID catalog.AgencyID `json:"agencyId"`
	Items    []SaleItem       `json:"items"`
}

// Units returns the total quantity across items.
func (s Sale) Units() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

type LogKind string

const (
	LogSale       LogKind = "sale"
	LogManualEdit LogKind = "manual_edit"
)

// LogEntry is one line of the activity feed.
type LogEntry struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	EditorName  string    `json:"editorName"`
	Kind        LogKind   `json:"type"`
	Description string    `json:"description"`
}

// =============================================================================
// STATE - aggregate root
// =============================================================================

// State is the complete application snapshot.
//
// INVARIANTS:
//   - Sales are chronological (oldest first).
//   - Logs are newest first.
//   - Inventory covers every catalog id.
//
// A *State handed out by this package is never modified afterwards; hold it
// as long as needed.
type State struct {
	Inventory Inventory  `json:"inventory"`
	Sales     []Sale     `json:"sales"`
	Logs      []LogEntry `json:"logs"`
}

// NewState returns the zero state: all counts zero, no sales, no logs.
func NewState() *State {
	return &State{
		Inventory: ZeroInventory(),
		Sales:     []Sale{},
		Logs:      []LogEntry{},
	}
}
