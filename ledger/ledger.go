/*
ledger.go - State transitions

PURPOSE:
  The three mutations of the system. Each is a pure function from an input
  *State to a new *State; nothing here performs I/O.

CRITICAL INVARIANTS:
  1. NO IN-PLACE WRITES: the input state, its maps and its slices are never
     modified. Readers holding an older snapshot never see a torn value.
  2. ALL-OR-NOTHING: every validation runs before the new state is built.
     A failed call returns the error and no state.
  3. ONE LOG PER MUTATION: a successful sale or adjustment prepends exactly
     one LogEntry.

CONSERVATION:
  After any sequence of sales, for every product
    final = initial - sum(quantities sold)
  and for every supply
    final = initial - sum(quantity sold * occurrences in the recipe)

OVERSELL:
  No stock floor is enforced. Blocking a sale because the shelf count is
  wrong costs more than a temporary negative that an operator fixes later.

SEE ALSO:
  - types.go: State and records
  - session/session.go: Threads State through these calls and persists it
*/
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dongoyo/taproom/catalog"
)

const (
	// SystemEditor is the editor name on automatically generated entries.
	SystemEditor = "Sistema (Venta Automática)"

	// NoChangesDescription is only reachable if an adjustment slips past the
	// no-op guard.
	NoChangesDescription = "Inventario guardado sin cambios"
)

// Ledger computes state transitions. The zero value is not usable; call New.
type Ledger struct {
	clock   func() time.Time
	newID   func() string
	recipes func(catalog.ProductID) []catalog.SupplyID
}

type Option func(*Ledger)

// WithClock overrides the time source used for sale and log timestamps.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithIDGenerator overrides how sale and log ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// WithRecipes overrides the recipe lookup used when a sale consumes supplies.
// A supply listed twice is consumed twice.
func WithRecipes(lookup func(catalog.ProductID) []catalog.SupplyID) Option {
	return func(l *Ledger) { l.recipes = lookup }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		clock:   func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		recipes: catalog.RecipeFor,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// =============================================================================
// RECORD SALE
// =============================================================================

// RecordSale deducts a sale from product and supply stock, appends the Sale
// and prepends a system LogEntry.
//
// An empty items slice is a no-op: prev is returned as-is and nothing is
// recorded.
func (l *Ledger) RecordSale(prev *State, agency catalog.AgencyID, items []SaleItem) (*State, error) {
	if len(items) == 0 {
		return prev, nil
	}
	if !agency.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgency, agency)
	}
	for _, it := range items {
		if !it.ProductID.Valid() {
			return nil, &catalog.UnknownIDError{Kind: catalog.KindProduct, ID: string(it.ProductID)}
		}
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID, Quantity: it.Quantity}
		}
	}

	inv := prev.Inventory.Clone()
	parts := make([]string, 0, len(items))
	for _, it := range items {
		inv.Products[it.ProductID] -= it.Quantity
		for _, s := range l.recipes(it.ProductID) {
			inv.Supplies[s] -= it.Quantity
		}
		parts = append(parts, fmt.Sprintf("%d %s", it.Quantity, catalog.ProductName(it.ProductID)))
	}

	now := l.clock()
	sale := Sale{
		ID:       l.newID(),
		Date:     now,
		AgencyID: agency,
		Items:    append([]SaleItem(nil), items...),
	}
	entry := LogEntry{
		ID:          l.newID(),
		Date:        now,
		EditorName:  SystemEditor,
		Kind:        LogSale,
		Description: fmt.Sprintf("Venta registrada en %s: %s", agency, strings.Join(parts, ", ")),
	}

	return &State{
		Inventory: inv,
		Sales:     appendSale(prev.Sales, sale),
		Logs:      prependLog(prev.Logs, entry),
	}, nil
}

// =============================================================================
// ADJUST INVENTORY
// =============================================================================

// AdjustInventory replaces every count with the operator-supplied values and
// logs the difference. The inputs must cover the whole catalog; this is an
// overwrite, not a merge.
func (l *Ledger) AdjustInventory(prev *State, editor string, products map[catalog.ProductID]int, supplies map[catalog.SupplyID]int) (*State, error) {
	if strings.TrimSpace(editor) == "" {
		return nil, ErrMissingEditor
	}
	next := Inventory{Products: products, Supplies: supplies}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if next.Equal(prev.Inventory) {
		return nil, ErrNoChanges
	}

	changes := DescribeChanges(prev.Inventory, next)
	description := NoChangesDescription
	if len(changes) > 0 {
		description = "Cambios: " + strings.Join(changes, ", ")
	}

	entry := LogEntry{
		ID:          l.newID(),
		Date:        l.clock(),
		EditorName:  editor,
		Kind:        LogManualEdit,
		Description: description,
	}

	return &State{
		Inventory: next.Clone(),
		Sales:     prev.Sales,
		Logs:      prependLog(prev.Logs, entry),
	}, nil
}

// DescribeChanges renders one line per changed count, products first, then
// supplies, each in catalog order.
func DescribeChanges(old, next Inventory) []string {
	var lines []string
	for _, p := range catalog.Products() {
		if line, ok := changeLine(p.Name, old.Products[p.ID], next.Products[p.ID]); ok {
			lines = append(lines, line)
		}
	}
	for _, s := range catalog.Supplies() {
		if line, ok := changeLine(s.Name, old.Supplies[s.ID], next.Supplies[s.ID]); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func changeLine(name string, oldVal, newVal int) (string, bool) {
	if oldVal == newVal {
		return "", false
	}
	diff := newVal - oldVal
	sign := ""
	if diff > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s: %d -> %d (%s%d)", name, oldVal, newVal, sign, diff), true
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear returns the zero state. There is no partial clear.
func (l *Ledger) Clear() *State {
	return NewState()
}

// =============================================================================
// HISTORY HELPERS - always allocate, never share backing arrays
// =============================================================================

func appendSale(sales []Sale, sale Sale) []Sale {
	out := make([]Sale, len(sales), len(sales)+1)
	copy(out, sales)
	return append(out, sale)
}

func prependLog(logs []LogEntry, entry LogEntry) []LogEntry {
	out := make([]LogEntry, 0, len(logs)+1)
	out = append(out, entry)
	return append(out, logs...)
}
