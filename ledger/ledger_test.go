package ledger_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongoyo/taproom/catalog"
	"github.com/dongoyo/taproom/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, time.March, 14, 18, 30, 0, 0, time.UTC)

func newTestLedger() *ledger.Ledger {
	n := 0
	return ledger.New(
		ledger.WithClock(func() time.Time { return testNow }),
		ledger.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

// stocked returns a state where every product and supply holds n units.
func stocked(n int) *ledger.State {
	s := ledger.NewState()
	for id := range s.Inventory.Products {
		s.Inventory.Products[id] = n
	}
	for id := range s.Inventory.Supplies {
		s.Inventory.Supplies[id] = n
	}
	return s
}

func deepCopy(s *ledger.State) *ledger.State {
	out := &ledger.State{
		Inventory: s.Inventory.Clone(),
		Sales:     make([]ledger.Sale, len(s.Sales)),
		Logs:      make([]ledger.LogEntry, len(s.Logs)),
	}
	for i, sale := range s.Sales {
		sale.Items = append([]ledger.SaleItem(nil), sale.Items...)
		out.Sales[i] = sale
	}
	copy(out.Logs, s.Logs)
	return out
}

func item(id catalog.ProductID, qty int) ledger.SaleItem {
	return ledger.SaleItem{ProductID: id, Quantity: qty}
}

// =============================================================================
// WORKED EXAMPLES
// =============================================================================

func TestRecordSale_DecrementsProductAndRecipe(t *testing.T) {
	// GIVEN: 10 Fumarola and 10 of each of its recipe supplies
	// WHEN: 2 Fumarola are sold to Don Goyo
	// THEN: the product and each recipe supply drop to 8, one sale, one sale log

	l := newTestLedger()
	prev := stocked(10)

	next, err := l.RecordSale(prev, catalog.DonGoyo, []ledger.SaleItem{item(catalog.Fumarola, 2)})
	require.NoError(t, err)

	assert.Equal(t, 8, next.Inventory.Products[catalog.Fumarola])
	assert.Equal(t, 8, next.Inventory.Supplies[catalog.CorcholataNegra])
	assert.Equal(t, 8, next.Inventory.Supplies[catalog.EtiquetaFumarola])
	assert.Equal(t, 8, next.Inventory.Supplies[catalog.BotellaVacia])
	assert.Equal(t, 10, next.Inventory.Products[catalog.Serenata], "other products untouched")
	assert.Equal(t, 10, next.Inventory.Supplies[catalog.CorcholataRoja], "other supplies untouched")

	require.Len(t, next.Sales, 1)
	assert.Equal(t, catalog.DonGoyo, next.Sales[0].AgencyID)
	assert.Equal(t, testNow, next.Sales[0].Date)

	require.Len(t, next.Logs, 1)
	assert.Equal(t, ledger.LogSale, next.Logs[0].Kind)
	assert.Equal(t, ledger.SystemEditor, next.Logs[0].EditorName)
	assert.Equal(t, "Venta registrada en don_goyo: 2 Fumarola", next.Logs[0].Description)
}

func TestAdjustInventory_LogsDifference(t *testing.T) {
	// GIVEN: 2 of 10 Fumarola already sold (Fumarola at 8)
	// WHEN: Ana sets Fumarola to 20 and leaves everything else
	// THEN: the log reads "Fumarola: 8 -> 20 (+12)" and sales are untouched

	l := newTestLedger()
	afterSale, err := l.RecordSale(stocked(10), catalog.DonGoyo, []ledger.SaleItem{item(catalog.Fumarola, 2)})
	require.NoError(t, err)

	edit := afterSale.Inventory.Clone()
	edit.Products[catalog.Fumarola] = 20

	next, err := l.AdjustInventory(afterSale, "Ana", edit.Products, edit.Supplies)
	require.NoError(t, err)

	assert.Equal(t, 20, next.Inventory.Products[catalog.Fumarola])
	assert.Len(t, next.Sales, 1)
	require.Len(t, next.Logs, 2)
	assert.Equal(t, ledger.LogManualEdit, next.Logs[0].Kind)
	assert.Equal(t, "Ana", next.Logs[0].EditorName)
	assert.Contains(t, next.Logs[0].Description, "Fumarola: 8 -> 20 (+12)")
	assert.Equal(t, "Cambios: Fumarola: 8 -> 20 (+12)", next.Logs[0].Description)
}

func TestRecordSale_OversellAllowed(t *testing.T) {
	// GIVEN: only 1 Fumarola on hand
	// WHEN: 5 are sold
	// THEN: the count goes to -4 and the sale is recorded normally

	l := newTestLedger()
	prev := stocked(0)
	prev.Inventory.Products[catalog.Fumarola] = 1

	next, err := l.RecordSale(prev, catalog.Independiente, []ledger.SaleItem{item(catalog.Fumarola, 5)})
	require.NoError(t, err)

	assert.Equal(t, -4, next.Inventory.Products[catalog.Fumarola])
	assert.Equal(t, -5, next.Inventory.Supplies[catalog.BotellaVacia])
	assert.Len(t, next.Sales, 1)
}

func TestAdjustInventory_WhitespaceEditor(t *testing.T) {
	l := newTestLedger()
	prev := stocked(3)
	before := deepCopy(prev)

	edit := prev.Inventory.Clone()
	edit.Products[catalog.Fumarola] = 99

	next, err := l.AdjustInventory(prev, "   ", edit.Products, edit.Supplies)

	assert.ErrorIs(t, err, ledger.ErrMissingEditor)
	assert.Nil(t, next)
	assert.Equal(t, before, prev, "state must be untouched")
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestRecordSale_Conservation(t *testing.T) {
	// final = initial - sold, supplies scaled by recipe occurrences

	l := newTestLedger()
	initial := stocked(100)
	sales := [][]ledger.SaleItem{
		{item(catalog.Fumarola, 3), item(catalog.Serenata, 2)},
		{item(catalog.CenizaAle, 1)},
		{item(catalog.Serenata, 4), item(catalog.BochoCheve, 6), item(catalog.PataDePerro, 1)},
		{item(catalog.AtlixcoFlores, 7)},
	}

	state := initial
	soldProducts := map[catalog.ProductID]int{}
	usedSupplies := map[catalog.SupplyID]int{}
	for _, items := range sales {
		var err error
		state, err = l.RecordSale(state, catalog.ElCerrito, items)
		require.NoError(t, err)
		for _, it := range items {
			soldProducts[it.ProductID] += it.Quantity
			for _, s := range catalog.RecipeFor(it.ProductID) {
				usedSupplies[s] += it.Quantity
			}
		}
	}

	for _, id := range catalog.ProductIDs() {
		assert.Equal(t, 100-soldProducts[id], state.Inventory.Products[id], "product %s", id)
	}
	for _, id := range catalog.SupplyIDs() {
		assert.Equal(t, 100-usedSupplies[id], state.Inventory.Supplies[id], "supply %s", id)
	}
	// Fumarola and Serenata share the black cap.
	assert.Equal(t, 100-3-2-4, state.Inventory.Supplies[catalog.CorcholataNegra])
	// Every recipe takes one bottle, so bottles track total units sold.
	unitsSold := 0
	for _, n := range soldProducts {
		unitsSold += n
	}
	assert.Equal(t, 24, unitsSold)
	assert.Equal(t, 100-unitsSold, state.Inventory.Supplies[catalog.BotellaVacia])
	assert.Equal(t, 100-usedSupplies[catalog.BotellaVacia], state.Inventory.Supplies[catalog.BotellaVacia])
}

func TestRecordSale_AppendOnlyHistory(t *testing.T) {
	// each sale adds exactly one record; earlier records never change

	l := newTestLedger()
	s1, err := l.RecordSale(stocked(10), catalog.Atlixtour, []ledger.SaleItem{item(catalog.Fumarola, 1)})
	require.NoError(t, err)
	firstSale := s1.Sales[0]

	s2, err := l.RecordSale(s1, catalog.LaVottorina, []ledger.SaleItem{item(catalog.Serenata, 2)})
	require.NoError(t, err)
	s3, err := l.AdjustInventory(s2, "Luis", stocked(50).Inventory.Products, stocked(50).Inventory.Supplies)
	require.NoError(t, err)

	assert.Len(t, s1.Sales, 1)
	assert.Len(t, s2.Sales, 2)
	assert.Len(t, s3.Sales, 2)
	assert.Equal(t, firstSale, s3.Sales[0])
	assert.Equal(t, catalog.LaVottorina, s3.Sales[1].AgencyID, "sales are oldest first")
}

func TestLogs_NewestFirst(t *testing.T) {
	l := newTestLedger()
	state := stocked(10)
	var err error

	state, err = l.RecordSale(state, catalog.DonGoyo, []ledger.SaleItem{item(catalog.Fumarola, 1)})
	require.NoError(t, err)
	assert.Equal(t, ledger.LogSale, state.Logs[0].Kind)

	edit := state.Inventory.Clone()
	edit.Supplies[catalog.BotellaVacia] = 200
	state, err = l.AdjustInventory(state, "Ana", edit.Products, edit.Supplies)
	require.NoError(t, err)
	assert.Equal(t, ledger.LogManualEdit, state.Logs[0].Kind)

	state, err = l.RecordSale(state, catalog.DonGoyo, []ledger.SaleItem{item(catalog.CenizaAle, 1)})
	require.NoError(t, err)
	require.Len(t, state.Logs, 3)
	assert.Contains(t, state.Logs[0].Description, "Ceniza Ale")
	assert.Equal(t, ledger.LogManualEdit, state.Logs[1].Kind)
	assert.Contains(t, state.Logs[2].Description, "Fumarola")
}

func TestAdjustInventory_NoChangesRejected(t *testing.T) {
	l := newTestLedger()
	prev := stocked(7)
	before := deepCopy(prev)

	next, err := l.AdjustInventory(prev, "Ana", prev.Inventory.Clone().Products, prev.Inventory.Clone().Supplies)

	assert.ErrorIs(t, err, ledger.ErrNoChanges)
	assert.Nil(t, next)
	assert.Equal(t, before, prev)
}

func TestClear_Idempotent(t *testing.T) {
	l := newTestLedger()
	busy, err := l.RecordSale(stocked(10), catalog.DonGoyo, []ledger.SaleItem{item(catalog.Fumarola, 1)})
	require.NoError(t, err)

	first := l.Clear()
	second := l.Clear()

	assert.Equal(t, ledger.NewState(), first)
	assert.Equal(t, first, second)
	assert.Empty(t, first.Sales)
	assert.Empty(t, first.Logs)
	for _, id := range catalog.ProductIDs() {
		assert.Equal(t, 0, first.Inventory.Products[id])
	}
	assert.Len(t, busy.Sales, 1, "clearing does not touch earlier snapshots")
}

func TestRecordSale_EmptyItemsIsNoOp(t *testing.T) {
	l := newTestLedger()
	prev := stocked(5)

	next, err := l.RecordSale(prev, catalog.DonGoyo, nil)
	require.NoError(t, err)
	assert.Same(t, prev, next)

	next, err = l.RecordSale(prev, "not-an-agency", []ledger.SaleItem{})
	require.NoError(t, err, "empty sale is checked before the agency")
	assert.Same(t, prev, next)
	assert.Empty(t, next.Sales)
	assert.Empty(t, next.Logs)
}

// =============================================================================
// IMMUTABILITY
// =============================================================================

func TestRecordSale_DoesNotMutateInput(t *testing.T) {
	l := newTestLedger()
	prev, err := l.RecordSale(stocked(10), catalog.DonGoyo, []ledger.SaleItem{item(catalog.Fumarola, 1)})
	require.NoError(t, err)
	before := deepCopy(prev)

	items := []ledger.SaleItem{item(catalog.Serenata, 2)}
	next, err := l.RecordSale(prev, catalog.ElCerrito, items)
	require.NoError(t, err)

	assert.Equal(t, before, prev)
	assert.NotEqual(t, prev.Inventory, next.Inventory)

	items[0].Quantity = 50
	assert.Equal(t, 2, next.Sales[1].Items[0].Quantity, "caller cannot rewrite a recorded sale")
}

func TestAdjustInventory_CopiesInputMaps(t *testing.T) {
	l := newTestLedger()
	edit := stocked(4).Inventory

	next, err := l.AdjustInventory(stocked(0), "Ana", edit.Products, edit.Supplies)
	require.NoError(t, err)

	edit.Products[catalog.Fumarola] = 1000
	assert.Equal(t, 4, next.Inventory.Products[catalog.Fumarola])
}

// =============================================================================
// RECORD SALE - details and errors
// =============================================================================

func TestRecordSale_DescriptionKeepsInputOrder(t *testing.T) {
	l := newTestLedger()
	next, err := l.RecordSale(stocked(10), catalog.ElCerrito, []ledger.SaleItem{
		item(catalog.Serenata, 1),
		item(catalog.AtlixcoFlores, 3),
	})
	require.NoError(t, err)

	assert.Equal(t, "Venta registrada en el_cerrito: 1 Serenata, 3 Atlixco de las flores", next.Logs[0].Description)
	assert.Equal(t, "id-1", next.Sales[0].ID)
	assert.Equal(t, "id-2", next.Logs[0].ID)
}

func TestRecordSale_RepeatedProductIsAdditive(t *testing.T) {
	l := newTestLedger()
	next, err := l.RecordSale(stocked(10), catalog.DonGoyo, []ledger.SaleItem{
		item(catalog.Fumarola, 2),
		item(catalog.Fumarola, 3),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, next.Inventory.Products[catalog.Fumarola])
	assert.Equal(t, 5, next.Inventory.Supplies[catalog.EtiquetaFumarola])
	assert.Len(t, next.Sales[0].Items, 2)
}

func TestRecordSale_DuplicatedRecipeSupplyAccumulates(t *testing.T) {
	// GIVEN a recipe that lists the bottle twice
	l := ledger.New(
		ledger.WithClock(func() time.Time { return testNow }),
		ledger.WithRecipes(func(id catalog.ProductID) []catalog.SupplyID {
			if id == catalog.Fumarola {
				return []catalog.SupplyID{catalog.EtiquetaFumarola, catalog.BotellaVacia, catalog.BotellaVacia}
			}
			return catalog.RecipeFor(id)
		}),
	)

	// WHEN 3 units are sold
	next, err := l.RecordSale(stocked(10), catalog.DonGoyo, []ledger.SaleItem{item(catalog.Fumarola, 3)})
	require.NoError(t, err)

	// THEN the bottle drops by 6 and the label by 3
	assert.Equal(t, 4, next.Inventory.Supplies[catalog.BotellaVacia])
	assert.Equal(t, 7, next.Inventory.Supplies[catalog.EtiquetaFumarola])
	assert.Equal(t, 10, next.Inventory.Supplies[catalog.CorcholataNegra])
	assert.Equal(t, 7, next.Inventory.Products[catalog.Fumarola])

	// AND other products still use the catalog recipe
	next, err = l.RecordSale(next, catalog.DonGoyo, []ledger.SaleItem{item(catalog.Serenata, 1)})
	require.NoError(t, err)
	assert.Equal(t, 3, next.Inventory.Supplies[catalog.BotellaVacia])
	assert.Equal(t, 9, next.Inventory.Supplies[catalog.CorcholataNegra])
}

func TestRecordSale_UnknownAgency(t *testing.T) {
	l := newTestLedger()
	prev := stocked(10)
	before := deepCopy(prev)

	next, err := l.RecordSale(prev, "oxxo", []ledger.SaleItem{item(catalog.Fumarola, 1)})

	assert.ErrorIs(t, err, ledger.ErrUnknownAgency)
	assert.True(t, ledger.IsValidationError(err))
	assert.Nil(t, next)
	assert.Equal(t, before, prev)
}

func TestRecordSale_UnknownProduct(t *testing.T) {
	l := newTestLedger()
	_, err := l.RecordSale(stocked(10), catalog.DonGoyo, []ledger.SaleItem{
		item(catalog.Fumarola, 1),
		item("kombucha", 1),
	})

	assert.ErrorIs(t, err, ledger.ErrUnknownID)
}

func TestRecordSale_InvalidQuantity(t *testing.T) {
	l := newTestLedger()
	prev := stocked(10)
	before := deepCopy(prev)

	for _, qty := range []int{0, -3} {
		_, err := l.RecordSale(prev, catalog.DonGoyo, []ledger.SaleItem{
			item(catalog.Fumarola, 2),
			item(catalog.Serenata, qty),
		})

		assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
		var qErr *ledger.InvalidQuantityError
		require.ErrorAs(t, err, &qErr)
		assert.Equal(t, catalog.Serenata, qErr.ProductID)
		assert.Equal(t, qty, qErr.Quantity)
	}
	assert.Equal(t, before, prev, "valid first line must not be applied")
}

// =============================================================================
// ADJUST INVENTORY - details and errors
// =============================================================================

func TestAdjustInventory_DescribesProductsThenSupplies(t *testing.T) {
	l := newTestLedger()
	prev := stocked(10)
	edit := prev.Inventory.Clone()
	edit.Supplies[catalog.BotellaVacia] = 4
	edit.Products[catalog.Serenata] = 12
	edit.Supplies[catalog.EtiquetaFumarola] = 11
	edit.Products[catalog.Fumarola] = 9

	next, err := l.AdjustInventory(prev, "Ana", edit.Products, edit.Supplies)
	require.NoError(t, err)

	assert.Equal(t,
		"Cambios: Fumarola: 10 -> 9 (-1), Serenata: 10 -> 12 (+2), "+
			"Etiqueta Fumarola: 10 -> 11 (+1), Botella Vacía: 10 -> 4 (-6)",
		next.Logs[0].Description)
}

func TestAdjustInventory_KeepsEditorAsGiven(t *testing.T) {
	l := newTestLedger()
	edit := stocked(1).Inventory

	next, err := l.AdjustInventory(stocked(0), " Ana ", edit.Products, edit.Supplies)
	require.NoError(t, err)
	assert.Equal(t, " Ana ", next.Logs[0].EditorName)
}

func TestAdjustInventory_IncompleteInventory(t *testing.T) {
	l := newTestLedger()
	prev := stocked(10)
	edit := prev.Inventory.Clone()
	delete(edit.Products, catalog.Serenata)
	delete(edit.Supplies, catalog.BotellaVacia)

	next, err := l.AdjustInventory(prev, "Ana", edit.Products, edit.Supplies)

	assert.Nil(t, next)
	assert.ErrorIs(t, err, ledger.ErrIncompleteInventory)
	var incErr *ledger.IncompleteInventoryError
	require.ErrorAs(t, err, &incErr)
	assert.Equal(t, []catalog.ProductID{catalog.Serenata}, incErr.Products)
	assert.Equal(t, []catalog.SupplyID{catalog.BotellaVacia}, incErr.Supplies)
}

func TestAdjustInventory_NilMapsAreIncomplete(t *testing.T) {
	l := newTestLedger()
	_, err := l.AdjustInventory(stocked(1), "Ana", nil, nil)
	assert.ErrorIs(t, err, ledger.ErrIncompleteInventory)
}

func TestAdjustInventory_UnknownID(t *testing.T) {
	l := newTestLedger()
	edit := stocked(10).Inventory.Clone()
	edit.Supplies["corcholata_azul"] = 3

	_, err := l.AdjustInventory(stocked(1), "Ana", edit.Products, edit.Supplies)
	assert.ErrorIs(t, err, ledger.ErrUnknownID)
}

func TestAdjustInventory_MissingEditorCheckedFirst(t *testing.T) {
	l := newTestLedger()
	prev := stocked(2)

	_, err := l.AdjustInventory(prev, "", prev.Inventory.Products, prev.Inventory.Supplies)
	assert.ErrorIs(t, err, ledger.ErrMissingEditor)
}

func TestDescribeChanges_NoneWhenEqual(t *testing.T) {
	inv := stocked(3).Inventory
	assert.Empty(t, ledger.DescribeChanges(inv, inv.Clone()))
}
