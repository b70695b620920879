package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongoyo/taproom/catalog"
	"github.com/dongoyo/taproom/ledger"
	"github.com/dongoyo/taproom/store"
)

func TestDecode_OriginalSnapshotFormat(t *testing.T) {
	// Shape written by the browser app before this service existed.
	payload := []byte(`{
		"inventory": {
			"products": {"fumarola": 8, "serenata": -1},
			"supplies": {"botella_vacia": 30, "corcholata_negra": 8}
		},
		"sales": [
			{"id": "1710441000000", "date": "2024-03-14T18:30:00.000Z", "agencyId": "don_goyo",
			 "items": [{"productId": "fumarola", "quantity": 2}]}
		],
		"logs": [
			{"id": "1710441000000", "date": "2024-03-14T18:30:00.000Z",
			 "editorName": "Sistema (Venta Automática)", "type": "sale",
			 "description": "Venta registrada en don_goyo: 2 Fumarola"}
		]
	}`)

	s, err := store.Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, 8, s.Inventory.Products[catalog.Fumarola])
	assert.Equal(t, -1, s.Inventory.Products[catalog.Serenata])
	assert.Equal(t, 0, s.Inventory.Products[catalog.CenizaAle], "missing keys filled")
	require.Len(t, s.Sales, 1)
	assert.Equal(t, catalog.DonGoyo, s.Sales[0].AgencyID)
	assert.Equal(t, time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC), s.Sales[0].Date.UTC())
	require.Len(t, s.Logs, 1)
	assert.Equal(t, ledger.LogSale, s.Logs[0].Kind)
}

func TestEncodeDecode_PreservesState(t *testing.T) {
	l := ledger.New()
	s, err := l.RecordSale(ledger.NewState(), catalog.ElCerrito, []ledger.SaleItem{{ProductID: catalog.CenizaAle, Quantity: 3}})
	require.NoError(t, err)

	payload, err := store.Encode(s)
	require.NoError(t, err)
	got, err := store.Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, s.Inventory, got.Inventory)
	assert.Equal(t, s.Sales[0].ID, got.Sales[0].ID)
	assert.True(t, s.Sales[0].Date.Equal(got.Sales[0].Date))
	assert.Equal(t, s.Logs[0].Description, got.Logs[0].Description)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := store.Decode([]byte(`{"inventory": [`))
	assert.ErrorIs(t, err, store.ErrCorruptSnapshot)
}

func TestDecode_UnknownIDsAreCorrupt(t *testing.T) {
	_, err := store.Decode([]byte(`{"inventory": {"products": {"retired_ipa": 1}, "supplies": {}}}`))
	assert.ErrorIs(t, err, store.ErrCorruptSnapshot)
}

func TestEncode_Nil(t *testing.T) {
	_, err := store.Encode(nil)
	assert.Error(t, err)
}
