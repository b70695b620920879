/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built data sets for demos and manual testing. Every
	scenario is replayed through the session, so stock, sales and the
	activity log stay consistent exactly as if an operator had typed them.

AVAILABLE SCENARIOS:

	opening-stock: A stocked shelf, no sales yet
	busy-weekend:  Opening stock plus a weekend of sales across agencies
	oversold:      Thin stock and a sale larger than the shelf

HOW SCENARIOS WORK:
 1. Clear all data
 2. Count the shelf (one manual adjustment)
 3. Optionally record sales

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "busy-weekend"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, s)
 3. Register it in scenarioLoaders

NOTE:

	Scenarios clear the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Other handlers
  - session/session.go: Where scenario steps are applied
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dongoyo/taproom/catalog"
	"github.com/dongoyo/taproom/ledger"
	"github.com/dongoyo/taproom/session"
)

// DemoEditor signs every adjustment made by a scenario.
const DemoEditor = "Demo"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "opening-stock",
		Name:        "Opening Stock",
		Description: "Shelf counted at the start of the season, no sales yet",
	},
	{
		ID:          "busy-weekend",
		Name:        "Busy Weekend",
		Description: "Opening stock plus sales through every agency",
	},
	{
		ID:          "oversold",
		Name:        "Oversold",
		Description: "Thin stock and a sale that drives counts below zero",
	},
}

type scenarioLoader func(ctx context.Context, s *session.Session) error

var scenarioLoaders = map[string]scenarioLoader{
	"opening-stock": loadOpeningStockScenario,
	"busy-weekend":  loadBusyWeekendScenario,
	"oversold":      loadOversoldScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	id := h.getCurrentScenario()
	for _, s := range scenarios {
		if s.ID == id {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario clears all data and replays a scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	if err := load(r.Context(), h.Session); err != nil {
		h.log.Error().Err(err).Str("scenario", req.ScenarioID).Msg("scenario load failed")
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	h.setCurrentScenario(req.ScenarioID)
	h.log.Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"state":    h.Session.State(),
	})
}

func (h *Handler) getCurrentScenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setCurrentScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// shelf builds a full inventory from one count per category.
func shelf(products, labels, caps, bottles int) (map[catalog.ProductID]int, map[catalog.SupplyID]int) {
	p := make(map[catalog.ProductID]int)
	for _, id := range catalog.ProductIDs() {
		p[id] = products
	}
	s := make(map[catalog.SupplyID]int)
	for _, sup := range catalog.Supplies() {
		switch sup.Category {
		case catalog.CategoryLabel:
			s[sup.ID] = labels
		case catalog.CategoryCap:
			s[sup.ID] = caps
		case catalog.CategoryBottle:
			s[sup.ID] = bottles
		}
	}
	return p, s
}

func loadOpeningStockScenario(ctx context.Context, s *session.Session) error {
	s.Clear(ctx)
	products, supplies := shelf(48, 200, 200, 600)
	_, err := s.AdjustInventory(ctx, DemoEditor, products, supplies)
	return err
}

func loadBusyWeekendScenario(ctx context.Context, s *session.Session) error {
	if err := loadOpeningStockScenario(ctx, s); err != nil {
		return err
	}

	sales := []struct {
		agency catalog.AgencyID
		items  []ledger.SaleItem
	}{
		{catalog.DonGoyo, []ledger.SaleItem{{ProductID: catalog.Fumarola, Quantity: 6}, {ProductID: catalog.Serenata, Quantity: 4}}},
		{catalog.LaVottorina, []ledger.SaleItem{{ProductID: catalog.CenizaAle, Quantity: 12}}},
		{catalog.ElCerrito, []ledger.SaleItem{{ProductID: catalog.BochoCheve, Quantity: 6}, {ProductID: catalog.PataDePerro, Quantity: 6}}},
		{catalog.Atlixtour, []ledger.SaleItem{{ProductID: catalog.AtlixcoFlores, Quantity: 10}, {ProductID: catalog.Fumarola, Quantity: 2}}},
		{catalog.Independiente, []ledger.SaleItem{{ProductID: catalog.Serenata, Quantity: 1}}},
		{catalog.DonGoyo, []ledger.SaleItem{{ProductID: catalog.PataDePerro, Quantity: 3}, {ProductID: catalog.CenizaAle, Quantity: 3}}},
	}
	for _, sale := range sales {
		if _, err := s.RecordSale(ctx, sale.agency, sale.items); err != nil {
			return fmt.Errorf("sale for %s: %w", sale.agency, err)
		}
	}
	return nil
}

func loadOversoldScenario(ctx context.Context, s *session.Session) error {
	s.Clear(ctx)
	products, supplies := shelf(2, 3, 3, 4)
	if _, err := s.AdjustInventory(ctx, DemoEditor, products, supplies); err != nil {
		return err
	}
	_, err := s.RecordSale(ctx, catalog.Independiente, []ledger.SaleItem{
		{ProductID: catalog.Fumarola, Quantity: 5},
	})
	return err
}
