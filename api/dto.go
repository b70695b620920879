/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger model (whose JSON follows the stored snapshot format) from the
  external API contract, which uses snake_case throughout.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry go-playground/validator tags for shape checks
  (required fields, confirmation flags). Domain rules such as positive
  quantities and known ids stay in the ledger so there is one source of
  truth for them.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: The domain records these mirror
*/
package api

import (
	"time"

	"github.com/dongoyo/taproom/catalog"
	"github.com/dongoyo/taproom/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SaleItemRequest is one line of a sale submission.
type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// RecordSaleRequest is the body of POST /api/sales.
type RecordSaleRequest struct {
	AgencyID string            `json:"agency_id" validate:"required"`
	Items    []SaleItemRequest `json:"items" validate:"dive"`
}

// AdjustInventoryRequest is the body of PUT /api/inventory. Both maps must
// cover the whole catalog.
type AdjustInventoryRequest struct {
	EditorName string         `json:"editor_name"`
	Products   map[string]int `json:"products" validate:"required"`
	Supplies   map[string]int `json:"supplies" validate:"required"`
}

// ClearRequest is the body of POST /api/admin/clear.
type ClearRequest struct {
	Confirm bool `json:"confirm" validate:"required"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

func (r RecordSaleRequest) items() []ledger.SaleItem {
	out := make([]ledger.SaleItem, len(r.Items))
	for i, it := range r.Items {
		out[i] = ledger.SaleItem{ProductID: catalog.ProductID(it.ProductID), Quantity: it.Quantity}
	}
	return out
}

func (r AdjustInventoryRequest) counts() (map[catalog.ProductID]int, map[catalog.SupplyID]int) {
	products := make(map[catalog.ProductID]int, len(r.Products))
	for id, n := range r.Products {
		products[catalog.ProductID(id)] = n
	}
	supplies := make(map[catalog.SupplyID]int, len(r.Supplies))
	for id, n := range r.Supplies {
		supplies[catalog.SupplyID(id)] = n
	}
	return products, supplies
}

// =============================================================================
// CATALOG
// =============================================================================

// ProductDTO is a product with its bill of materials.
type ProductDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	UnitPrice int64    `json:"unit_price"`
	Recipe    []string `json:"recipe"`
}

// SupplyDTO is a packaging supply.
type SupplyDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// AgencyDTO is a sales channel.
type AgencyDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogDTO is the full static catalog.
type CatalogDTO struct {
	Products []ProductDTO `json:"products"`
	Supplies []SupplyDTO  `json:"supplies"`
	Agencies []AgencyDTO  `json:"agencies"`
}

func toCatalogDTO() CatalogDTO {
	var dto CatalogDTO
	for _, p := range catalog.Products() {
		recipe := catalog.RecipeFor(p.ID)
		ids := make([]string, len(recipe))
		for i, s := range recipe {
			ids[i] = string(s)
		}
		dto.Products = append(dto.Products, ProductDTO{ID: string(p.ID), Name: p.Name, UnitPrice: p.UnitPrice, Recipe: ids})
	}
	for _, s := range catalog.Supplies() {
		dto.Supplies = append(dto.Supplies, SupplyDTO{ID: string(s.ID), Name: s.Name, Category: string(s.Category)})
	}
	for _, a := range catalog.Agencies() {
		dto.Agencies = append(dto.Agencies, AgencyDTO{ID: string(a.ID), Name: a.Name})
	}
	return dto
}

// =============================================================================
// INVENTORY
// =============================================================================

// StockDTO is one counted item. Count may be negative after an oversell.
type StockDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count"`
}

// InventoryDTO lists every count in catalog order.
type InventoryDTO struct {
	Products []StockDTO `json:"products"`
	Supplies []StockDTO `json:"supplies"`
}

func toInventoryDTO(inv ledger.Inventory) InventoryDTO {
	var dto InventoryDTO
	for _, p := range catalog.Products() {
		dto.Products = append(dto.Products, StockDTO{ID: string(p.ID), Name: p.Name, Count: inv.Products[p.ID]})
	}
	for _, s := range catalog.Supplies() {
		dto.Supplies = append(dto.Supplies, StockDTO{ID: string(s.ID), Name: s.Name, Category: string(s.Category), Count: inv.Supplies[s.ID]})
	}
	return dto
}

// =============================================================================
// HISTORY
// =============================================================================

// SaleItemDTO is one sold line.
type SaleItemDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// SaleDTO represents a sale in API responses.
type SaleDTO struct {
	ID         string        `json:"id"`
	Date       string        `json:"date"`
	AgencyID   string        `json:"agency_id"`
	AgencyName string        `json:"agency_name"`
	Items      []SaleItemDTO `json:"items"`
	Units      int           `json:"units"`
}

// LogDTO represents an activity log entry.
type LogDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	EditorName  string `json:"editor_name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func toSaleDTO(s ledger.Sale) SaleDTO {
	dto := SaleDTO{
		ID:         s.ID,
		Date:       s.Date.Format(time.RFC3339),
		AgencyID:   string(s.AgencyID),
		AgencyName: catalog.AgencyName(s.AgencyID),
		Items:      make([]SaleItemDTO, len(s.Items)),
		Units:      s.Units(),
	}
	for i, it := range s.Items {
		dto.Items[i] = SaleItemDTO{
			ProductID:   string(it.ProductID),
			ProductName: catalog.ProductName(it.ProductID),
			Quantity:    it.Quantity,
		}
	}
	return dto
}

func toSaleDTOs(sales []ledger.Sale) []SaleDTO {
	dtos := make([]SaleDTO, len(sales))
	for i, s := range sales {
		dtos[i] = toSaleDTO(s)
	}
	return dtos
}

func toLogDTO(e ledger.LogEntry) LogDTO {
	return LogDTO{
		ID:          e.ID,
		Date:        e.Date.Format(time.RFC3339),
		EditorName:  e.EditorName,
		Type:        string(e.Kind),
		Description: e.Description,
	}
}

func toLogDTOs(logs []ledger.LogEntry) []LogDTO {
	dtos := make([]LogDTO, len(logs))
	for i, e := range logs {
		dtos[i] = toLogDTO(e)
	}
	return dtos
}

// =============================================================================
// RESPONSES
// =============================================================================

// RecordSaleResponse is returned by POST /api/sales. Sale is absent when the
// submission had no items and nothing was recorded.
type RecordSaleResponse struct {
	Recorded bool                `json:"recorded"`
	Sale     *SaleDTO            `json:"sale,omitempty"`
	Oversold []ledger.StockAlert `json:"oversold,omitempty"`
}

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
