/*
report.go - Read-only views over a State

PURPOSE:
  The reporting surface operators use to spot oversells and review sales.
  Nothing here changes state.

MONEY:
  Revenue is computed with decimal.Decimal from catalog unit prices.
  Average ticket is rounded to 2 places.
*/
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/dongoyo/taproom/catalog"
)

// =============================================================================
// OVERSELL ALERTS
// =============================================================================

// StockAlert is a count that went below zero.
type StockAlert struct {
	Kind  catalog.Kind `json:"kind"`
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Count int          `json:"count"`
}

// Oversold lists every product and supply with a negative count, products
// first, each in catalog order.
func Oversold(inv Inventory) []StockAlert {
	var alerts []StockAlert
	for _, p := range catalog.Products() {
		if n := inv.Products[p.ID]; n < 0 {
			alerts = append(alerts, StockAlert{Kind: catalog.KindProduct, ID: string(p.ID), Name: p.Name, Count: n})
		}
	}
	for _, s := range catalog.Supplies() {
		if n := inv.Supplies[s.ID]; n < 0 {
			alerts = append(alerts, StockAlert{Kind: catalog.KindSupply, ID: string(s.ID), Name: s.Name, Count: n})
		}
	}
	return alerts
}

// =============================================================================
// SALES SUMMARY
// =============================================================================

// ProductTotal aggregates one product across sales.
type ProductTotal struct {
	ProductID catalog.ProductID `json:"product_id"`
	Name      string            `json:"name"`
	Units     int               `json:"units"`
	Revenue   decimal.Decimal   `json:"revenue"`
}

// AgencyTotal aggregates one agency across sales.
type AgencyTotal struct {
	AgencyID catalog.AgencyID `json:"agency_id"`
	Name     string           `json:"name"`
	Sales    int              `json:"sales"`
	Units    int              `json:"units"`
}

// Summary is the sales overview shown on the reports screen.
type Summary struct {
	SaleCount     int             `json:"sale_count"`
	Units         int             `json:"units"`
	Revenue       decimal.Decimal `json:"revenue"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	Products      []ProductTotal  `json:"products"`
	Agencies      []AgencyTotal   `json:"agencies"`

	// Skipped counts sale lines referencing products outside the catalog.
	Skipped int `json:"skipped"`
}

// Summarize aggregates sales per product and per agency. Every catalog
// entry appears in the output, in catalog order, even with zero units.
func Summarize(sales []Sale) Summary {
	products := make(map[catalog.ProductID]*ProductTotal)
	sum := Summary{Revenue: decimal.Zero, AverageTicket: decimal.Zero}
	for _, p := range catalog.Products() {
		sum.Products = append(sum.Products, ProductTotal{ProductID: p.ID, Name: p.Name, Revenue: decimal.Zero})
	}
	for i := range sum.Products {
		products[sum.Products[i].ProductID] = &sum.Products[i]
	}
	agencies := make(map[catalog.AgencyID]*AgencyTotal)
	for _, a := range catalog.Agencies() {
		sum.Agencies = append(sum.Agencies, AgencyTotal{AgencyID: a.ID, Name: a.Name})
	}
	for i := range sum.Agencies {
		agencies[sum.Agencies[i].AgencyID] = &sum.Agencies[i]
	}

	for _, sale := range sales {
		sum.SaleCount++
		agency := agencies[sale.AgencyID]
		if agency != nil {
			agency.Sales++
		}
		for _, it := range sale.Items {
			p, err := catalog.LookupProduct(it.ProductID)
			if err != nil {
				sum.Skipped++
				continue
			}
			line := decimal.NewFromInt(p.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
			total := products[p.ID]
			total.Units += it.Quantity
			total.Revenue = total.Revenue.Add(line)
			sum.Units += it.Quantity
			sum.Revenue = sum.Revenue.Add(line)
			if agency != nil {
				agency.Units += it.Quantity
			}
		}
	}

	if sum.SaleCount > 0 {
		sum.AverageTicket = sum.Revenue.Div(decimal.NewFromInt(int64(sum.SaleCount))).Round(2)
	}
	return sum
}

// RecentSales returns up to n sales, newest first. n <= 0 means all.
func RecentSales(sales []Sale, n int) []Sale {
	if n <= 0 || n > len(sales) {
		n = len(sales)
	}
	out := make([]Sale, 0, n)
	for i := len(sales) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, sales[i])
	}
	return out
}

// RecentLogs returns up to n log entries. Logs are already newest first.
func RecentLogs(logs []LogEntry, n int) []LogEntry {
	if n <= 0 || n > len(logs) {
		n = len(logs)
	}
	out := make([]LogEntry, n)
	copy(out, logs[:n])
	return out
}
