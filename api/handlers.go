/*
handlers.go - HTTP API handlers for the taproom point of sale

PURPOSE:
  Exposes the session (and through it the ledger) via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Catalog:
    GET    /api/catalog                Products, supplies, agencies, recipes

  State:
    GET    /api/state                  Full snapshot (stored format)
    GET    /api/inventory              Counts in catalog order
    PUT    /api/inventory              Manual adjustment
    GET    /api/sales?limit=n          Sales, newest first
    POST   /api/sales                  Record a sale
    GET    /api/logs?limit=n           Activity log, newest first

  Reports:
    GET    /api/reports/summary        Totals per product and agency
    GET    /api/reports/oversold       Counts below zero
    GET    /api/reports/sales.csv      Spreadsheet export

  Admin:
    POST   /api/admin/clear            Wipe everything (needs confirm)
    GET    /api/admin/audit?limit=n    Save history (stores that keep one)

REQUEST FLOW:
  1. Decode JSON body
  2. Validate shape (validator tags)
  3. Call the session
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown scenario, no audit trail for this store
  - 409: Adjustment identical to current stock
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The service is meant for a single trusted operator.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dongoyo/taproom/catalog"
	"github.com/dongoyo/taproom/export"
	"github.com/dongoyo/taproom/ledger"
	"github.com/dongoyo/taproom/session"
	"github.com/dongoyo/taproom/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Session *session.Session

	// Audit is optional; nil when the store keeps no save history.
	Audit store.Auditor

	log      zerolog.Logger
	location *time.Location
	validate *validator.Validate
	now      func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over sess. Report dates are rendered in loc.
func NewHandler(sess *session.Session, log zerolog.Logger, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Session:  sess,
		log:      log,
		location: loc,
		validate: validator.New(),
		now:      time.Now,
	}
}

// =============================================================================
// CATALOG & STATE
// =============================================================================

// GetCatalog returns the static catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCatalogDTO())
}

// GetState returns the full snapshot in the stored format.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.State())
}

// GetInventory returns every count in catalog order.
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toInventoryDTO(h.Session.State().Inventory))
}

// ListSales returns sales, newest first.
// GET /api/sales?limit=n
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTOs(ledger.RecentSales(h.Session.State().Sales, limit)))
}

// ListLogs returns the activity log, newest first.
// GET /api/logs?limit=n
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit", err)
		return
	}
	writeJSON(w, http.StatusOK, toLogDTOs(ledger.RecentLogs(h.Session.State().Logs, limit)))
}

// =============================================================================
// MUTATIONS
// =============================================================================

// RecordSale records a sale and decrements stock.
// POST /api/sales
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if !h.decode(w, r, &req) {
		return
	}

	next, err := h.Session.RecordSale(r.Context(), catalog.AgencyID(req.AgencyID), req.items())
	if err != nil {
		writeLedgerError(w, "Failed to record sale", err)
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusOK, RecordSaleResponse{Recorded: false})
		return
	}

	sale := toSaleDTO(next.Sales[len(next.Sales)-1])
	writeJSON(w, http.StatusCreated, RecordSaleResponse{
		Recorded: true,
		Sale:     &sale,
		Oversold: ledger.Oversold(next.Inventory),
	})
}

// AdjustInventory replaces all counts and returns the new log entry.
// PUT /api/inventory
func (h *Handler) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	var req AdjustInventoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	products, supplies := req.counts()
	next, err := h.Session.AdjustInventory(r.Context(), req.EditorName, products, supplies)
	if err != nil {
		writeLedgerError(w, "Failed to adjust inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, toLogDTO(next.Logs[0]))
}

// ClearAll wipes stock, sales and logs.
// POST /api/admin/clear
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	var req ClearRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.Session.Clear(r.Context())
	h.setCurrentScenario("")
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// GetAuditTrail lists recent snapshot saves, newest first.
// GET /api/admin/audit?limit=n
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		writeError(w, http.StatusNotFound, "Audit trail not available for this store", nil)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	records, err := h.Audit.AuditTrail(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read audit trail", err)
		return
	}
	if records == nil {
		records = []store.AuditRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// =============================================================================
// REPORTS
// =============================================================================

// GetSummary returns sales totals.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.Summarize(h.Session.State().Sales))
}

// GetOversold lists every count below zero.
func (h *Handler) GetOversold(w http.ResponseWriter, r *http.Request) {
	alerts := ledger.Oversold(h.Session.State().Inventory)
	if alerts == nil {
		alerts = []ledger.StockAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// ExportSalesCSV streams the sales history as a CSV download.
// GET /api/reports/sales.csv
func (h *Handler) ExportSalesCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteSalesCSV(&buf, h.Session.State().Sales, h.location); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export sales", err)
		return
	}

	name := export.FileName(h.now().In(h.location))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads the JSON body into dst and runs struct validation. On
// failure it writes a 400 and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", validationDetails(err))
		return false
	}
	return true
}

func validationDetails(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return fmt.Errorf("%s failed on %q", fe.Namespace(), fe.Tag())
}

// writeLedgerError maps domain errors to status codes.
func writeLedgerError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, ledger.ErrNoChanges):
		writeError(w, http.StatusConflict, message, err)
	case ledger.IsValidationError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
